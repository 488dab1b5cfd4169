package app

import (
	"testing"

	"github.com/rs/zerolog"
)

// Arbitrary tx bytes must never panic the delivery path, only reject.
func FuzzDeliverTxNeverPanics(f *testing.F) {
	f.Add([]byte(`{}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(`{"type":"poker/create","value":{"creator":"a"}}`))
	f.Add([]byte(`{"type":"poker/act","value":{"game_id":"x","player":"a","action":"raise","amount_cipher":"AAAA","proof":"AAAA"}}`))
	f.Add([]byte(`{"type":"poker/join","value":{"game_id":"x","player":"a","stake":18446744073709551615}}`))
	f.Add([]byte(`{"type":"auth/register_account","value":{"account":"a","pub_key":"AA=="}}`))

	a, err := New(f.TempDir(), zerolog.Nop())
	if err != nil {
		f.Fatalf("New: %v", err)
	}

	f.Fuzz(func(t *testing.T, tx []byte) {
		res := a.deliverTx(tx, 1, testTime)
		if res == nil {
			t.Fatalf("nil result")
		}
	})
}
