package app

import (
	"bytes"
	"testing"
)

// A rejected tx must leave no trace: the staged state is discarded wholesale,
// so even partially-executed confidential operations cannot leak through.
func TestRejectedTxLeavesStateUntouched(t *testing.T) {
	a := newTestApp(t)
	id := createGame(t, a, "alice")
	mustOk(t, join(t, a, id, "alice", 100))
	mustOk(t, join(t, a, id, "bob", 100))
	mustOk(t, start(t, a, id, "alice"))

	before := a.st.AppHash()
	vaultIDBefore := a.st.Vault.NextID

	// Out of turn: rejected after the engine already looked the player up.
	mustFail(t, act(t, a, id, "bob", "call"), "not your turn")

	// Raise with a garbage proof: the vault imported the ciphertext into the
	// staged copy before verification failed, so a leak would show up as a
	// bumped vault counter.
	mustFail(t, a.deliverTx(txBytes(t, "poker/act", map[string]any{
		"game_id": id, "player": "alice", "action": "raise",
		"amount_cipher": bytes.Repeat([]byte{1}, 64), "proof": bytes.Repeat([]byte{2}, 64),
	}), 3, testTime), "")

	if got := a.st.Vault.NextID; got != vaultIDBefore {
		t.Fatalf("vault NextID moved from %d to %d on rejected tx", vaultIDBefore, got)
	}
	if after := a.st.AppHash(); !bytes.Equal(before, after) {
		t.Fatalf("app hash changed by rejected txs")
	}
}

func TestInsufficientBalanceDoesNotDebit(t *testing.T) {
	a := newTestApp(t)
	id := createGame(t, a, "alice")
	mustOk(t, join(t, a, id, "alice", 100))
	mustOk(t, join(t, a, id, "bob", 12))
	mustOk(t, start(t, a, id, "alice"))
	mustOk(t, act(t, a, id, "alice", "call"))

	before := a.st.AppHash()
	mustFail(t, act(t, a, id, "bob", "call"), "insufficient balance")
	if after := a.st.AppHash(); !bytes.Equal(before, after) {
		t.Fatalf("failed call mutated state")
	}
}
