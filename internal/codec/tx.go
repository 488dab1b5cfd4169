// Package codec defines the wire format of transactions. Every tx is a JSON
// envelope carrying a type tag and a type-specific value, plus optional
// signature fields for registered accounts.
package codec

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Tx type tags.
const (
	TypePokerCreate         = "poker/create"
	TypePokerJoin           = "poker/join"
	TypePokerStart          = "poker/start"
	TypePokerDealCommunity  = "poker/deal_community"
	TypePokerAct            = "poker/act"
	TypePokerEnd            = "poker/end"
	TypePokerTick           = "poker/tick"
	TypeAuthRegisterAccount = "auth/register_account"
)

// TxEnvelope wraps every transaction. Signer, Nonce and Sig are present only
// on signed txs; unsigned txs from unregistered accounts leave them empty.
type TxEnvelope struct {
	Type   string          `json:"type"`
	Value  json.RawMessage `json:"value"`
	Signer string          `json:"signer,omitempty"`
	Nonce  uint64          `json:"nonce,omitempty"`
	Sig    []byte          `json:"sig,omitempty"`
}

func DecodeTxEnvelope(raw []byte) (*TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decode tx envelope")
	}
	if env.Type == "" {
		return nil, errors.New("tx envelope missing type")
	}
	return &env, nil
}

// SignBytes is the deterministic byte string a signed envelope commits to.
// The signature field itself is excluded.
func (e *TxEnvelope) SignBytes(chainID string) []byte {
	doc := struct {
		ChainID string          `json:"chain_id"`
		Type    string          `json:"type"`
		Value   json.RawMessage `json:"value"`
		Signer  string          `json:"signer"`
		Nonce   uint64          `json:"nonce"`
	}{chainID, e.Type, e.Value, e.Signer, e.Nonce}
	b, err := json.Marshal(doc)
	if err != nil {
		// Marshal of this shape cannot fail.
		panic(err)
	}
	return append([]byte("privacypoker/v1/tx|"), b...)
}

type PokerCreateTx struct {
	Creator           string `json:"creator"`
	ActionTimeoutSecs int64  `json:"action_timeout_secs,omitempty"`
}

type PokerJoinTx struct {
	GameID string `json:"game_id"`
	Player string `json:"player"`
	Stake  uint64 `json:"stake"`
}

type PokerStartTx struct {
	GameID string `json:"game_id"`
	Caller string `json:"caller"`
}

type PokerDealCommunityTx struct {
	GameID string `json:"game_id"`
	Caller string `json:"caller"`
}

// PokerActTx carries a betting action. AmountCipher and Proof are required
// for raises and ignored otherwise.
type PokerActTx struct {
	GameID       string `json:"game_id"`
	Player       string `json:"player"`
	Action       string `json:"action"`
	AmountCipher []byte `json:"amount_cipher,omitempty"`
	Proof        []byte `json:"proof,omitempty"`
}

// PokerEndTx names the winning seat. WinnerSeat may be omitted when only one
// player remains unfolded.
type PokerEndTx struct {
	GameID     string `json:"game_id"`
	Caller     string `json:"caller"`
	WinnerSeat *int   `json:"winner_seat,omitempty"`
}

type PokerTickTx struct {
	GameID string `json:"game_id"`
}

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pub_key"`
}
