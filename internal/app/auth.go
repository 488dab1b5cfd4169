package app

import (
	"crypto/ed25519"
	"fmt"

	"github.com/MichaelBrownui/PrivacyPoker/internal/codec"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

func requireSignedEnvelope(env *codec.TxEnvelope) error {
	if env.Nonce == 0 {
		return fmt.Errorf("missing tx.nonce")
	}
	if env.Signer == "" {
		return fmt.Errorf("missing tx.signer")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

// maybeAuth enforces signature and replay checks for identities that have
// registered a key. Unregistered identities pass through unsigned, which
// keeps devnet clients simple while letting anyone opt in to real auth.
func maybeAuth(st *state.State, env *codec.TxEnvelope, actor, chainID string) error {
	pub, registered := st.AccountKeys[actor]
	if !registered {
		return nil
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != actor {
		return fmt.Errorf("tx signer mismatch: signer=%q want=%q", env.Signer, actor)
	}
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("account %q has malformed pubKey", actor)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), env.SignBytes(chainID), env.Sig) {
		return fmt.Errorf("invalid signature")
	}
	return bumpNonce(st, env)
}

// registerAccount binds an ed25519 key to an identity. The registration tx
// itself must be signed by the key being registered.
func registerAccount(st *state.State, env *codec.TxEnvelope, msg codec.AuthRegisterAccountTx, chainID string) error {
	if msg.Account == "" {
		return fmt.Errorf("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if _, exists := st.AccountKeys[msg.Account]; exists {
		return fmt.Errorf("account %q already registered", msg.Account)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return fmt.Errorf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	if !ed25519.Verify(ed25519.PublicKey(msg.PubKey), env.SignBytes(chainID), env.Sig) {
		return fmt.Errorf("invalid signature")
	}
	if err := bumpNonce(st, env); err != nil {
		return err
	}
	st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
	return nil
}

// bumpNonce rejects replayed envelopes: each signer's nonce must strictly
// increase.
func bumpNonce(st *state.State, env *codec.TxEnvelope) error {
	if env.Nonce <= st.NonceMax[env.Signer] {
		return fmt.Errorf("stale nonce %d for %q (last %d)", env.Nonce, env.Signer, st.NonceMax[env.Signer])
	}
	st.NonceMax[env.Signer] = env.Nonce
	return nil
}
