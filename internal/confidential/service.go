// Package confidential models encrypted game values as opaque handles with a
// narrow operation set: create, combine, compare, and selectively disclose.
// Game code computes on handles without ever seeing a plaintext; the only
// cleartext outputs are comparison booleans and explicitly revealed values.
package confidential

import "github.com/pkg/errors"

// Handle is an opaque reference to a confidential value. Holding a handle
// grants no access to the plaintext.
type Handle string

// MaxAmount bounds every single encrypted amount the service accepts or
// attests as well-formed. Accumulated values (pots, balances) may exceed it.
const MaxAmount uint64 = 1 << 20

// ProofContext binds an externally supplied ciphertext to the exact call it
// was produced for.
type ProofContext struct {
	GameID   string
	Identity string
	Action   string
}

func (c ProofContext) fields() [][]byte {
	return [][]byte{[]byte(c.GameID), []byte(c.Identity), []byte(c.Action)}
}

var (
	// ErrUnavailable marks a failed confidential operation. Callers must not
	// have mutated any game state before the operation succeeded.
	ErrUnavailable = errors.New("confidential service unavailable")

	ErrUnknownHandle = errors.New("unknown confidential handle")
	ErrNotAuthorized = errors.New("no decryption grant for identity")
	ErrOutOfRange    = errors.New("value exceeds maximum amount")
)

// Service is the capability boundary the game engine computes through.
type Service interface {
	// Encrypt issues a fresh handle for value. When owner is non-empty the
	// owner receives a decryption grant.
	Encrypt(value uint64, owner string) (Handle, error)

	// Import stores an externally produced ciphertext (64 bytes, C1||C2)
	// under a new handle. The ciphertext is not trusted until
	// VerifyInputProof accepts it.
	Import(cipher []byte, owner string) (Handle, error)

	// VerifyInputProof checks that the handle's ciphertext was produced by a
	// party knowing its plaintext and randomness, bound to ctx, and that the
	// plaintext lies in [1, MaxAmount]. A failed check is (false, nil);
	// errors mean the service itself could not evaluate.
	VerifyInputProof(h Handle, proof []byte, ctx ProofContext) (bool, error)

	// Homomorphic arithmetic. The result is a fresh handle inheriting the
	// grants of the first operand.
	Add(a, b Handle) (Handle, error)
	Subtract(a, b Handle) (Handle, error)

	// CompareLessThan reveals only the boolean a < b; operands stay
	// confidential.
	CompareLessThan(a, b Handle) (bool, error)

	Grant(h Handle, identity string) error
	Revoke(h Handle, identity string) error

	// Decrypt reveals the plaintext to a granted identity only.
	Decrypt(h Handle, identity string) (uint64, error)

	// Reveal discloses the plaintext publicly and marks the handle as public.
	Reveal(h Handle) (uint64, error)

	// PublicKey returns the service encryption key clients encrypt inputs to.
	PublicKey() []byte
}
