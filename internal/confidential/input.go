package confidential

import (
	"github.com/pkg/errors"

	"github.com/MichaelBrownui/PrivacyPoker/internal/pokercrypto"
)

const (
	inputNonceDomain = "privacypoker/v1/input/r"
	inputProofNonce  = "privacypoker/v1/input/w"
)

// EncryptInput is the client side of the raise flow: it encrypts value to the
// service public key and produces the input proof binding the ciphertext to
// ctx. entropy is caller-supplied randomness (any unpredictable bytes); the
// proof nonce is derived from it so a caller cannot accidentally reuse one.
func EncryptInput(pk []byte, value uint64, entropy []byte, ctx ProofContext) (cipher []byte, proof []byte, err error) {
	pkPoint, err := pokercrypto.PointFromBytesCanonical(pk)
	if err != nil {
		return nil, nil, errors.Wrap(err, "service public key")
	}
	r, err := pokercrypto.HashToScalar(inputNonceDomain, entropy, pk, []byte(ctx.GameID), []byte(ctx.Identity), []byte(ctx.Action))
	if err != nil {
		return nil, nil, err
	}
	w, err := pokercrypto.HashToScalar(inputProofNonce, entropy, r.Bytes())
	if err != nil {
		return nil, nil, err
	}
	ct, err := pokercrypto.ElGamalEncrypt(pkPoint, pokercrypto.ScalarFromUint64(value), r)
	if err != nil {
		return nil, nil, err
	}
	ip, err := pokercrypto.InputProve(pkPoint, ct, r, w, ctx.fields()...)
	if err != nil {
		return nil, nil, err
	}
	return pokercrypto.EncodeCiphertext(ct), pokercrypto.EncodeInputProof(ip), nil
}
