package pokercrypto

import "fmt"

// InputProof is a Schnorr proof of knowledge of the encryption randomness r
// for a ciphertext (c1, c2) = (r*G, m*G + r*Y), bound to a caller-supplied
// context. Binding the context (game, identity, action) stops a ciphertext
// produced for one call from being replayed in another.
type InputProof struct {
	// a = w*G
	A Point
	// z = w + e*r
	Z Scalar
}

const inputProofDomain = "privacypoker/v1/input-proof"

func inputProofChallenge(pk Point, ct ElGamalCiphertext, a Point, context [][]byte) (Scalar, error) {
	tr := NewTranscript(inputProofDomain)
	_ = tr.AppendMessage("pk", pk.Bytes())
	_ = tr.AppendMessage("c1", ct.C1.Bytes())
	_ = tr.AppendMessage("c2", ct.C2.Bytes())
	_ = tr.AppendMessage("a", a.Bytes())
	for _, c := range context {
		if err := tr.AppendMessage("ctx", c); err != nil {
			return Scalar{}, err
		}
	}
	return tr.ChallengeScalar("e")
}

func InputProve(pk Point, ct ElGamalCiphertext, r Scalar, w Scalar, context ...[]byte) (InputProof, error) {
	if w.IsZero() {
		return InputProof{}, fmt.Errorf("input-proof: w must be non-zero")
	}
	a := MulBase(w)
	e, err := inputProofChallenge(pk, ct, a, context)
	if err != nil {
		return InputProof{}, err
	}
	z := ScalarAdd(w, ScalarMul(e, r))
	return InputProof{A: a, Z: z}, nil
}

func InputVerify(pk Point, ct ElGamalCiphertext, proof InputProof, context ...[]byte) (bool, error) {
	e, err := inputProofChallenge(pk, ct, proof.A, context)
	if err != nil {
		return false, err
	}
	// Check: z*G == a + e*c1
	lhs := MulBase(proof.Z)
	rhs := PointAdd(proof.A, MulPoint(ct.C1, e))
	return PointEq(lhs, rhs), nil
}

// Encoding: A(32) || z(32 le)
func EncodeInputProof(p InputProof) []byte {
	return concatBytes(p.A.Bytes(), p.Z.Bytes())
}

func DecodeInputProof(b []byte) (InputProof, error) {
	if len(b) != PointBytes+ScalarBytes {
		return InputProof{}, fmt.Errorf("input-proof: expected %d bytes", PointBytes+ScalarBytes)
	}
	a, err := PointFromBytesCanonical(b[:PointBytes])
	if err != nil {
		return InputProof{}, err
	}
	z, err := ScalarFromBytesCanonical(b[PointBytes:])
	if err != nil {
		return InputProof{}, err
	}
	return InputProof{A: a, Z: z}, nil
}
