package pokercrypto

import "fmt"

type ElGamalCiphertext struct {
	C1 Point
	C2 Point
}

// Exponential ElGamal in additive notation:
//   PK = Y = x*G
//   Enc(Y, m; r) = (r*G, m*G + r*Y)
//
// Ciphertexts of the same key add componentwise, so
// Enc(a) + Enc(b) decrypts to (a+b)*G. Recovering the integer from m*G is
// the verifier's job (see the discrete-log lookup in the vault); the group
// operations here never see a plaintext.
func ElGamalEncrypt(pk Point, m Scalar, r Scalar) (ElGamalCiphertext, error) {
	if r.IsZero() {
		// Zero randomness is valid mathematically but leaks the plaintext.
		return ElGamalCiphertext{}, fmt.Errorf("elgamal: r must be non-zero")
	}
	c1 := MulBase(r)
	c2 := PointAdd(MulBase(m), MulPoint(pk, r))
	return ElGamalCiphertext{C1: c1, C2: c2}, nil
}

// Dec(x, (c1,c2)) = c2 - x*c1 = m*G
func ElGamalDecrypt(sk Scalar, ct ElGamalCiphertext) Point {
	return PointSub(ct.C2, MulPoint(ct.C1, sk))
}

func CiphertextAdd(a, b ElGamalCiphertext) ElGamalCiphertext {
	return ElGamalCiphertext{
		C1: PointAdd(a.C1, b.C1),
		C2: PointAdd(a.C2, b.C2),
	}
}

func CiphertextSub(a, b ElGamalCiphertext) ElGamalCiphertext {
	return ElGamalCiphertext{
		C1: PointSub(a.C1, b.C1),
		C2: PointSub(a.C2, b.C2),
	}
}
