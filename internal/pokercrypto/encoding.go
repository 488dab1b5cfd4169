package pokercrypto

import "fmt"

func u32le(x uint32) []byte {
	return []byte{byte(x), byte(x >> 8), byte(x >> 16), byte(x >> 24)}
}

func U64LE(x uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(x >> (8 * i))
	}
	return b
}

func concatBytes(chunks ...[]byte) []byte {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

const CiphertextBytes = 2 * PointBytes

// Encoding: C1(32) || C2(32)
func EncodeCiphertext(ct ElGamalCiphertext) []byte {
	return concatBytes(ct.C1.Bytes(), ct.C2.Bytes())
}

func DecodeCiphertext(b []byte) (ElGamalCiphertext, error) {
	if len(b) != CiphertextBytes {
		return ElGamalCiphertext{}, fmt.Errorf("ciphertext: expected %d bytes", CiphertextBytes)
	}
	c1, err := PointFromBytesCanonical(b[:PointBytes])
	if err != nil {
		return ElGamalCiphertext{}, err
	}
	c2, err := PointFromBytesCanonical(b[PointBytes:])
	if err != nil {
		return ElGamalCiphertext{}, err
	}
	return ElGamalCiphertext{C1: c1, C2: c2}, nil
}
