// Package deck derives confidential cards from a per-game seed and a
// monotonic position counter. No plaintext deck is ever materialized: the
// card at a position is recomputed from the seed on demand, so issuance is
// restartable and auditable.
package deck

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
)

// Size is the number of distinct cards a game can issue.
const Size = 52

// Card ids are 0..51: id%13 is the rank (2..A), id/13 the suit (c,d,h,s).

// CardAt returns the card at position pos of the permutation that seed
// defines. Distinct positions of the same seed never collide.
func CardAt(seed []byte, pos uint8) (uint8, error) {
	if len(seed) == 0 {
		return 0, fmt.Errorf("deck: empty seed")
	}
	if pos >= Size {
		return 0, fmt.Errorf("deck: position %d out of range", pos)
	}
	perm := permutation(seed)
	return perm[pos], nil
}

// permutation runs a Fisher-Yates shuffle driven by a sha256 stream over the
// seed. Deterministic for a given seed.
func permutation(seed []byte) [Size]uint8 {
	var deck [Size]uint8
	for i := 0; i < Size; i++ {
		deck[i] = uint8(i)
	}
	var counter uint64
	for i := Size - 1; i > 0; i-- {
		buf := make([]byte, len(seed)+8)
		copy(buf, seed)
		binary.LittleEndian.PutUint64(buf[len(seed):], counter)
		h := sha256.Sum256(buf)
		counter++
		j := int(binary.LittleEndian.Uint64(h[:8]) % uint64(i+1))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Allocator issues cards as confidential handles through the value service.
type Allocator struct {
	svc confidential.Service
}

func NewAllocator(svc confidential.Service) *Allocator {
	return &Allocator{svc: svc}
}

// IssueHoleCard encrypts the card at pos and grants decryption only to its
// owning identity. The cleartext never surfaces.
func (a *Allocator) IssueHoleCard(seed []byte, pos uint8, owner string) (confidential.Handle, error) {
	card, err := CardAt(seed, pos)
	if err != nil {
		return "", err
	}
	return a.svc.Encrypt(uint64(card), owner)
}

// IssueCommunityCard encrypts the card at pos and immediately discloses it.
// Returns the handle and the cleartext.
func (a *Allocator) IssueCommunityCard(seed []byte, pos uint8) (confidential.Handle, uint8, error) {
	card, err := CardAt(seed, pos)
	if err != nil {
		return "", 0, err
	}
	h, err := a.svc.Encrypt(uint64(card), "")
	if err != nil {
		return "", 0, err
	}
	if _, err := a.svc.Reveal(h); err != nil {
		return "", 0, err
	}
	return h, card, nil
}

// CardString renders a card id as rank+suit, e.g. "Ah" or "7c".
func CardString(c uint8) string {
	r := c%13 + 2
	var rch byte
	switch r {
	case 14:
		rch = 'A'
	case 13:
		rch = 'K'
	case 12:
		rch = 'Q'
	case 11:
		rch = 'J'
	case 10:
		rch = 'T'
	default:
		rch = byte('0' + r)
	}
	var sch byte
	switch c / 13 {
	case 0:
		sch = 'c'
	case 1:
		sch = 'd'
	case 2:
		sch = 'h'
	default:
		sch = 's'
	}
	return string([]byte{rch, sch})
}
