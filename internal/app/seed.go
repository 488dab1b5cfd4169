package app

import (
	"crypto/sha256"
	"fmt"
)

// deckSeed fixes the card permutation for a hand at the moment its start tx
// lands. Every replica computes the same seed from the same block position.
func deckSeed(height int64, gameID string) []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("privacypoker/deck|%d|%s", height, gameID)))
	return sum[:]
}
