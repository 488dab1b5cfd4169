package confidential

import (
	"sync"

	"github.com/MichaelBrownui/PrivacyPoker/internal/pokercrypto"
)

// Bounded discrete log via baby-step giant-step.
const babySteps = 1 << 10

// dlogMax is the largest recoverable plaintext. Individual amounts are capped
// at MaxAmount, but pots and balances accumulate several of them (up to a
// full table of maximum stakes), so recovery reaches further.
const dlogMax = uint64(8) * MaxAmount

var (
	babyOnce  sync.Once
	babyTable map[string]uint64
	giantStep pokercrypto.Point
)

func initBabyTable() {
	babyTable = make(map[string]uint64, babySteps)
	p := pokercrypto.PointIdentity()
	g := pokercrypto.MulBase(pokercrypto.ScalarFromUint64(1))
	for j := uint64(0); j < babySteps; j++ {
		babyTable[string(p.Bytes())] = j
		p = pokercrypto.PointAdd(p, g)
	}
	giantStep = pokercrypto.MulBase(pokercrypto.ScalarFromUint64(babySteps))
}

// lookupDiscreteLog recovers m from m*G for m in [0, dlogMax].
func lookupDiscreteLog(mp pokercrypto.Point) (uint64, bool) {
	babyOnce.Do(initBabyTable)

	cur := mp
	for i := uint64(0); i*babySteps <= dlogMax; i++ {
		if j, ok := babyTable[string(cur.Bytes())]; ok {
			return i*babySteps + j, true
		}
		cur = pokercrypto.PointSub(cur, giantStep)
	}
	return 0, false
}
