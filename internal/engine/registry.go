package engine

import "github.com/MichaelBrownui/PrivacyPoker/internal/state"

// Seat bookkeeping over a game's player list. No confidential arithmetic
// here, only handle storage and turn-order queries.

func registerPlayer(g *state.Game, identity string, height int64) *state.Player {
	p := &state.Player{
		Identity:       identity,
		Seat:           len(g.Players),
		JoinedAtHeight: height,
	}
	g.Players = append(g.Players, p)
	return p
}

func LookupPlayer(g *state.Game, identity string) (*state.Player, error) {
	for _, p := range g.Players {
		if p.Identity == identity {
			return p, nil
		}
	}
	return nil, ErrNotJoined
}

func SeatedCount(g *state.Game) int {
	return len(g.Players)
}

// NextActiveSeat returns the next non-folded seat after from, wrapping.
func NextActiveSeat(g *state.Game, from int) (int, error) {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if !g.Players[i].Folded {
			return i, nil
		}
	}
	return -1, ErrNoPlayersLeft
}

// LastStanding reports the single remaining unfolded seat, if exactly one.
func LastStanding(g *state.Game) (int, bool) {
	seat := -1
	for _, p := range g.Players {
		if p.Folded {
			continue
		}
		if seat != -1 {
			return -1, false
		}
		seat = p.Seat
	}
	if seat == -1 {
		return -1, false
	}
	return seat, true
}
