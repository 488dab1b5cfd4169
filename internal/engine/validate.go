package engine

import (
	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

// Pure precondition predicates, side-effect-free. Each returns the precise
// error kind so callers can surface exact feedback.

func CanJoin(g *state.Game, identity string, stake uint64) error {
	if g.Phase != state.PhaseWaiting {
		return ErrGameNotWaiting
	}
	if _, err := LookupPlayer(g, identity); err == nil {
		return ErrAlreadyJoined
	}
	if stake < Ante {
		return ErrInsufficientStake
	}
	if stake > confidential.MaxAmount {
		return ErrStakeTooLarge
	}
	if len(g.Players) >= MaxPlayers {
		return ErrGameFull
	}
	return nil
}

func CanStart(g *state.Game, caller string) error {
	if caller != g.Owner {
		return ErrNotOwner
	}
	if g.Phase != state.PhaseWaiting {
		return ErrGameNotWaiting
	}
	if SeatedCount(g) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	return nil
}

func CanDealCommunity(g *state.Game, caller string) error {
	if caller != g.Owner {
		return ErrNotOwner
	}
	if g.Phase != state.PhaseActive {
		return ErrGameNotActive
	}
	if len(g.CommunityCards) >= CommunityCardMax {
		return ErrAllCommunityCardsDealt
	}
	return nil
}

func CanAct(g *state.Game, identity string) (*state.Player, error) {
	if g.Phase != state.PhaseActive {
		return nil, ErrGameNotActive
	}
	p, err := LookupPlayer(g, identity)
	if err != nil {
		return nil, err
	}
	if p.Folded {
		return nil, ErrAlreadyFolded
	}
	if p.Seat != g.ActiveSeat {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func CanEnd(g *state.Game, caller string) error {
	if caller != g.Owner {
		return ErrNotOwner
	}
	if g.Phase != state.PhaseActive {
		return ErrGameNotActive
	}
	return nil
}
