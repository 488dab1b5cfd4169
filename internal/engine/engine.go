// Package engine implements the poker table rules: seating, the betting
// loop, the community deal schedule and pot resolution. It owns no
// cryptography of its own; amounts live behind confidential handles and
// cards are drawn through the deck allocator.
package engine

import (
	"time"

	"github.com/pkg/errors"

	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
	"github.com/MichaelBrownui/PrivacyPoker/internal/deck"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

const (
	// Ante is the fixed buy-in debited from every player when the hand
	// starts. Joins below this stake are rejected up front.
	Ante = 10

	// CallAmount is the fixed price of a call bet.
	CallAmount = 10

	MaxPlayers = 6
	MinPlayers = 2

	// CommunityCardMax caps the board at the flop plus turn plus river.
	CommunityCardMax = 5

	// DefaultActionTimeoutSecs is used when a game is created without an
	// explicit timeout. After this long on one seat the player can be
	// force-folded by a tick.
	DefaultActionTimeoutSecs = 30
)

// BetAction is a player's move on their turn.
type BetAction uint8

const (
	ActionFold BetAction = iota
	ActionCall
	ActionRaise
)

func (a BetAction) String() string {
	switch a {
	case ActionFold:
		return "fold"
	case ActionCall:
		return "call"
	case ActionRaise:
		return "raise"
	}
	return "unknown"
}

// ParseAction maps the wire name of an action to its BetAction.
func ParseAction(s string) (BetAction, error) {
	switch s {
	case "fold":
		return ActionFold, nil
	case "call":
		return ActionCall, nil
	case "raise":
		return ActionRaise, nil
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", s)
}

// Engine applies game transitions to state.Game values. It is stateless
// itself; all mutations land on the games passed in, which makes it safe to
// run against a staged copy of the app state.
type Engine struct {
	svc   confidential.Service
	cards *deck.Allocator
}

func New(svc confidential.Service) *Engine {
	return &Engine{svc: svc, cards: deck.NewAllocator(svc)}
}

// CreateGame initializes a fresh table in the waiting phase with an empty
// encrypted pot owned by the creator.
func (e *Engine) CreateGame(id, owner string, actionTimeoutSecs int64) (*state.Game, error) {
	if actionTimeoutSecs <= 0 {
		actionTimeoutSecs = DefaultActionTimeoutSecs
	}
	pot, err := e.svc.Encrypt(0, owner)
	if err != nil {
		return nil, errors.Wrap(err, "init pot")
	}
	return &state.Game{
		ID:                id,
		Owner:             owner,
		Phase:             state.PhaseWaiting,
		ActiveSeat:        -1,
		WinnerSeat:        -1,
		PotHandle:         string(pot),
		ActionTimeoutSecs: actionTimeoutSecs,
	}, nil
}

// Join seats a new player and credits their stake as an encrypted balance.
func (e *Engine) Join(g *state.Game, identity string, stake uint64, height int64) (*state.Player, error) {
	if err := CanJoin(g, identity, stake); err != nil {
		return nil, err
	}
	p := registerPlayer(g, identity, height)
	if err := e.creditStake(p, stake); err != nil {
		return nil, errors.Wrap(err, "credit stake")
	}
	return p, nil
}

// Start collects the ante from every seat, deals two hole cards per player
// in seat order and opens the betting round on the first seat.
func (e *Engine) Start(g *state.Game, caller string, seed []byte, now time.Time) error {
	if err := CanStart(g, caller); err != nil {
		return err
	}
	ante, err := e.svc.Encrypt(Ante, g.Owner)
	if err != nil {
		return errors.Wrap(err, "encrypt ante")
	}
	for _, p := range g.Players {
		if err := e.debit(p, ante); err != nil {
			return errors.Wrapf(err, "ante seat %d", p.Seat)
		}
		if err := e.contributeToPot(g, ante); err != nil {
			return errors.Wrapf(err, "pot seat %d", p.Seat)
		}
	}
	// First card to every seat, then the second. Matches a physical deal
	// and keeps card positions a pure function of the seat count.
	g.Seed = append([]byte(nil), seed...)
	for round := 0; round < 2; round++ {
		for _, p := range g.Players {
			h, err := e.cards.IssueHoleCard(g.Seed, g.CardsIssued, p.Identity)
			if err != nil {
				return errors.Wrapf(err, "hole card seat %d", p.Seat)
			}
			p.HoleCards[round] = string(h)
			g.CardsIssued++
		}
	}
	g.Phase = state.PhaseActive
	g.ActiveSeat = 0
	g.ActionDeadline = now.Unix() + g.ActionTimeoutSecs
	return nil
}

// DealCommunity reveals the next street: three cards for the flop, then one
// each for the turn and the river. Returns the cleartext cards dealt.
func (e *Engine) DealCommunity(g *state.Game, caller string) ([]uint8, error) {
	if err := CanDealCommunity(g, caller); err != nil {
		return nil, err
	}
	count := 1
	if len(g.CommunityCards) == 0 {
		count = 3
	}
	dealt := make([]uint8, 0, count)
	for i := 0; i < count; i++ {
		h, card, err := e.cards.IssueCommunityCard(g.Seed, g.CardsIssued)
		if err != nil {
			return nil, errors.Wrap(err, "community card")
		}
		g.CardsIssued++
		g.CommunityCards = append(g.CommunityCards, card)
		g.CommunityHandles = append(g.CommunityHandles, string(h))
		dealt = append(dealt, card)
	}
	return dealt, nil
}

// Act applies a player's turn. Raises carry their amount as a fresh
// ciphertext plus a proof binding it to this game, player and action; a
// missing or bad proof rejects the whole action before any balance moves.
func (e *Engine) Act(g *state.Game, identity string, action BetAction, amountCipher, proof []byte, now time.Time) error {
	p, err := CanAct(g, identity)
	if err != nil {
		return err
	}
	switch action {
	case ActionFold:
		// The sole unfolded player may not fold: an all-folded table has no
		// resolvable winner and would lock the pot forever.
		if _, sole := LastStanding(g); sole {
			return ErrLastPlayerFold
		}
		p.Folded = true
	case ActionCall:
		amt, err := e.svc.Encrypt(CallAmount, g.Owner)
		if err != nil {
			return errors.Wrap(err, "encrypt call")
		}
		if err := e.debit(p, amt); err != nil {
			return err
		}
		if err := e.contributeToPot(g, amt); err != nil {
			return err
		}
	case ActionRaise:
		if len(amountCipher) == 0 || len(proof) == 0 {
			return ErrInvalidProof
		}
		amt, err := e.svc.Import(amountCipher, identity)
		if err != nil {
			return errors.Wrap(ErrInvalidProof, err.Error())
		}
		ok, err := e.svc.VerifyInputProof(amt, proof, confidential.ProofContext{
			GameID:   g.ID,
			Identity: identity,
			Action:   "raise",
		})
		if err != nil {
			return errors.Wrap(err, "verify raise")
		}
		if !ok {
			return ErrInvalidProof
		}
		if err := e.debit(p, amt); err != nil {
			return err
		}
		if err := e.contributeToPot(g, amt); err != nil {
			return err
		}
	default:
		return ErrUnknownAction
	}
	e.advanceTurn(g, now)
	return nil
}

func (e *Engine) advanceTurn(g *state.Game, now time.Time) {
	next, err := NextActiveSeat(g, g.ActiveSeat)
	if err != nil {
		g.ActiveSeat = -1
		return
	}
	g.ActiveSeat = next
	g.ActionDeadline = now.Unix() + g.ActionTimeoutSecs
}

// EndGame resolves the hand. If exactly one unfolded player remains they win
// regardless of winnerSeat; otherwise winnerSeat must name a seated, unfolded
// player. The pot moves into the winner's balance and the game closes.
func (e *Engine) EndGame(g *state.Game, caller string, winnerSeat int) (int, error) {
	if err := CanEnd(g, caller); err != nil {
		return -1, err
	}
	if seat, ok := LastStanding(g); ok {
		winnerSeat = seat
	}
	if winnerSeat < 0 || winnerSeat >= len(g.Players) {
		return -1, ErrInvalidWinner
	}
	winner := g.Players[winnerSeat]
	if winner.Folded {
		return -1, ErrInvalidWinner
	}
	if err := e.disbursePot(g, winner); err != nil {
		return -1, errors.Wrap(err, "disburse pot")
	}
	if err := e.svc.Grant(confidential.Handle(winner.BalanceHandle), winner.Identity); err != nil {
		return -1, errors.Wrap(err, "grant winner")
	}
	g.Phase = state.PhaseEnded
	g.WinnerSeat = winnerSeat
	g.ActiveSeat = -1
	g.ActionDeadline = 0
	return winnerSeat, nil
}

// ForceFold folds the active seat once its deadline has passed, then hands
// the turn to the next live seat. Used by the tick path to keep a stalled
// table moving.
func (e *Engine) ForceFold(g *state.Game, now time.Time) (*state.Player, error) {
	if g.Phase != state.PhaseActive || g.ActiveSeat < 0 {
		return nil, ErrGameNotActive
	}
	if g.ActionDeadline == 0 || now.Unix() < g.ActionDeadline {
		return nil, ErrDeadlineNotReached
	}
	// Same rule as a voluntary fold: the last unfolded seat stays in so the
	// game remains resolvable; a stalled finale is the owner's cue to end.
	if _, sole := LastStanding(g); sole {
		return nil, ErrLastPlayerFold
	}
	p := g.Players[g.ActiveSeat]
	p.Folded = true
	e.advanceTurn(g, now)
	return p, nil
}
