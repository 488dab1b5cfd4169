package engine

import "errors"

// Every rejected action maps to one of these kinds; callers never get a bare
// boolean failure.
var (
	ErrAlreadyJoined          = errors.New("player already joined")
	ErrInsufficientStake      = errors.New("insufficient ante amount")
	ErrGameFull               = errors.New("game is full")
	ErrNotOwner               = errors.New("only game owner can call this")
	ErrNotEnoughPlayers       = errors.New("not enough players")
	ErrGameNotWaiting         = errors.New("game is not accepting players")
	ErrGameNotActive          = errors.New("game is not active")
	ErrAllCommunityCardsDealt = errors.New("all community cards already dealt")
	ErrNotJoined              = errors.New("only joined players can call this")
	ErrNotYourTurn            = errors.New("not your turn")
	ErrAlreadyFolded          = errors.New("player already folded")
	ErrLastPlayerFold         = errors.New("last remaining player cannot fold")
	ErrStakeTooLarge          = errors.New("stake exceeds maximum amount")
	ErrInvalidProof           = errors.New("invalid input proof")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidWinner          = errors.New("invalid winner seat")
	ErrNoPlayersLeft          = errors.New("no unfolded players left")
	ErrUnknownAction          = errors.New("unknown action")
	ErrDeadlineNotReached     = errors.New("action deadline not reached")
)
