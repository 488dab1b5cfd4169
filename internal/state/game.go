package state

type Phase string

const (
	PhaseWaiting Phase = "waitingForPlayers"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

// Game is one table instance. Phase only moves forward
// (waitingForPlayers -> active -> ended); an ended game stays queryable but
// is never mutated again.
type Game struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Phase Phase  `json:"phase"`

	// Seat-ordered; seat indexes are dense and stable for the game's lifetime.
	Players []*Player `json:"players"`

	// ActiveSeat is the turn pointer (-1 outside the active phase).
	ActiveSeat int `json:"activeSeat"`

	// Seed drives deterministic card derivation for this game. It is part of
	// the trusted dealing capability: confidentiality of undealt cards rests
	// on nodes not acting on it outside the vault path.
	Seed []byte `json:"seed,omitempty"`

	// CardsIssued counts every card issued so far (hole and community); it is
	// the next deck position and never resets within a game.
	CardsIssued uint8 `json:"cardsIssued"`

	// CommunityCards are cleartext card ids (0..51), public once revealed.
	// Append-only, max 5. CommunityHandles keeps the matching vault handles
	// for audit.
	CommunityCards   []uint8  `json:"communityCards"`
	CommunityHandles []string `json:"communityHandles,omitempty"`

	// PotHandle accumulates confidential contributions. Only the ledger
	// swaps it.
	PotHandle string `json:"potHandle,omitempty"`

	// ActionDeadline is the unix second at/after which poker/tick may
	// force-fold the active seat. 0 means unset.
	ActionTimeoutSecs int64 `json:"actionTimeoutSecs,omitempty"`
	ActionDeadline    int64 `json:"actionDeadline,omitempty"`

	// WinnerSeat is -1 until the game ends.
	WinnerSeat int `json:"winnerSeat"`
}

type Player struct {
	Identity string `json:"identity"`
	Seat     int    `json:"seat"`

	// Confidential handles. BalanceHandle is readable only under the player's
	// own decryption grant; HoleCards are assigned once at game start and
	// never reassigned.
	BalanceHandle string    `json:"balanceHandle,omitempty"`
	HoleCards     [2]string `json:"holeCards"`

	// Folded is monotonic: once true it never reverts.
	Folded bool `json:"folded"`

	JoinedAtHeight int64 `json:"joinedAtHeight,omitempty"`
}
