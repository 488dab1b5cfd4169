package engine

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

var now = time.Unix(1_700_000_000, 0)

func testSeed() []byte {
	sum := sha256.Sum256([]byte("engine test seed"))
	return sum[:]
}

func newTestEngine(t *testing.T) (*Engine, confidential.Service) {
	t.Helper()
	svc := confidential.NewVault(state.NewVaultStore())
	return New(svc), svc
}

func newActiveGame(t *testing.T, e *Engine, players ...string) *state.Game {
	t.Helper()
	g, err := e.CreateGame("g1", players[0], 0)
	require.NoError(t, err)
	for _, p := range players {
		_, err := e.Join(g, p, 100, 1)
		require.NoError(t, err)
	}
	require.NoError(t, e.Start(g, players[0], testSeed(), now))
	return g
}

func TestCreateGameDefaults(t *testing.T) {
	e, _ := newTestEngine(t)
	g, err := e.CreateGame("g1", "alice", 0)
	require.NoError(t, err)

	assert.Equal(t, state.PhaseWaiting, g.Phase)
	assert.Equal(t, -1, g.ActiveSeat)
	assert.Equal(t, -1, g.WinnerSeat)
	assert.EqualValues(t, DefaultActionTimeoutSecs, g.ActionTimeoutSecs)
	assert.NotEmpty(t, g.PotHandle)
}

func TestJoinAssignsDenseSeats(t *testing.T) {
	e, _ := newTestEngine(t)
	g, err := e.CreateGame("g1", "alice", 0)
	require.NoError(t, err)

	for i, name := range []string{"alice", "bob", "carol"} {
		p, err := e.Join(g, name, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, i, p.Seat)
	}

	_, err = e.Join(g, "bob", 100, 1)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	_, err = e.Join(g, "dave", Ante-1, 1)
	assert.ErrorIs(t, err, ErrInsufficientStake)
}

func TestStartDealsTwoHoleCardsPerSeat(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob", "carol")

	assert.Equal(t, state.PhaseActive, g.Phase)
	assert.Equal(t, 0, g.ActiveSeat)
	assert.EqualValues(t, 6, g.CardsIssued)
	for _, p := range g.Players {
		assert.NotEmpty(t, p.HoleCards[0])
		assert.NotEmpty(t, p.HoleCards[1])
	}
	assert.Equal(t, now.Unix()+g.ActionTimeoutSecs, g.ActionDeadline)
}

func TestAnteCollectedIntoPot(t *testing.T) {
	e, svc := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	pot, err := svc.Reveal(confidential.Handle(g.PotHandle))
	require.NoError(t, err)
	assert.EqualValues(t, 2*Ante, pot)

	bal, err := svc.Decrypt(confidential.Handle(g.Players[0].BalanceHandle), "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 100-Ante, bal)
}

func TestDealCommunitySchedule(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	flop, err := e.DealCommunity(g, "alice")
	require.NoError(t, err)
	assert.Len(t, flop, 3)

	turn, err := e.DealCommunity(g, "alice")
	require.NoError(t, err)
	assert.Len(t, turn, 1)

	river, err := e.DealCommunity(g, "alice")
	require.NoError(t, err)
	assert.Len(t, river, 1)

	_, err = e.DealCommunity(g, "alice")
	assert.ErrorIs(t, err, ErrAllCommunityCardsDealt)

	// Board and hole cards never collide.
	seen := map[uint8]bool{}
	for _, c := range g.CommunityCards {
		assert.False(t, seen[c], "card %d repeated", c)
		seen[c] = true
	}
}

func TestActAdvancesAndWraps(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob", "carol")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))
	assert.Equal(t, 1, g.ActiveSeat)

	require.NoError(t, e.Act(g, "bob", ActionCall, nil, nil, now))
	require.NoError(t, e.Act(g, "carol", ActionCall, nil, nil, now))
	// Wraps past the folded seat 0.
	assert.Equal(t, 1, g.ActiveSeat)

	err := e.Act(g, "alice", ActionCall, nil, nil, now)
	assert.ErrorIs(t, err, ErrAlreadyFolded)
	err = e.Act(g, "carol", ActionCall, nil, nil, now)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestLastPlayerCannotFold(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))

	// Bob is the only live seat; folding would leave no resolvable winner.
	err := e.Act(g, "bob", ActionFold, nil, nil, now)
	assert.ErrorIs(t, err, ErrLastPlayerFold)
	assert.False(t, g.Players[1].Folded)

	// Other actions and the game end stay available.
	require.NoError(t, e.Act(g, "bob", ActionCall, nil, nil, now))
	winner, err := e.EndGame(g, "alice", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, winner)
	assert.Equal(t, state.PhaseEnded, g.Phase)
}

func TestLastPlayerCannotBeForceFolded(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))

	_, err := e.ForceFold(g, now.Add(time.Duration(g.ActionTimeoutSecs+1)*time.Second))
	assert.ErrorIs(t, err, ErrLastPlayerFold)
	assert.False(t, g.Players[1].Folded)
}

func TestJoinRejectsOversizedStake(t *testing.T) {
	e, _ := newTestEngine(t)
	g, err := e.CreateGame("g1", "alice", 0)
	require.NoError(t, err)

	_, err = e.Join(g, "alice", 2*confidential.MaxAmount, 1)
	assert.ErrorIs(t, err, ErrStakeTooLarge)
	assert.Empty(t, g.Players)

	// The boundary value is fine, and the table still starts.
	_, err = e.Join(g, "alice", confidential.MaxAmount, 1)
	require.NoError(t, err)
	_, err = e.Join(g, "bob", confidential.MaxAmount, 1)
	require.NoError(t, err)
	require.NoError(t, e.Start(g, "alice", testSeed(), now))
	assert.Equal(t, state.PhaseActive, g.Phase)
}

func TestFoldIsMonotonic(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))
	err := e.Act(g, "alice", ActionFold, nil, nil, now)
	assert.ErrorIs(t, err, ErrAlreadyFolded)
	assert.True(t, g.Players[0].Folded)
}

func TestRaiseRequiresProof(t *testing.T) {
	e, svc := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	err := e.Act(g, "alice", ActionRaise, nil, nil, now)
	assert.ErrorIs(t, err, ErrInvalidProof)

	ctx := confidential.ProofContext{GameID: g.ID, Identity: "alice", Action: "raise"}
	cipher, proof, err := confidential.EncryptInput(svc.PublicKey(), 30, []byte("entropy"), ctx)
	require.NoError(t, err)
	require.NoError(t, e.Act(g, "alice", ActionRaise, cipher, proof, now))

	bal, err := svc.Decrypt(confidential.Handle(g.Players[0].BalanceHandle), "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 100-Ante-30, bal)

	pot, err := svc.Reveal(confidential.Handle(g.PotHandle))
	require.NoError(t, err)
	assert.EqualValues(t, 2*Ante+30, pot)
}

func TestRaiseRejectsReboundProof(t *testing.T) {
	e, svc := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	// Proof produced for bob cannot authorize alice's raise.
	ctx := confidential.ProofContext{GameID: g.ID, Identity: "bob", Action: "raise"}
	cipher, proof, err := confidential.EncryptInput(svc.PublicKey(), 30, []byte("entropy"), ctx)
	require.NoError(t, err)

	err = e.Act(g, "alice", ActionRaise, cipher, proof, now)
	assert.ErrorIs(t, err, ErrInvalidProof)
}

func TestEndGameResolution(t *testing.T) {
	e, svc := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob", "carol")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))

	_, err := e.EndGame(g, "bob", 1)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = e.EndGame(g, "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidWinner)
	_, err = e.EndGame(g, "alice", 9)
	assert.ErrorIs(t, err, ErrInvalidWinner)

	winner, err := e.EndGame(g, "alice", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, winner)
	assert.Equal(t, state.PhaseEnded, g.Phase)
	assert.Equal(t, -1, g.ActiveSeat)

	bal, err := svc.Decrypt(confidential.Handle(g.Players[2].BalanceHandle), "carol")
	require.NoError(t, err)
	assert.EqualValues(t, 100-Ante+3*Ante, bal)

	pot, err := svc.Reveal(confidential.Handle(g.PotHandle))
	require.NoError(t, err)
	assert.Zero(t, pot)

	_, err = e.EndGame(g, "alice", 2)
	assert.ErrorIs(t, err, ErrGameNotActive)
}

func TestEndGameLastStandingWins(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	require.NoError(t, e.Act(g, "alice", ActionFold, nil, nil, now))

	// Declared seat is overridden by the only live player.
	winner, err := e.EndGame(g, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, winner)
	assert.Equal(t, 1, g.WinnerSeat)
}

func TestForceFold(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newActiveGame(t, e, "alice", "bob")

	_, err := e.ForceFold(g, now.Add(10*time.Second))
	assert.ErrorIs(t, err, ErrDeadlineNotReached)

	p, err := e.ForceFold(g, now.Add(time.Duration(g.ActionTimeoutSecs+1)*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Identity)
	assert.True(t, p.Folded)
	assert.Equal(t, 1, g.ActiveSeat)
}

func TestNextActiveSeatSkipsFolded(t *testing.T) {
	g := &state.Game{Players: []*state.Player{
		{Seat: 0, Folded: true},
		{Seat: 1},
		{Seat: 2, Folded: true},
		{Seat: 3},
	}}

	next, err := NextActiveSeat(g, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	next, err = NextActiveSeat(g, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	g.Players[1].Folded = true
	g.Players[3].Folded = true
	_, err = NextActiveSeat(g, 0)
	assert.ErrorIs(t, err, ErrNoPlayersLeft)
}

func TestLastStanding(t *testing.T) {
	g := &state.Game{Players: []*state.Player{
		{Seat: 0, Folded: true},
		{Seat: 1},
		{Seat: 2},
	}}
	_, ok := LastStanding(g)
	assert.False(t, ok)

	g.Players[2].Folded = true
	seat, ok := LastStanding(g)
	assert.True(t, ok)
	assert.Equal(t, 1, seat)

	g.Players[1].Folded = true
	_, ok = LastStanding(g)
	assert.False(t, ok)
}

func TestParseAction(t *testing.T) {
	for want, name := range map[BetAction]string{
		ActionFold:  "fold",
		ActionCall:  "call",
		ActionRaise: "raise",
	} {
		got, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	_, err := ParseAction("check")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
