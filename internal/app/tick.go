package app

import (
	"fmt"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/MichaelBrownui/PrivacyPoker/internal/engine"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

// applyTick force-folds the active seat of a game whose action deadline has
// passed. Anyone may submit a tick; it only succeeds when the deadline is
// really over, so it cannot be abused to skip a live player.
func (a *PokerApp) applyTick(st *state.State, eng *engine.Engine, gameID string, blockTime time.Time) *abci.ExecTxResult {
	g, ok := st.Games[gameID]
	if !ok {
		return &abci.ExecTxResult{Code: 1, Log: "game not found"}
	}
	p, err := eng.ForceFold(g, blockTime)
	if err != nil {
		return &abci.ExecTxResult{Code: 1, Log: err.Error()}
	}
	a.logger.Info().Str("gameId", g.ID).Str("player", p.Identity).Msg("force-folded on timeout")
	return okEvent("PlayerForceFolded", map[string]string{
		"gameId":     g.ID,
		"player":     p.Identity,
		"seat":       fmt.Sprintf("%d", p.Seat),
		"activeSeat": fmt.Sprintf("%d", g.ActiveSeat),
	})
}
