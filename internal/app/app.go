// Package app is the ABCI layer: it decodes transactions, runs them through
// the game engine against a staged copy of the state and commits the copy
// only when the whole transaction succeeded. Consensus gives every replica
// the same tx order, so replaying the chain reproduces the state bit for bit.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MichaelBrownui/PrivacyPoker/internal/codec"
	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
	"github.com/MichaelBrownui/PrivacyPoker/internal/engine"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

const (
	AppVersion uint64 = 1
)

// gameIDNamespace seeds deterministic game ids: every replica derives the
// same id from the same block position.
var gameIDNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("privacypoker.games"))

type PokerApp struct {
	*abci.BaseApplication

	home   string
	logger zerolog.Logger

	mu       sync.Mutex
	st       *state.State
	lastHash []byte

	chainID string
}

func New(home string, logger zerolog.Logger) (*PokerApp, error) {
	appHome := filepath.Join(home, "app")
	st, err := state.Load(appHome)
	if err != nil {
		return nil, err
	}
	a := &PokerApp{
		BaseApplication: abci.NewBaseApplication(),
		home:            home,
		logger:          logger,
		st:              st,
		lastHash:        st.AppHash(),
	}
	return a, nil
}

func (a *PokerApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "PrivacyPoker",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *PokerApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	// Structural validation only; auth and game rules run in FinalizeBlock
	// where the committed state is authoritative.
	if _, err := codec.DecodeTxEnvelope(req.Tx); err != nil {
		return &abci.CheckTxResponse{Code: 1, Log: err.Error()}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *PokerApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chainID = req.ChainId
	// Devnet key derivation: all replicas derive the vault key from the
	// chain id, so encryptions are replayable.
	vault := confidential.NewVault(a.st.Vault)
	if err := vault.InitKey([]byte("privacypoker/vault/" + req.ChainId)); err != nil {
		return nil, err
	}
	a.lastHash = a.st.AppHash()
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *PokerApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height, req.Time)
		if res.Code != 0 {
			a.logger.Debug().Int64("height", req.Height).Str("log", res.Log).Msg("tx rejected")
		}
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *PokerApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	appHome := filepath.Join(a.home, "app")
	if err := a.st.Save(appHome); err != nil {
		// Returning the error halts the node rather than diverging silently.
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}

func (a *PokerApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /games
	// - /game/<id>
	// - /game/<id>/player/<identity>
	// - /pubkey
	path := strings.TrimSpace(req.Path)
	switch {
	case path == "/games":
		ids := make([]string, 0, len(a.st.Games))
		for id := range a.st.Games {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b, _ := json.Marshal(ids)
		return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
	case path == "/pubkey":
		vault := confidential.NewVault(a.st.Vault)
		b, _ := json.Marshal(map[string]any{"pubKey": vault.PublicKey()})
		return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
	case strings.HasPrefix(path, "/game/"):
		rest := strings.TrimPrefix(path, "/game/")
		if id, identity, ok := strings.Cut(rest, "/player/"); ok {
			return a.queryPlayerView(id, identity)
		}
		g, ok := a.st.Games[rest]
		if !ok {
			return &abci.QueryResponse{Code: 1, Log: "game not found", Height: a.st.Height}, nil
		}
		b, _ := json.Marshal(publicGameView(g))
		return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
	default:
		return &abci.QueryResponse{Code: 1, Log: "unknown query path", Height: a.st.Height}, nil
	}
}

// publicGameView strips hole-card handles out of the game document. Handles
// leak nothing by themselves but the public view should not advertise them.
func publicGameView(g *state.Game) map[string]any {
	players := make([]map[string]any, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, map[string]any{
			"identity": p.Identity,
			"seat":     p.Seat,
			"folded":   p.Folded,
		})
	}
	return map[string]any{
		"id":             g.ID,
		"owner":          g.Owner,
		"phase":          g.Phase,
		"players":        players,
		"activeSeat":     g.ActiveSeat,
		"communityCards": g.CommunityCards,
		"winnerSeat":     g.WinnerSeat,
		"actionDeadline": g.ActionDeadline,
	}
}

// queryPlayerView decrypts the caller's own hole cards and balance through
// their vault grants. Other identities get an authorization error.
func (a *PokerApp) queryPlayerView(gameID, identity string) (*abci.QueryResponse, error) {
	g, ok := a.st.Games[gameID]
	if !ok {
		return &abci.QueryResponse{Code: 1, Log: "game not found", Height: a.st.Height}, nil
	}
	p, err := engine.LookupPlayer(g, identity)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
	}
	vault := confidential.NewVault(a.st.Vault)
	view := map[string]any{
		"identity": identity,
		"seat":     p.Seat,
		"folded":   p.Folded,
	}
	if p.BalanceHandle != "" {
		bal, err := vault.Decrypt(confidential.Handle(p.BalanceHandle), identity)
		if err != nil {
			return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
		}
		view["balance"] = bal
	}
	cards := make([]string, 0, 2)
	for _, h := range p.HoleCards {
		if h == "" {
			continue
		}
		card, err := vault.Decrypt(confidential.Handle(h), identity)
		if err != nil {
			return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
		}
		cards = append(cards, fmt.Sprintf("%d", card))
	}
	view["holeCards"] = cards
	b, _ := json.Marshal(view)
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

// deliverTx executes one transaction against a staged copy of the state and
// swaps the copy in only on success. A failed tx therefore cannot leave a
// half-applied game behind, which matters because confidential operations
// can fail mid-transition.
func (a *PokerApp) deliverTx(txBytes []byte, height int64, blockTime time.Time) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return &abci.ExecTxResult{Code: 1, Log: err.Error()}
	}

	staged, err := a.st.Clone()
	if err != nil {
		return &abci.ExecTxResult{Code: 1, Log: err.Error()}
	}

	res := a.applyTx(staged, env, height, blockTime)
	if res.Code != 0 {
		return res
	}
	a.st = staged
	return res
}

func (a *PokerApp) applyTx(st *state.State, env *codec.TxEnvelope, height int64, blockTime time.Time) *abci.ExecTxResult {
	eng := engine.New(confidential.NewVault(st.Vault))

	switch env.Type {
	case codec.TypeAuthRegisterAccount:
		var msg codec.AuthRegisterAccountTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if err := registerAccount(st, env, msg, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		return okEvent("AccountRegistered", map[string]string{
			"account": msg.Account,
		})

	case codec.TypePokerCreate:
		var msg codec.PokerCreateTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if msg.Creator == "" {
			return &abci.ExecTxResult{Code: 1, Log: "missing creator"}
		}
		if err := maybeAuth(st, env, msg.Creator, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		nonce := st.NextGameNonce
		st.NextGameNonce++
		id := uuid.NewSHA1(gameIDNamespace, []byte(fmt.Sprintf("%d|%d|%s", height, nonce, msg.Creator))).String()
		g, err := eng.CreateGame(id, msg.Creator, msg.ActionTimeoutSecs)
		if err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		st.Games[id] = g
		return okEvent("GameCreated", map[string]string{
			"gameId": id,
			"owner":  msg.Creator,
		})

	case codec.TypePokerJoin:
		var msg codec.PokerJoinTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if msg.Player == "" {
			return &abci.ExecTxResult{Code: 1, Log: "missing player"}
		}
		if err := maybeAuth(st, env, msg.Player, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		g, ok := st.Games[msg.GameID]
		if !ok {
			return &abci.ExecTxResult{Code: 1, Log: "game not found"}
		}
		p, err := eng.Join(g, msg.Player, msg.Stake, height)
		if err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		return okEvent("PlayerJoined", map[string]string{
			"gameId": g.ID,
			"player": p.Identity,
			"seat":   fmt.Sprintf("%d", p.Seat),
		})

	case codec.TypePokerStart:
		var msg codec.PokerStartTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if err := maybeAuth(st, env, msg.Caller, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		g, ok := st.Games[msg.GameID]
		if !ok {
			return &abci.ExecTxResult{Code: 1, Log: "game not found"}
		}
		seed := deckSeed(height, g.ID)
		if err := eng.Start(g, msg.Caller, seed, blockTime); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		return okEvent("GameStarted", map[string]string{
			"gameId":     g.ID,
			"players":    fmt.Sprintf("%d", len(g.Players)),
			"activeSeat": fmt.Sprintf("%d", g.ActiveSeat),
		})

	case codec.TypePokerDealCommunity:
		var msg codec.PokerDealCommunityTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if err := maybeAuth(st, env, msg.Caller, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		g, ok := st.Games[msg.GameID]
		if !ok {
			return &abci.ExecTxResult{Code: 1, Log: "game not found"}
		}
		dealt, err := eng.DealCommunity(g, msg.Caller)
		if err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		res := okEvent("CommunityCardsDealt", map[string]string{
			"gameId": g.ID,
			"count":  fmt.Sprintf("%d", len(dealt)),
			"total":  fmt.Sprintf("%d", len(g.CommunityCards)),
		})
		for _, c := range dealt {
			res.Events = append(res.Events, abci.Event{
				Type: "CommunityCardRevealed",
				Attributes: []abci.EventAttribute{
					{Key: "gameId", Value: g.ID, Index: true},
					{Key: "card", Value: fmt.Sprintf("%d", c), Index: true},
				},
			})
		}
		return res

	case codec.TypePokerAct:
		var msg codec.PokerActTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if msg.Player == "" {
			return &abci.ExecTxResult{Code: 1, Log: "missing player"}
		}
		if err := maybeAuth(st, env, msg.Player, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		g, ok := st.Games[msg.GameID]
		if !ok {
			return &abci.ExecTxResult{Code: 1, Log: "game not found"}
		}
		action, err := engine.ParseAction(msg.Action)
		if err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		if err := eng.Act(g, msg.Player, action, msg.AmountCipher, msg.Proof, blockTime); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		return okEvent("PlayerAction", map[string]string{
			"gameId":     g.ID,
			"player":     msg.Player,
			"action":     action.String(),
			"activeSeat": fmt.Sprintf("%d", g.ActiveSeat),
		})

	case codec.TypePokerEnd:
		var msg codec.PokerEndTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		if err := maybeAuth(st, env, msg.Caller, a.chainID); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		g, ok := st.Games[msg.GameID]
		if !ok {
			return &abci.ExecTxResult{Code: 1, Log: "game not found"}
		}
		winnerSeat := -1
		if msg.WinnerSeat != nil {
			winnerSeat = *msg.WinnerSeat
		}
		winner, err := eng.EndGame(g, msg.Caller, winnerSeat)
		if err != nil {
			return &abci.ExecTxResult{Code: 1, Log: err.Error()}
		}
		return okEvent("GameEnded", map[string]string{
			"gameId":     g.ID,
			"winnerSeat": fmt.Sprintf("%d", winner),
			"winner":     g.Players[winner].Identity,
		})

	case codec.TypePokerTick:
		var msg codec.PokerTickTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return &abci.ExecTxResult{Code: 1, Log: "bad " + env.Type + " value"}
		}
		return a.applyTick(st, eng, msg.GameID, blockTime)

	default:
		return &abci.ExecTxResult{Code: 1, Log: "unknown tx type: " + env.Type}
	}
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{ev},
	}
}
