package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/quickchess/internal/dependencies/clock"
	"github.com/mcoot/quickchess/internal/dependencies/random"
	"github.com/mcoot/quickchess/internal/engine"
	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 20
	// GameIDAlphabet is the characters used in game ids
	GameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Controller owns all live game sessions. It enforces the core
// invariant by construction: at most one non-terminal session exists
// per player, and creation is idempotent against duplicate requests
// racing after a match resolution.
//
// Sessions that reach a terminal result are written to the storage
// archive and dropped from the in-memory maps, so memory is bounded by
// the number of games actually in progress.
type Controller struct {
	engine  engine.Engine
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[model.GameID]*Session
	byPlayer map[model.PlayerID]model.GameID
}

// NewController creates a session controller over the given rule engine
func NewController(
	eng engine.Engine,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		engine:   eng,
		storage:  store,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "session")),
		sessions: make(map[model.GameID]*Session),
		byPlayer: make(map[model.PlayerID]model.GameID),
	}
}

// SessionFor returns the player's current non-terminal session, or nil
func (c *Controller) SessionFor(playerID model.PlayerID) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gid, ok := c.byPlayer[playerID]
	if !ok {
		return nil
	}
	return c.sessions[gid]
}

// GetOrCreate returns the requesting player's active session if one
// exists, otherwise creates a new one with sides assigned per color.
// Sessions are created lazily on the first move-capable interaction,
// not at match time, so both sides of a pairing may race into this
// call; the first one creates, the second one gets the same session.
func (c *Controller) GetOrCreate(ctx context.Context, playerID, opponentID model.PlayerID, color model.Color) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gid, ok := c.byPlayer[playerID]; ok {
		return c.sessions[gid], nil
	}
	if _, ok := c.byPlayer[opponentID]; ok {
		// The opponent is mid-game with someone else; pairing them
		// again would break the one-active-session invariant
		return nil, model.ErrGameNotFound
	}

	white, black := playerID, opponentID
	if color == model.ColorBlack {
		white, black = opponentID, playerID
	}

	rules := c.engine.NewGame()
	state := rules.State()
	now := c.clock.Now()

	game := &model.Game{
		ID:        model.GameID(c.random.String(GameIDLength, GameIDAlphabet)),
		White:     white,
		Black:     black,
		FEN:       state.FEN,
		PGN:       state.PGN,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess := &Session{
		game:  game,
		rules: rules,
		clock: c.clock,
	}

	c.sessions[game.ID] = sess
	c.byPlayer[white] = game.ID
	c.byPlayer[black] = game.ID

	c.logger.Info("game session created",
		slog.String("game", string(game.ID)),
		slog.String("white", string(white)),
		slog.String("black", string(black)))

	return sess, nil
}

// SubmitMove applies playerID's move to its active session. Illegal or
// out-of-turn moves reject with the authoritative encodings and no
// state change. When the move ends the game, the session is finalized
// before returning.
func (c *Controller) SubmitMove(ctx context.Context, playerID model.PlayerID, uci string) (*MoveOutcome, error) {
	sess := c.SessionFor(playerID)
	if sess == nil {
		return nil, model.ErrGameNotFound
	}

	outcome := sess.submitMove(playerID, uci)

	if outcome.Accepted && outcome.Result != model.ResultInProgress {
		c.finalize(ctx, sess)
	}

	return outcome, nil
}

// Disconnect aborts playerID's active session, if any, and returns the
// finalized game record so the caller can notify the opponent. Players
// with no active session are a no-op returning nil.
func (c *Controller) Disconnect(ctx context.Context, playerID model.PlayerID) *model.Game {
	sess := c.SessionFor(playerID)
	if sess == nil {
		return nil
	}

	aborted := sess.abort()
	if !aborted {
		// Lost a race with a terminal move; nothing to abort
		return nil
	}

	c.finalize(ctx, sess)

	game := sess.Game()
	c.logger.Info("game session aborted",
		slog.String("game", string(game.ID)),
		slog.String("player", string(playerID)))
	return &game
}

// ArchivedGame fetches a finished game from the storage archive
func (c *Controller) ArchivedGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// finalize evicts a terminal session from the live maps and writes it
// to the archive. Idempotent: concurrent finalizers for the same
// session are harmless.
func (c *Controller) finalize(ctx context.Context, sess *Session) {
	game := sess.Game()

	c.mu.Lock()
	if gid, ok := c.byPlayer[game.White]; ok && gid == game.ID {
		delete(c.byPlayer, game.White)
	}
	if gid, ok := c.byPlayer[game.Black]; ok && gid == game.ID {
		delete(c.byPlayer, game.Black)
	}
	delete(c.sessions, game.ID)
	c.mu.Unlock()

	// Archive failures are logged, never propagated: the session is
	// already consistently finalized in memory
	if err := c.storage.SaveGame(ctx, &game); err != nil {
		c.logger.Error("failed to archive finished game",
			slog.String("game", string(game.ID)),
			slog.String("error", err.Error()))
	}
}
