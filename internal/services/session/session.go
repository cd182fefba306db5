package session

import (
	"sync"

	"github.com/mcoot/quickchess/internal/dependencies/clock"
	"github.com/mcoot/quickchess/internal/engine"
	"github.com/mcoot/quickchess/internal/model"
)

// MoveOutcome is the result of one move submission
type MoveOutcome struct {
	// Accepted is false for illegal and out-of-turn moves, and for
	// any submission after the game ended
	Accepted bool

	// FEN and PGN are the authoritative encodings after the
	// submission: updated on acceptance, unchanged on rejection
	FEN string
	PGN string

	// Result is the session's (possibly terminal) outcome
	Result model.GameResult
}

// Session wraps one rule-engine game for a pairing. Accepted moves are
// the only mutator of board and history state; everything else is
// read-only or a rejection with zero observable effect.
//
// All access is serialized by the session mutex, so concurrent
// double-submission for the same game cannot interleave.
type Session struct {
	mu    sync.Mutex
	game  *model.Game
	rules engine.Game
	clock clock.Clock
}

// ID returns the session's game id
func (s *Session) ID() model.GameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ID
}

// Game returns a copy of the current game record
func (s *Session) Game() model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.game
}

// submitMove applies one move for playerID. Terminal states are
// absorbing: once the game has a result every submission rejects.
func (s *Session) submitMove(playerID model.PlayerID, uci string) *MoveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.IsTerminal() {
		return s.rejectionLocked()
	}

	color, ok := s.game.ColorOf(playerID)
	if !ok {
		return s.rejectionLocked()
	}
	if s.rules.State().SideToMove != color {
		// Moving out of turn is rejected exactly like an illegal move
		return s.rejectionLocked()
	}

	state, err := s.rules.Move(uci)
	if err != nil {
		return s.rejectionLocked()
	}

	s.game.FEN = state.FEN
	s.game.PGN = state.PGN
	s.game.UpdatedAt = s.clock.Now()

	// Terminal predicates in fixed priority order; the first true one
	// ends the game
	switch {
	case state.Checkmate:
		s.game.Result = model.ResultCheckmate
	case state.InsufficientMaterial:
		s.game.Result = model.ResultDrawInsufficientMaterial
	case state.ThreefoldRepetition:
		s.game.Result = model.ResultDrawThreefoldRepetition
	case state.FiftyMoveRule:
		s.game.Result = model.ResultDrawFiftyMove
	}

	return &MoveOutcome{
		Accepted: true,
		FEN:      s.game.FEN,
		PGN:      s.game.PGN,
		Result:   s.game.Result,
	}
}

// abort moves the session to the aborted result. It reports whether
// the transition happened; an already-terminal session is untouched.
func (s *Session) abort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.IsTerminal() {
		return false
	}
	s.game.Result = model.ResultAborted
	s.game.UpdatedAt = s.clock.Now()
	return true
}

func (s *Session) rejectionLocked() *MoveOutcome {
	return &MoveOutcome{
		Accepted: false,
		FEN:      s.game.FEN,
		PGN:      s.game.PGN,
		Result:   s.game.Result,
	}
}
