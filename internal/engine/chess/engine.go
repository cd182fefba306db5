package chess

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/mcoot/quickchess/internal/engine"
	"github.com/mcoot/quickchess/internal/model"
)

// Engine implements the rule-engine capability on corentings/chess
type Engine struct{}

// New creates a chess rule engine
func New() *Engine {
	return &Engine{}
}

// Ensure Engine implements the interface
var _ engine.Engine = (*Engine)(nil)

// NewGame starts a game from the standard position
func (e *Engine) NewGame() engine.Game {
	return &game{inner: nchess.NewGame()}
}

type game struct {
	inner *nchess.Game
}

func (g *game) Move(uci string) (engine.State, error) {
	if err := g.inner.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		return g.State(), model.ErrIllegalMove
	}

	// The library treats threefold repetition and the fifty-move rule
	// as claimable draws. The original behavior declares them as soon
	// as they arise, so claim eagerly, repetition first.
	if g.inner.Outcome() == nchess.NoOutcome {
		draws := g.inner.EligibleDraws()
		if containsMethod(draws, nchess.ThreefoldRepetition) {
			_ = g.inner.Draw(nchess.ThreefoldRepetition)
		} else if containsMethod(draws, nchess.FiftyMoveRule) {
			_ = g.inner.Draw(nchess.FiftyMoveRule)
		}
	}

	return g.State(), nil
}

func (g *game) State() engine.State {
	method := g.inner.Method()
	return engine.State{
		FEN:                  g.inner.FEN(),
		PGN:                  strings.TrimSpace(g.inner.String()),
		SideToMove:           sideOf(g.inner.Position().Turn()),
		Checkmate:            method == nchess.Checkmate,
		InsufficientMaterial: method == nchess.InsufficientMaterial,
		ThreefoldRepetition:  method == nchess.ThreefoldRepetition,
		FiftyMoveRule:        method == nchess.FiftyMoveRule,
	}
}

func sideOf(c nchess.Color) model.Color {
	if c == nchess.White {
		return model.ColorWhite
	}
	return model.ColorBlack
}

func containsMethod(methods []nchess.Method, m nchess.Method) bool {
	for _, candidate := range methods {
		if candidate == m {
			return true
		}
	}
	return false
}
