package engine

import "github.com/mcoot/quickchess/internal/model"

// State is a snapshot of a rule-engine game: the derived encodings plus
// the terminal flags the session coordinator consumes. The flags are
// independent detections; when several hold at once the consumer ranks
// them (checkmate first, then insufficient material, repetition, and
// the fifty-move rule).
type State struct {
	FEN        string
	PGN        string
	SideToMove model.Color

	Checkmate            bool
	InsufficientMaterial bool
	ThreefoldRepetition  bool
	FiftyMoveRule        bool
}

// Game is one rule-engine game instance, started from the standard
// position. Implementations own all chess legality and terminal
// detection; the session coordinator calls them as an opaque capability
// and holds no chess logic itself.
//
// Implementations are not safe for concurrent use; the owning session
// serializes access.
type Game interface {
	// Move applies a move in UCI notation (e.g. "e2e4", "e7e8q").
	// An illegal or out-of-turn move returns model.ErrIllegalMove and
	// leaves the game unchanged. On success the returned state
	// reflects the position after the move.
	Move(uci string) (State, error)

	// State returns the current snapshot without mutating anything
	State() State
}

// Engine creates rule-engine games
type Engine interface {
	NewGame() Game
}
