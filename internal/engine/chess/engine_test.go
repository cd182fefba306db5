package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quickchess/internal/model"
)

func TestNewGameStartsAtStandardPosition(t *testing.T) {
	g := New().NewGame()

	state := g.State()
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", state.FEN)
	assert.Equal(t, model.ColorWhite, state.SideToMove)
	assert.False(t, state.Checkmate)
}

func TestMoveUpdatesEncodings(t *testing.T) {
	g := New().NewGame()

	state, err := g.Move("e2e4")
	require.NoError(t, err)

	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", state.FEN)
	assert.Equal(t, model.ColorBlack, state.SideToMove)
	assert.Contains(t, state.PGN, "e4")
}

func TestIllegalMoveLeavesGameUnchanged(t *testing.T) {
	g := New().NewGame()
	before := g.State()

	_, err := g.Move("e2e5")
	assert.ErrorIs(t, err, model.ErrIllegalMove)

	// Moving out of turn is illegal too
	_, err = g.Move("e7e5")
	assert.ErrorIs(t, err, model.ErrIllegalMove)

	assert.Equal(t, before, g.State())
}

func TestGarbageInputIsIllegal(t *testing.T) {
	g := New().NewGame()

	_, err := g.Move("not-a-move")
	assert.ErrorIs(t, err, model.ErrIllegalMove)
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	g := New().NewGame()

	for _, uci := range []string{"f2f3", "e7e5", "g2g4"} {
		state, err := g.Move(uci)
		require.NoError(t, err)
		require.False(t, state.Checkmate)
	}

	state, err := g.Move("d8h4")
	require.NoError(t, err)
	assert.True(t, state.Checkmate)
}

func TestScholarsMateIsCheckmate(t *testing.T) {
	g := New().NewGame()

	moves := []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6"}
	for _, uci := range moves {
		_, err := g.Move(uci)
		require.NoError(t, err)
	}

	state, err := g.Move("h5f7")
	require.NoError(t, err)
	assert.True(t, state.Checkmate)
	assert.False(t, state.InsufficientMaterial)
}

func TestThreefoldRepetitionDeclared(t *testing.T) {
	g := New().NewGame()

	// Shuffle the knights back and forth until the start position has
	// occurred three times with white to move.
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 2; i++ {
		for _, uci := range shuffle {
			state, err := g.Move(uci)
			require.NoError(t, err)
			if state.ThreefoldRepetition {
				return
			}
		}
	}

	assert.True(t, g.State().ThreefoldRepetition)
}
