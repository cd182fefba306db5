package model

import "time"

// GameID uniquely identifies a game session
type GameID string

// Color is a player's side in a game
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// GameResult is the terminal outcome of a game session.
// The zero value means the game is still in progress. Result
// transitions only forward: once set it is never reset.
type GameResult string

const (
	ResultInProgress               GameResult = ""
	ResultCheckmate                GameResult = "checkmate"
	ResultDrawInsufficientMaterial GameResult = "draw_insufficient_material"
	ResultDrawThreefoldRepetition  GameResult = "draw_threefold_repetition"
	ResultDrawFiftyMove            GameResult = "draw_fifty_move"
	ResultAborted                  GameResult = "aborted"
)

// Game is the authoritative record of one two-player game session.
// Board state is carried as the encodings the rule engine derives
// (FEN for the current position, PGN for the move history).
type Game struct {
	ID    GameID   `json:"id"`
	White PlayerID `json:"white"`
	Black PlayerID `json:"black"`

	FEN    string     `json:"fen"`
	PGN    string     `json:"pgn"`
	Result GameResult `json:"result"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the game has reached a final result.
// Terminal states are absorbing: no further moves are accepted.
func (g *Game) IsTerminal() bool {
	return g.Result != ResultInProgress
}

// ColorOf returns the side id plays, if id participates
func (g *Game) ColorOf(id PlayerID) (Color, bool) {
	switch id {
	case g.White:
		return ColorWhite, true
	case g.Black:
		return ColorBlack, true
	}
	return "", false
}

// Opponent returns the other participant's id, or empty if id does not
// participate
func (g *Game) Opponent(id PlayerID) PlayerID {
	switch id {
	case g.White:
		return g.Black
	case g.Black:
		return g.White
	}
	return ""
}
