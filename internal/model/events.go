package model

import (
	"encoding/json"
	"fmt"
)

// EventType identifies a protocol event exchanged with a client over
// its persistent connection
type EventType string

const (
	// Server -> client
	EventRegister        EventType = "register"
	EventInvalidIdentity EventType = "invalid_identity"
	EventUsers           EventType = "users"
	EventMatchResult     EventType = "match_result"
	EventMove            EventType = "move"
	EventMoveRejected    EventType = "move_rejected"
	EventGameAborted     EventType = "game_aborted"

	// Client -> server
	EventIdentity          EventType = "identity"
	EventRequestUsers      EventType = "request_users"
	EventRequestQuickMatch EventType = "request_quick_match"
	EventCancelQuickMatch  EventType = "cancel_quick_match"
	EventSubmitMove        EventType = "submit_move"
	EventRequestDisconnect EventType = "request_disconnect"
)

// Event is the wire envelope for all protocol events
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event envelope with the given payload
func NewEvent(t EventType, payload any) (Event, error) {
	ev := Event{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
		}
		ev.Data = data
	}
	return ev, nil
}

// MustEvent builds an event envelope and panics on marshal failure.
// Only for payload types the server itself constructs.
func MustEvent(t EventType, payload any) Event {
	ev, err := NewEvent(t, payload)
	if err != nil {
		panic(err)
	}
	return ev
}

// IdentityPayload carries the client's declared identity
type IdentityPayload struct {
	ID PlayerID `json:"id"`
}

// UsersPayload lists the currently online players
type UsersPayload struct {
	Players []PlayerID `json:"players"`
}

// QuickMatchPayload carries the requester's profile info, stored
// last-write-wins before matching starts
type QuickMatchPayload struct {
	Info map[string]any `json:"info,omitempty"`
}

// MatchReasonTimeout is the only failure reason a match_result carries
const MatchReasonTimeout = "timeout"

// MatchResultPayload reports how a quick-match request resolved.
// On success Opponent and Color are set; on failure Reason is set.
type MatchResultPayload struct {
	Opponent PlayerID `json:"opponent,omitempty"`
	Color    Color    `json:"color,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// SubmitMovePayload carries a move in the engine's notation (UCI)
type SubmitMovePayload struct {
	Move string `json:"move"`
}

// MovePayload pushes an accepted move to the opponent, including the
// derived encodings and the (possibly terminal) outcome
type MovePayload struct {
	GameID GameID     `json:"game_id"`
	Move   string     `json:"move"`
	FEN    string     `json:"fen"`
	PGN    string     `json:"pgn"`
	Result GameResult `json:"result,omitempty"`
}

// MoveRejectedPayload tells the mover to resynchronize to the
// authoritative state after an illegal submission
type MoveRejectedPayload struct {
	FEN string `json:"fen"`
	PGN string `json:"pgn"`
}

// GameAbortedPayload notifies the opponent that the game was aborted
type GameAbortedPayload struct {
	GameID GameID `json:"game_id"`
}
