package model

import "time"

// PlayerID uniquely identifies a player across the system.
// It is a client-chosen token of exactly 20 ASCII digits; see IsValidPlayerID.
type PlayerID string

// Player represents a known participant. A row is created the first
// time an identity registers and is never deleted afterwards -
// disconnecting only flips Online off, so a returning player keeps its
// profile. The live reply channel for a connected player is tracked
// separately in the ws hub and is never part of this record.
type Player struct {
	ID PlayerID `json:"id"`

	// Info is an opaque client-supplied profile payload (display name
	// etc.), last write wins. The coordinator never inspects it.
	Info map[string]any `json:"info"`

	// Online is true only while a live connection for this id exists.
	Online bool `json:"online"`

	// Matching is true only between a quick-match request and its
	// resolution (paired, cancelled or timed out).
	Matching bool `json:"matching"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Clone returns a deep copy safe to hand out across goroutines.
func (p *Player) Clone() *Player {
	cp := *p
	if p.Info != nil {
		cp.Info = make(map[string]any, len(p.Info))
		for k, v := range p.Info {
			cp.Info[k] = v
		}
	}
	return &cp
}
