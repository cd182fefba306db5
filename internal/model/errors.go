package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPlayerID = errors.New("invalid player id")

	// Matchmaking errors
	ErrAlreadyMatching = errors.New("player already has a pending match request")
	ErrNotOnline       = errors.New("player is not online")

	// Game errors
	ErrGameNotFound = errors.New("game not found")
	ErrIllegalMove  = errors.New("illegal move")
)
