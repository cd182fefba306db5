package storage

import (
	"context"

	"github.com/mcoot/quickchess/internal/model"
)

// Storage defines the interface for data persistence.
//
// The player registry is persisted as a whole-registry snapshot on a
// fixed interval; SavePlayers must replace the previous snapshot
// atomically so a crashed save never leaves a torn registry behind.
// Finished games are archived individually, mirroring the snapshot
// policy.
type Storage interface {
	// Player snapshot operations
	SavePlayers(ctx context.Context, players []*model.Player) error
	LoadPlayers(ctx context.Context) ([]*model.Player, error)

	// Game archive operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)

	// Close releases any underlying resources
	Close() error
}
