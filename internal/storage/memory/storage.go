package memory

import (
	"context"
	"sync"

	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players []*model.Player
	games   map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player snapshot operations

func (s *Storage) SavePlayers(ctx context.Context, players []*model.Player) error {
	snapshot := make([]*model.Player, 0, len(players))
	for _, p := range players {
		snapshot = append(snapshot, p.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = snapshot
	return nil
}

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	return out, nil
}

// Game archive operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *game
	s.games[game.ID] = &cp
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	cp := *game
	return &cp, nil
}

// Close is a no-op for the in-memory backend
func (s *Storage) Close() error {
	return nil
}
