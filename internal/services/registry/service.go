package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/quickchess/internal/dependencies/clock"
	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/storage"
)

// Config holds registry behavior settings
type Config struct {
	// SnapshotInterval is how often the registry is persisted
	SnapshotInterval time.Duration
}

// DefaultConfig returns sensible defaults for the registry
func DefaultConfig() Config {
	return Config{
		SnapshotInterval: 10 * time.Second,
	}
}

// Service tracks every player the system has ever seen: identity,
// online flag, matching intent and profile info. Rows are created on
// first sight and never deleted; going offline is a soft state change
// so a reconnecting player keeps its profile.
//
// All mutating operations are serialized by one mutex. The service is
// safe for concurrent use by many connection handlers.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	mu      sync.RWMutex
	players map[model.PlayerID]*model.Player
}

// New creates a registry, loading any existing snapshot. Every loaded
// record has its online and matching flags forced off: a restarted
// process cannot know true live state, and resuming a persisted
// "matching" flag would strand the player.
func New(ctx context.Context, store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultConfig().SnapshotInterval
	}

	s := &Service{
		storage: store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "registry")),
		players: make(map[model.PlayerID]*model.Player),
	}

	loaded, err := store.LoadPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player snapshot: %w", err)
	}
	for _, p := range loaded {
		p.Online = false
		p.Matching = false
		s.players[p.ID] = p
	}

	if len(loaded) > 0 {
		s.logger.Info("player snapshot loaded", slog.Int("players", len(loaded)))
	}

	return s, nil
}

// Add marks id online, creating the row on first sight. Idempotent
// under reconnect.
func (s *Service) Add(id model.PlayerID) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		p.Online = true
		p.LastSeenAt = now
		return
	}

	s.players[id] = &model.Player{
		ID:          id,
		Info:        map[string]any{},
		Online:      true,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
}

// Remove marks id offline and clears its matching intent. The row is
// kept. Unknown ids are a no-op.
func (s *Service) Remove(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return
	}
	p.Online = false
	p.Matching = false
	p.LastSeenAt = s.clock.Now()
}

// SetInfo replaces id's profile payload, last write wins. Unknown ids
// are a no-op.
func (s *Service) SetInfo(id model.PlayerID, info map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		p.Info = info
	}
}

// StartMatching sets id's matching intent. It reports whether the flag
// was set; unknown or offline players are left untouched.
func (s *Service) StartMatching(id model.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok || !p.Online {
		return false
	}
	p.Matching = true
	return true
}

// StopMatching clears id's matching intent. Unknown ids are a no-op.
func (s *Service) StopMatching(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		p.Matching = false
	}
}

// OnlinePlayers returns the ids currently online, in unspecified order
func (s *Service) OnlinePlayers() []model.PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]model.PlayerID, 0, len(s.players))
	for _, p := range s.players {
		if p.Online {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Lookup returns a copy of id's record
func (s *Service) Lookup(id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

// Persist writes a consistent point-in-time snapshot of the registry.
// The copy is taken under the read lock; the storage write happens
// outside it, so persistence never blocks mutation for longer than the
// copy step.
func (s *Service) Persist(ctx context.Context) error {
	snapshot := s.snapshot()
	if err := s.storage.SavePlayers(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save player snapshot: %w", err)
	}
	return nil
}

// Run persists the registry on a fixed interval until ctx is done,
// then takes one final snapshot. A failed save is logged and retried
// on the next tick; it is never fatal.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Persist(ctx); err != nil {
				s.logger.Error("snapshot failed, will retry next tick",
					slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Persist(shutdownCtx); err != nil {
				s.logger.Error("final snapshot failed", slog.String("error", err.Error()))
			}
			cancel()
			return
		}
	}
}

func (s *Service) snapshot() []*model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	return out
}
