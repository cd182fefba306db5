package matchmaker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/services/registry"
)

// Config holds matchmaker behavior settings
type Config struct {
	// RequestTimeout bounds how long a quick-match request may wait
	// for a peer before resolving as an explicit timeout
	RequestTimeout time.Duration
}

// DefaultConfig returns sensible defaults for the matchmaker
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 120 * time.Second,
	}
}

// Resolution is the terminal outcome of one quick-match request.
// Exactly one of pairing and timeout happens per request; a cancelled
// request resolves as nothing at all.
type Resolution struct {
	Opponent model.PlayerID
	Color    model.Color
	TimedOut bool
}

// Service pairs mutually-consenting players. Requests wait on a
// buffered resolution channel instead of a poll loop: pairing is
// attempted whenever a new request arrives, under the queue lock, so a
// just-matched player can never be matched twice.
//
// Waiters pair in enqueue order and the longer-waiting player takes
// white.
type Service struct {
	registry *registry.Service
	cfg      Config
	logger   *slog.Logger

	mu    sync.Mutex
	queue []*waiter
}

// waiter is one pending quick-match request. Membership in the queue
// is the commitment point: a waiter removed from the queue has been
// paired, timed out or cancelled, and will never resolve again.
type waiter struct {
	id      model.PlayerID
	resolve chan Resolution
	timer   *time.Timer
}

// New creates a matchmaker over the given player registry
func New(reg *registry.Service, cfg Config, logger *slog.Logger) *Service {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Service{
		registry: reg,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "matchmaker")),
	}
}

// RequestMatch marks id as matching and returns a channel that
// resolves exactly once: with an opponent and color when paired, or
// with TimedOut set when the window elapses first. A cancelled request
// never resolves. Offline or unknown players are rejected up front.
func (s *Service) RequestMatch(id model.PlayerID) (<-chan Resolution, error) {
	if !s.registry.StartMatching(id) {
		return nil, model.ErrNotOnline
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) != nil {
		return nil, model.ErrAlreadyMatching
	}

	w := &waiter{
		id:      id,
		resolve: make(chan Resolution, 1),
	}
	w.timer = time.AfterFunc(s.cfg.RequestTimeout, func() {
		s.timeout(w)
	})
	s.queue = append(s.queue, w)

	s.logger.Debug("match requested", slog.String("player", string(id)))
	s.pairLocked()

	return w.resolve, nil
}

// CancelMatch withdraws id's pending request, if any. The request's
// channel is closed without a resolution, which releases anyone
// waiting on it. Safe to call for players with no pending request.
func (s *Service) CancelMatch(id model.PlayerID) {
	s.registry.StopMatching(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.findLocked(id); w != nil {
		s.removeLocked(w)
		w.timer.Stop()
		close(w.resolve)
		s.logger.Debug("match cancelled", slog.String("player", string(id)))
	}
}

// timeout resolves w as a timeout failure. It races pairing and
// cancellation for the queue lock; whoever removes w from the queue
// first wins.
func (s *Service) timeout(w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(w.id) != w {
		// Already paired or cancelled
		return
	}
	s.removeLocked(w)
	s.registry.StopMatching(w.id)

	w.resolve <- Resolution{TimedOut: true}
	s.logger.Info("match request timed out", slog.String("player", string(w.id)))
}

// pairLocked pairs as many queued waiters as possible, oldest first.
// Waiters whose matching intent was cleared outside the matchmaker
// (e.g. by a racing disconnect) are skipped; their own cancel or
// timeout path cleans them up.
func (s *Service) pairLocked() {
	for {
		white, black := s.nextPairLocked()
		if white == nil {
			return
		}

		s.removeLocked(white)
		s.removeLocked(black)
		white.timer.Stop()
		black.timer.Stop()

		// Clear both flags before either side observes the result
		s.registry.StopMatching(white.id)
		s.registry.StopMatching(black.id)

		white.resolve <- Resolution{Opponent: black.id, Color: model.ColorWhite}
		black.resolve <- Resolution{Opponent: white.id, Color: model.ColorBlack}

		s.logger.Info("players paired",
			slog.String("white", string(white.id)),
			slog.String("black", string(black.id)))
	}
}

// nextPairLocked returns the two longest-waiting viable waiters
func (s *Service) nextPairLocked() (*waiter, *waiter) {
	var first *waiter
	for _, w := range s.queue {
		if !s.viable(w) {
			continue
		}
		if first == nil {
			first = w
			continue
		}
		return first, w
	}
	return nil, nil
}

// viable reports whether w's player is still online and matching
func (s *Service) viable(w *waiter) bool {
	p, err := s.registry.Lookup(w.id)
	return err == nil && p.Online && p.Matching
}

func (s *Service) findLocked(id model.PlayerID) *waiter {
	for _, w := range s.queue {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (s *Service) removeLocked(target *waiter) {
	for i, w := range s.queue {
		if w == target {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}
