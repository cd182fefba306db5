package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/quickchess/internal/dependencies/clock"
	"github.com/mcoot/quickchess/internal/dependencies/random"
	enginechess "github.com/mcoot/quickchess/internal/engine/chess"
	"github.com/mcoot/quickchess/internal/services/matchmaker"
	"github.com/mcoot/quickchess/internal/services/registry"
	"github.com/mcoot/quickchess/internal/services/session"
	"github.com/mcoot/quickchess/internal/storage"
	"github.com/mcoot/quickchess/internal/storage/memory"
	redisstorage "github.com/mcoot/quickchess/internal/storage/redis"
	"github.com/mcoot/quickchess/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry   *registry.Service
	Matchmaker *matchmaker.Service
	Sessions   *session.Controller
	Hub        *ws.Hub
	Handler    *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RegistryConfig holds player registry settings (optional)
	RegistryConfig registry.Config
	// MatchmakerConfig holds matchmaker settings (optional)
	MatchmakerConfig matchmaker.Config
}

// New creates a new application with all dependencies wired. The
// context covers startup work such as loading the persisted player
// snapshot.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(ctx, store, clk, rnd, cfg.RegistryConfig, cfg.MatchmakerConfig, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	ctx context.Context,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	regCfg registry.Config,
	mmCfg matchmaker.Config,
	logger *slog.Logger,
) (*App, error) {
	reg, err := registry.New(ctx, store, clk, regCfg, logger)
	if err != nil {
		return nil, err
	}

	mm := matchmaker.New(reg, mmCfg, logger)
	sessions := session.NewController(enginechess.New(), store, clk, rnd, logger)
	hub := ws.NewHub(logger)
	handler := ws.NewHandler(ws.HandlerConfig{
		Logger:     logger,
		Hub:        hub,
		Registry:   reg,
		Matchmaker: mm,
		Sessions:   sessions,
	})

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Registry:   reg,
		Matchmaker: mm,
		Sessions:   sessions,
		Hub:        hub,
		Handler:    handler,
	}, nil
}
