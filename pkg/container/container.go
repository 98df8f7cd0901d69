package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hekayaty-backend/internal/config"
	"hekayaty-backend/internal/handlers"
	infraCache "hekayaty-backend/internal/infrastructure/cache"
	"hekayaty-backend/internal/infrastructure/database"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/internal/storage/memory"
	"hekayaty-backend/internal/storage/postgres"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/jwt"
)

// Container holds the application's dependency graph. Built once at
// startup and threaded into handlers explicitly; there is no package-level
// shared instance, so tests can build isolated containers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	// Storage is the selected catalog backend. Both implementations
	// satisfy the same contract; STORAGE_BACKEND decides which one
	// backs this handle.
	Storage storage.Storage

	AuthHandler     *handlers.AuthHandler
	StoryHandler    *handlers.StoryHandler
	GenreHandler    *handlers.GenreHandler
	RatingHandler   *handlers.RatingHandler
	BookmarkHandler *handlers.BookmarkHandler
	AdminHandler    *handlers.AdminHandler
}

// NewContainer initializes the full dependency graph in order: config,
// infrastructure, storage, handlers. Any failure aborts startup.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// Redis is optional: on failure the app runs with a no-op cache.
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		c.Cache = cache.Noop{}
	} else {
		log.Info().Str("host", cfg.Redis.Host).Msg("Redis connected")
		c.Cache = redisCache
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	if err := c.initStorage(); err != nil {
		return nil, err
	}

	c.AuthHandler = handlers.NewAuthHandler(c.Storage, c.JWTManager, c.Cache)
	c.StoryHandler = handlers.NewStoryHandler(c.Storage, c.Cache)
	c.GenreHandler = handlers.NewGenreHandler(c.Storage)
	c.RatingHandler = handlers.NewRatingHandler(c.Storage, c.Cache)
	c.BookmarkHandler = handlers.NewBookmarkHandler(c.Storage)
	c.AdminHandler = handlers.NewAdminHandler(c.Storage, c.Cache)

	log.Info().Str("backend", cfg.Storage.Backend).Msg("Container initialized")
	return c, nil
}

func (c *Container) initStorage() error {
	switch c.Config.Storage.Backend {
	case "", "memory":
		store, err := memory.New()
		if err != nil {
			return fmt.Errorf("failed to init memory storage: %w", err)
		}
		c.Storage = store

	case "postgres":
		dbCfg := &database.Config{
			Host:              c.Config.Database.Host,
			Port:              c.Config.Database.Port,
			Username:          c.Config.Database.User,
			Password:          c.Config.Database.Password,
			DBName:            c.Config.Database.Database,
			SSLMode:           c.Config.Database.SSLMode,
			MaxConns:          int32(c.Config.Database.MaxConns),
			MinConns:          int32(c.Config.Database.MinConns),
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
			MaxRetries:        4,
			RetryDelay:        time.Second,
			ConnectTimeout:    10 * time.Second,
		}

		db := database.NewPostgresDB(dbCfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		repo := postgres.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
		c.Storage = repo

	default:
		return fmt.Errorf("unknown storage backend %q", c.Config.Storage.Backend)
	}
	return nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
		log.Info().Msg("Database connections closed")
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		} else {
			log.Info().Msg("Redis connections closed")
		}
	}
}
