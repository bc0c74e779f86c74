// Package bootstrap connects the stores and the media host selected by the
// configuration and hands them to the server and the seeder.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"snapgram/internal/cache"
	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/docstore"
	"snapgram/internal/media"
	"snapgram/internal/middleware"
	"snapgram/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds every long-lived client. Exactly one of DB and Docs is set.
type Runtime struct {
	DB       *gorm.DB
	Docs     *docstore.Store
	Redis    *redis.Client
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Uploader media.Uploader
}

// InitRuntime connects the store chosen by cfg.DBDriver, Redis (optional, nil
// when unreachable) and the media host.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.DBDriver {
	case config.DriverMongo:
		docs, err := docstore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("document store connection failed: %w", err)
		}
		rt.Docs = docs
		rt.Users = docs.Users()
		rt.Posts = docs.Posts()
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Users = repository.NewUserRepository(db)
		rt.Posts = repository.NewPostRepository(db)
	}

	uploader, err := media.New(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("media host setup failed: %w", err)
	}
	rt.Uploader = uploader

	if cfg.RedisURL != "" {
		rt.Redis = cache.Connect(ctx, cfg.RedisURL)
	}

	middleware.Logger.Info("runtime initialized",
		slog.String("db_driver", cfg.DBDriver),
		slog.String("media_driver", cfg.MediaDriver),
		slog.Bool("redis", rt.Redis != nil),
	)
	return rt, nil
}

// Ping checks the primary store.
func (r *Runtime) Ping(ctx context.Context) error {
	return r.Users.Ping(ctx)
}

// Close releases every client. It is safe to call on a partially built runtime.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.DB != nil {
		if err := database.Close(r.DB); err != nil {
			errs = append(errs, fmt.Errorf("close sql store: %w", err))
		}
	}
	if r.Docs != nil {
		if err := r.Docs.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close document store: %w", err))
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
