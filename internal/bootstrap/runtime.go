// Package bootstrap prepares the shared runtime dependencies used by the
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"

	"ajayblog/internal/cache"
	"ajayblog/internal/config"
	"ajayblog/internal/database"
	"ajayblog/internal/repository"
	"ajayblog/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipDefaultAdmin leaves the admins table untouched.
	SkipDefaultAdmin bool
}

// InitRuntime connects to the database and Redis and ensures the default
// admin exists. The Redis client is nil when REDIS_URL is unset or the
// server cannot be reached.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.Connect(ctx, cfg.RedisURL)

	if !opts.SkipDefaultAdmin {
		if err := EnsureDefaultAdmin(ctx, cfg, db); err != nil {
			if rdb != nil {
				_ = rdb.Close()
			}
			_ = database.Close(db)
			return nil, nil, err
		}
	}

	return db, rdb, nil
}

// EnsureDefaultAdmin seeds the configured bootstrap admin if it is missing.
func EnsureDefaultAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.DefaultAdminUsername == "" {
		return nil
	}

	svc := service.NewAuthService(repository.NewAdminRepository(db), nil)
	if _, err := svc.EnsureDefaultAdmin(ctx, cfg.DefaultAdminUsername, cfg.DefaultAdminPassword, cfg.DefaultAdminEmail); err != nil {
		return fmt.Errorf("failed to bootstrap default admin: %w", err)
	}
	return nil
}
