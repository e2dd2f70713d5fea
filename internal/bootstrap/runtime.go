// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPlan, when set, is a YAML fixture file that replaces all data after
	// connecting. It is ignored in production.
	SeedPlan string
}

// InitRuntime connects to the database and Redis and optionally applies a
// seed plan. The Redis client is nil when Redis is not configured or not
// reachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := applySeedPlan(ctx, cfg, db, opts.SeedPlan); err != nil {
		return nil, nil, err
	}

	return db, rdb, nil
}

func applySeedPlan(ctx context.Context, cfg *config.Config, db *gorm.DB, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if cfg.IsProduction() {
		middleware.Logger.WarnContext(ctx, "seed plan ignored in production", "path", path)
		return nil
	}

	plan, err := seed.LoadPlan(path)
	if err != nil {
		return err
	}
	if _, err := seed.NewSeeder(db, seed.Options{ShouldClean: true}).ApplyPlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to apply seed plan: %w", err)
	}
	return nil
}
