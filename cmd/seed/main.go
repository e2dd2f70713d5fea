// Command seed populates the database with demo users, posts and relations.
package main

import (
	"context"
	"flag"
	"os"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxFollows := flag.Int("follows", 8, "Maximum users each user follows")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	planPath := flag.String("plan", "", "YAML fixture plan to apply instead of generated data")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible runs (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	middleware.SetLogLevel(cfg.LogLevel)

	if cfg.IsProduction() {
		middleware.Logger.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxFollows:  *maxFollows,
		ShouldClean: *shouldClean,
		Seed:        *randSeed,
		FastHash:    true,
	})

	if *planPath != "" {
		plan, err := seed.LoadPlan(*planPath)
		if err != nil {
			middleware.Logger.Error("failed to load plan", "error", err)
			os.Exit(1)
		}
		if _, err := s.ApplyPlan(ctx, plan); err != nil {
			middleware.Logger.Error("plan seeding failed", "error", err)
			os.Exit(1)
		}
	} else if _, err := s.Run(ctx); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	if *planPath == "" {
		middleware.Logger.Info("all seeded users share one password", "password", seed.DefaultPassword)
	}
}
