// Command migrate runs schema operations for the backend.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Connect migrates by itself outside production.
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return err
		}
	case "status":
		missing := 0
		for _, model := range database.PersistentModels() {
			present := db.Migrator().HasTable(model)
			if !present {
				missing++
			}
			middleware.Logger.Info("table status", "model", fmt.Sprintf("%T", model), "present", present)
		}
		if missing > 0 {
			return fmt.Errorf("%d tables missing; run `migrate auto`", missing)
		}
	default:
		return usage()
	}
	return nil
}
