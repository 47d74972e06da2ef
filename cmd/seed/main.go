// Package main imports the board game dataset without starting the HTTP server.
//
// Usage:
//
//	go run ./cmd/seed -dataset data/bgg_dataset.csv
//	go run ./cmd/seed -dataset data/bgg_dataset.xlsx -link-policy new-only
//
// It reads the same configuration as the server (flags, environment, .env).
// A running server keeps serving cached list pages until they expire.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mybglist/mybglist-server/internal/config"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/logger"
	"github.com/mybglist/mybglist-server/internal/service"
	"github.com/mybglist/mybglist-server/internal/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	policy, err := ingest.ParseLinkPolicy(cfg.Seed.LinkPolicy)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	st, err := sqlite.Open(cfg.Database.Path, log.Component("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.NewSeedService(st, nil, cfg.Seed.DatasetPath, policy, log.Component("seed"))
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("board games: %d\ndomains: %d\nmechanics: %d\nskipped rows: %d\nrun: %s (%s)\n",
		res.BoardGames, res.Domains, res.Mechanics, res.SkippedRows, res.RunID, res.Duration)
	return nil
}
