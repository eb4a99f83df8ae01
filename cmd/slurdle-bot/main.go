// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Command slurdle-bot runs the collaborative wordle game bot against a
// slurk chat platform. It connects to the platform's event socket,
// creates a game session for every task room the platform opens, and
// drives the sessions until shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clp-research/slurdle/game"
	"github.com/clp-research/slurdle/lib/clock"
	"github.com/clp-research/slurdle/lib/config"
	"github.com/clp-research/slurdle/lib/itemdata"
	"github.com/clp-research/slurdle/lib/version"
	"github.com/clp-research/slurdle/lib/wordlist"
	"github.com/clp-research/slurdle/messaging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		envFile     string
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to slurdle.yaml (defaults to SLURDLE_CONFIG)")
	flag.StringVar(&envFile, "env-file", "", "optional .env file with SLURDLE_TOKEN and SLURDLE_USER")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("slurdle-bot %s\n", version.Info())
		return nil
	}

	// Credentials may come from a .env file; a missing default file is
	// not an error, an explicitly named one must exist.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	words, err := wordlist.Load(cfg.Data.WordList)
	if err != nil {
		return fmt.Errorf("loading word list: %w", err)
	}
	logger.Info("word list loaded", "path", cfg.Data.WordList, "words", words.Len())

	items, err := itemdata.Open(cfg.Data.Dir, itemdata.Mode(cfg.Data.Mode), cfg.Data.Shuffle, cfg.Data.Seed)
	if err != nil {
		return fmt.Errorf("opening item data: %w", err)
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		ServerURL: cfg.Platform.ServerURL,
		Token:     cfg.Platform.Token,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("platform client: %w", err)
	}

	stream, err := messaging.Dial(ctx, messaging.StreamConfig{
		ServerURL: cfg.Platform.ServerURL,
		Token:     cfg.Platform.Token,
		UserID:    messaging.UserID(cfg.Platform.UserID),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("connecting event stream: %w", err)
	}
	defer stream.Close()
	logger.Info("connected", "server", cfg.Platform.ServerURL, "user_id", cfg.Platform.UserID)

	effects := messaging.NewEffects(client, stream, logger)
	go effects.Run(ctx)

	gameConfig := game.Config{
		RoundTimeout:   cfg.Game.RoundTimeout.Std(),
		DepartureGrace: cfg.Game.DepartureGrace.Std(),
		ServerURL:      cfg.Game.PublicURL,
		Greeting:       cfg.Game.Greeting,
	}
	registry := game.NewRegistry(gameConfig, effects, words, clock.Real(), logger)

	dispatcher := game.NewDispatcher(game.DispatcherConfig{
		BotID:       messaging.UserID(cfg.Platform.UserID),
		TaskID:      messaging.TaskID(cfg.Platform.TaskID),
		WaitingRoom: messaging.RoomID(cfg.Platform.WaitingRoom),
		Rounds:      cfg.Game.Rounds,
	}, registry, items, effects, client, logger)

	logger.Info("slurdle bot running", "task_id", cfg.Platform.TaskID, "rounds", cfg.Game.Rounds)
	if err := dispatcher.Run(ctx, stream.Events()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutting down")
	return nil
}
