// Command stationfeed runs the bike-station feed pipeline: a demand-driven
// chain that periodically fetches the station feed, extracts the station
// list, filters it to a single station and prints the result.
//
// Configuration comes from the environment, optionally seeded from a .env
// file. See the config package for the variable naming scheme; the relevant
// stages are "feed" and "log".
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fxsml/genstage"
	"github.com/fxsml/genstage/config"
	"github.com/fxsml/genstage/feed"
	"github.com/fxsml/genstage/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stationfeed:", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; the environment alone may configure everything.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var logCfg logger.Config
	logCfg.ApplyDefaults()
	if err := config.Load("log", &logCfg); err != nil {
		return err
	}
	log := logger.New(logCfg, "stationfeed")

	var feedCfg feed.Config
	feedCfg.ApplyDefaults()
	if err := config.Load("feed", &feedCfg); err != nil {
		return err
	}
	log.Info("GENSTAGE: Starting pipeline",
		"url", feedCfg.URL,
		"extract_key", feedCfg.ExtractKey,
		"filter_field", feedCfg.FilterField,
		"filter_value", feedCfg.FilterValue,
		"interval", feedCfg.Interval.String(),
	)

	pipeline, err := feed.Build(feedCfg, os.Stdout, genstage.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Run(ctx); err != nil {
		return err
	}
	log.Info("GENSTAGE: Pipeline stopped")
	return nil
}
