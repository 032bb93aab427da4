// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/venuefinder"
	"github.com/poiesic/venuefinder/ai/openai"
	"github.com/poiesic/venuefinder/config"
	"github.com/poiesic/venuefinder/dataset"
	"github.com/poiesic/venuefinder/indexer"
	"github.com/poiesic/venuefinder/search"
	"github.com/urfave/cli/v2"
)

// newProvider is swapped in tests.
var newProvider = openai.NewProvider

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "venuefinder",
		Usage: "Find venues by what their reviews say",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"d"},
				Usage:   "Path to the artifact store directory (overrides store.path)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print machine-readable JSON instead of text",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Embed the review dataset and activate a new index version",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "venues",
						Usage: "Venues CSV (overrides dataset.venues)",
					},
					&cli.StringFlag{
						Name:  "reviews",
						Usage: "Reviews CSV (overrides dataset.reviews)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even if the active index matches the dataset",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Retry transient failures this many times (overrides build.max_retries)",
						Value: -1,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff (overrides build.retry_delay)",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report embedding progress",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank venues for a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-n",
						Aliases: []string{"n"},
						Usage:   "Number of venues to return (overrides search.top_n)",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of reviews to retrieve (overrides search.top_k)",
					},
					&cli.StringFlag{
						Name:  "aggregation",
						Usage: "Venue score aggregation: max, mean or weighted (overrides search.aggregation)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show the active index and the last build",
				Action: statusCommand,
			},
		},
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if store := c.String("store"); store != "" {
		cfg.Store.Path = store
	}
	return cfg, nil
}

// openEngine opens the engine described by cfg.
func openEngine(cfg *config.Config) (*venuefinder.Engine, error) {
	aiConfig := cfg.AIProviderConfig()
	provider, err := newProvider(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	e, err := venuefinder.Open(cfg.Store.Path,
		venuefinder.WithAIConfig(aiConfig),
		venuefinder.WithProvider(provider),
		venuefinder.WithBuilderOptions(cfg.BuilderOptions()...),
		venuefinder.WithSearchOptions(cfg.SearchOptions()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Store.Path, err)
	}
	return e, nil
}

// writeMetrics dumps the engine's collectors when metrics.textfile is set.
func writeMetrics(cfg *config.Config, e *venuefinder.Engine) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := e.Metrics().WriteToTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Warn("failed to write metrics", "path", cfg.Metrics.Textfile, "err", err)
	}
}

func buildCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	venuesPath := cfg.Dataset.Venues
	if v := c.String("venues"); v != "" {
		venuesPath = v
	}
	reviewsPath := cfg.Dataset.Reviews
	if v := c.String("reviews"); v != "" {
		reviewsPath = v
	}
	if reviewsPath == "" {
		return fmt.Errorf("reviews file is required (--reviews or dataset.reviews)")
	}

	maxRetries := cfg.Build.MaxRetries
	if c.Int("max-retries") >= 0 {
		maxRetries = c.Int("max-retries")
	}
	retryDelay := cfg.Build.RetryDelay
	if c.IsSet("retry-delay") {
		retryDelay = c.Duration("retry-delay")
	}

	ds, err := dataset.Load(venuesPath, reviewsPath, cfg.DatasetOptions()...)
	if err != nil {
		return err
	}

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	defer writeMetrics(cfg, e)

	var opts []indexer.BuildOption
	if c.Bool("force") {
		opts = append(opts, indexer.Force())
	}
	if !c.Bool("quiet") && !c.Bool("json") {
		opts = append(opts, indexer.WithProgress(c.App.ErrWriter))
	}

	var report *indexer.BuildReport
	err = indexer.RetryWithBackoff(c.Context, func() error {
		var buildErr error
		report, buildErr = e.Build(c.Context, ds, opts...)
		return buildErr
	}, maxRetries+1, retryDelay)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, toReportJSON(report))
	}
	renderReport(c.App.Writer, newStyles(c.App.Writer), report)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if n := c.Int("top-n"); n > 0 {
		cfg.Search.TopN = n
	}
	if k := c.Int("top-k"); k > 0 {
		cfg.Search.TopK = k
	}
	if agg := c.String("aggregation"); agg != "" {
		parsed, err := search.ParseAggregation(agg)
		if err != nil {
			return err
		}
		cfg.Search.Aggregation = string(parsed)
	}

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	defer writeMetrics(cfg, e)

	results, err := e.Search(c.Context, query, cfg.Search.TopK, cfg.Search.TopN)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, toResultsJSON(results))
	}
	renderResults(c.App.Writer, newStyles(c.App.Writer), query, results)
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.Status(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, toStatusJSON(cfg.Store.Path, st))
	}
	renderStatus(c.App.Writer, newStyles(c.App.Writer), cfg.Store.Path, st)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
