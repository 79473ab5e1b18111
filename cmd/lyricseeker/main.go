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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/lyricseeker"
	"github.com/poiesic/lyricseeker/backfill"
	"github.com/poiesic/lyricseeker/config"
	"github.com/poiesic/lyricseeker/core"
	"github.com/poiesic/lyricseeker/ingest"
	"github.com/urfave/cli/v2"
)

const version = "1.0.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "lyricseeker",
		Usage:   "Semantic search over song lyrics",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			serveCommand(),
			loadCommand(),
			backfillCommand(),
			searchCommand(),
			statsCommand(),
		},
	}
}

// catalogFlags are shared by every command that opens the catalog.
func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the SQLite catalog (overrides " + config.EnvDatabasePath + ")",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Query-embedding cache directory (overrides " + config.EnvCachePath + ")",
		},
	}
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DatabasePath = c.String("db")
	}
	if c.IsSet("cache") {
		cfg.CachePath = c.String("cache")
	}
	if c.IsSet("addr") {
		cfg.HTTPAddr = c.String("addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openCatalog(c *cli.Context) (*lyricseeker.Catalog, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	catalog, err := lyricseeker.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return catalog, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP search API",
		Action: serveAction,
		Flags: append(catalogFlags(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "HTTP listen address (overrides " + config.EnvHTTPAddr + ")",
			},
		),
	}
}

func serveAction(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	server, err := catalog.NewServer(version)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	return server.Run(c.Context)
}

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:   "load",
		Usage:  "Load a CSV song catalog",
		Action: loadAction,
		Flags: append(catalogFlags(),
			&cli.StringFlag{
				Name:     "csv",
				Usage:    "Path to the CSV export",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of songs to insert per transaction",
				Value: ingest.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "max-rows",
				Usage: "Stop after reading N data rows (0 = no cap)",
			},
		),
	}
}

func loadAction(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	opts := []ingest.Option{ingest.WithBatchSize(c.Int("batch-size"))}
	if c.Int("max-rows") > 0 {
		opts = append(opts, ingest.WithMaxRows(c.Int("max-rows")))
	}
	loader, err := catalog.NewLoader(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := loader.LoadFile(ctx, c.String("csv"))
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	fmt.Printf("Loaded %d songs in %v (%d skipped, %d duplicates)\n",
		report.Inserted, report.Elapsed.Round(time.Millisecond), report.Skipped, report.Duplicates)
	fmt.Println("Run 'lyricseeker backfill' to generate embeddings for the new songs.")
	return nil
}

func backfillCommand() *cli.Command {
	return &cli.Command{
		Name:   "backfill",
		Usage:  "Generate embeddings for songs that lack one",
		Action: backfillAction,
		Flags: append(catalogFlags(),
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of songs to embed per API call",
				Value: backfill.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of batches embedded in parallel (0 = auto)",
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum retry attempts for failed embedding calls",
				Value: 3,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: 1 * time.Second,
			},
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N songs",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Count pending songs without embedding anything",
			},
		),
	}
}

func backfillAction(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	cfg := backfill.DefaultConfig()
	cfg.BatchSize = c.Int("batch-size")
	if c.IsSet("concurrency") && c.Int("concurrency") > 0 {
		cfg.Concurrency = c.Int("concurrency")
	}
	cfg.MaxRetries = c.Int("max-retries")
	cfg.RetryDelay = c.Duration("retry-delay")
	cfg.ReportInterval = c.Int("report-interval")
	cfg.DryRun = c.Bool("dry-run")

	backfiller, err := catalog.NewBackfiller(cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := backfiller.Run(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog from the terminal",
		ArgsUsage: `"the query text"`,
		Action:    searchAction,
		Flags: append(catalogFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results",
				Value:   core.DefaultSearchLimit,
			},
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum similarity score in [0,1]",
				Value:   core.DefaultSearchThreshold,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw response as JSON",
			},
		),
	}
}

func searchAction(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required: lyricseeker search \"songs about heartbreak\"")
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	searcher, err := catalog.NewSearcher()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	response, err := searcher.Search(ctx, core.SearchQuery{
		Text:      query,
		Limit:     c.Int("limit"),
		Threshold: c.Float64("threshold"),
	})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	fmt.Printf("Found %d hits in %.2fms\n", response.TotalResults, response.ProcessingTimeMs)
	for i, result := range response.Results {
		year := ""
		if result.Song.Year > 0 {
			year = fmt.Sprintf(" (%d)", result.Song.Year)
		}
		fmt.Printf("%d: %s - %s%s [%.3f]\n", i+1, result.Song.Artist, result.Song.Title, year, result.Similarity)
	}
	return nil
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Print catalog statistics",
		Action: statsAction,
		Flags:  catalogFlags(),
	}
}

func statsAction(c *cli.Context) error {
	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	stats, err := catalog.Songs().Stats(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("Songs:            %d\n", stats.TotalSongs)
	fmt.Printf("Artists:          %d\n", stats.TotalArtists)
	fmt.Printf("With embeddings:  %d (%.2f%%)\n", stats.SongsWithEmbeddings, stats.EmbeddingCoverage)
	fmt.Printf("Avg lyrics:       %.1f chars\n", stats.AvgLyricsLength)
	if stats.Years.UniqueYears > 0 {
		fmt.Printf("Years:            %d-%d (%d distinct)\n",
			stats.Years.Min, stats.Years.Max, stats.Years.UniqueYears)
	}
	if len(stats.TopArtists) > 0 {
		fmt.Println("Top artists:")
		for _, artist := range stats.TopArtists {
			fmt.Printf("  %-30s %d\n", artist.Artist, artist.Songs)
		}
	}
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
