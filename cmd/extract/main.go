package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gradebook-extract/internal/config"
	"gradebook-extract/internal/extract"
	"gradebook-extract/internal/gateway"
	"gradebook-extract/internal/logger"
	"gradebook-extract/internal/storage"

	"github.com/joho/godotenv"
)

const usage = "Usage: extract /path/to/config.yaml [/path/to/outputfile]"

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	// Optional .env beside the working directory; real environment
	// variables win over both it and the config file.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}
	if len(os.Args) == 3 {
		cfg.App.OutputFile = strings.TrimSpace(os.Args[2])
	}
	if v := os.Getenv("LEARN_USERNAME"); v != "" {
		cfg.Learn.Username = v
	}
	if v := os.Getenv("LEARN_PASSWORD"); v != "" {
		cfg.Learn.Password = v
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	dial := func(ctx context.Context) (gateway.Gateway, error) {
		gw := gateway.NewClient(cfg)
		if err := gw.Login(ctx); err != nil {
			return nil, err
		}
		return gw, nil
	}

	var store storage.Publisher
	if cfg.Storage.S3.Enabled {
		s3Store, err := storage.NewS3Publisher(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize report storage")
		}
		store = s3Store
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	log.Info().Time("started_at", start).Msg("Extract started")

	driver := extract.NewDriver(cfg, dial, store)
	sum, err := driver.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Extract aborted")
	}

	log.Info().
		Time("started_at", start).
		Dur("elapsed", time.Since(start)).
		Msg("Extract completed")

	if sum == nil {
		return
	}
	log.Info().
		Int("courses_listed", sum.CoursesListed).
		Int("courses_processed", sum.CoursesProcessed).
		Int("rows_written", sum.RowsWritten).
		Msg("Extract summary")

	// Errors are summarized here, not in the exit code; callers detect
	// partial failure from the log.
	if len(sum.Errors) > 0 {
		log.Error().Int("count", len(sum.Errors)).Msg("Errors recorded during extract")
		for _, message := range sum.Errors {
			log.Error().Msg(" - " + message)
		}
	}
}
