package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/config"
	"github.com/mohamedkhairy/session-analytics/internal/data"
	"github.com/mohamedkhairy/session-analytics/internal/engine"
	"github.com/mohamedkhairy/session-analytics/internal/sessions"
	"github.com/mohamedkhairy/session-analytics/internal/storage"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

func main() {
	instrument := flag.String("instrument", "", "instrument symbol to analyze (required)")
	dataDir := flag.String("data-dir", "", "override bar data directory")
	persist := flag.Bool("persist", false, "save computed records to PostgreSQL")
	flag.Parse()

	if *instrument == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -instrument <SYMBOL> [-data-dir <dir>] [-persist]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, err := sessions.LoadZone(cfg.Engine.Timezone)
	if err != nil {
		logger.Fatal("Failed to load exchange timezone",
			logger.ErrorField(err),
		)
	}

	sched := sessions.NewSchedule(loc)
	eng := engine.New(sched, engine.NewRecordCache(), engine.Options{
		OpeningRangeMinutes: cfg.Engine.OpeningRangeMinutes,
		DefaultBucketMin:    cfg.Engine.DefaultBucketMin,
		PercentileBands:     cfg.Engine.PercentileBands,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	loader := data.NewFileLoader(cfg.Data, loc)
	bars, err := loader.Load(ctx, *instrument)
	if err != nil {
		logger.Fatal("Failed to load bars",
			logger.ErrorField(err),
			logger.String("instrument", *instrument),
		)
	}

	records, err := eng.Records(*instrument, bars)
	if err != nil {
		logger.Fatal("Failed to compute session records",
			logger.ErrorField(err),
			logger.String("instrument", *instrument),
		)
	}

	logger.Info("Computed session records",
		logger.String("instrument", *instrument),
		logger.Int("bars", len(bars)),
		logger.Int("records", len(records)),
	)

	if *persist {
		store, err := storage.NewPostgresRecordStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to record store",
				logger.ErrorField(err),
			)
		}
		defer store.Close()

		if err := store.SaveRecords(ctx, loader.Canonical(*instrument), records); err != nil {
			logger.Fatal("Failed to save session records",
				logger.ErrorField(err),
			)
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	for i := range records {
		if err := enc.Encode(records[i].ToMap()); err != nil {
			logger.Fatal("Failed to encode record",
				logger.ErrorField(err),
			)
		}
	}
}
