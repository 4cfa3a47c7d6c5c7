// Package main implements the one-shot seeding tool. It fetches restroom
// records from the upstream directory near a configured location, runs them
// through the ingestion pipeline, and exits. Safe to re-run: records whose
// coordinates are already stored are skipped.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crapp/go-restroom-backend/internal/config"
	"github.com/crapp/go-restroom-backend/internal/refuge"
	"github.com/crapp/go-restroom-backend/internal/repo"
	"github.com/crapp/go-restroom-backend/internal/services"
	"github.com/crapp/go-restroom-backend/internal/sysutil"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	lat := flag.Float64("lat", cfg.Refuge.SeedLat, "latitude to seed around")
	lng := flag.Float64("lng", cfg.Refuge.SeedLng, "longitude to seed around")
	perPage := flag.Int("per-page", cfg.Refuge.PerPage, "records to request from the provider")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for fetch and ingest")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	client := refuge.NewClient(cfg.Refuge.BaseURL)
	records, err := client.SearchByLocation(ctx, *lat, *lng, *perPage)
	if err != nil {
		log.Fatal().Err(err).Msg("provider fetch failed")
	}
	log.Info().Int("records", len(records)).Float64("lat", *lat).Float64("lng", *lng).Msg("fetched provider records")

	svc := &services.IngestionService{DB: db}
	report, err := svc.Ingest(ctx, records)
	if err != nil {
		log.Fatal().Err(err).Msg("ingest failed")
	}

	log.Info().
		Int("inserted", report.Inserted).
		Int("skipped_duplicate", report.SkippedDuplicate).
		Int("skipped_invalid", report.SkippedInvalid).
		Msg("seed complete")
}
