// Package services – IngestionService
//
// This file implements the IngestionService, which orchestrates the
// fetch → normalize → dedup → persist pipeline for batches of raw
// restroom-location records. Each record is processed in isolation: a
// malformed record is counted and skipped, never aborting the batch, and
// each insert is independent, so re-running the same batch is safe:
// already-present coordinates are simply skipped.
//
// Observability: Ingest is OpenTelemetry-instrumented; the span carries
// batch size and the resulting counters.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crapp/go-restroom-backend/internal/refuge"
	"github.com/crapp/go-restroom-backend/internal/repo"
)

// IngestionReport summarizes one pipeline run.
type IngestionReport struct {
	// Inserted counts newly persisted restrooms.
	Inserted int `json:"inserted"`
	// SkippedDuplicate counts records whose exact coordinate pair was
	// already stored.
	SkippedDuplicate int `json:"skipped_duplicate"`
	// SkippedInvalid counts records dropped for missing or non-numeric
	// coordinates.
	SkippedInvalid int `json:"skipped_invalid"`
}

// IngestionService runs the restroom ingestion pipeline. The database
// handle is injected explicitly; the service keeps no other state and is
// safe for concurrent use, subject to the documented dedup contract.
type IngestionService struct {
	// DB is the database handle used for the dedup check and inserts.
	DB *gorm.DB
}

// Ingest processes a batch of raw records. For each record it normalizes
// (skipping malformed input), consults the dedup check, and persists new
// restrooms. The returned report always reflects every record in the
// batch; a non-nil error is returned only for storage failures, alongside
// the counts accumulated up to that point.
//
// Contract: the synchronous existence check before each insert is what
// upholds the no-duplicate-coordinates invariant. The unique index on the
// coordinate pair additionally absorbs the check-then-act race between
// concurrent batches: an insert that loses such a race is counted as a
// duplicate, not an error.
func (s *IngestionService) Ingest(ctx context.Context, records []refuge.Record) (IngestionReport, error) {
	tr := otel.Tracer("services/IngestionService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(attribute.Int("batch.size", len(records))),
	)
	defer span.End()

	var rep IngestionReport
	for _, rec := range records {
		candidate, err := refuge.Normalize(rec)
		if err != nil {
			// Per-record isolation: a bad record never aborts the batch,
			// and the dedup store is never consulted for it.
			rep.SkippedInvalid++
			continue
		}

		exists, err := repo.RestroomExistsAt(ctx, s.DB, candidate.Latitude, candidate.Longitude)
		if err != nil {
			return rep, err
		}
		if exists {
			rep.SkippedDuplicate++
			continue
		}

		if _, err := repo.CreateRestroom(ctx, s.DB, candidate); err != nil {
			if errors.Is(err, repo.ErrDuplicateCoordinates) {
				rep.SkippedDuplicate++
				continue
			}
			return rep, err
		}
		rep.Inserted++
	}

	span.SetAttributes(
		attribute.Int("ingest.inserted", rep.Inserted),
		attribute.Int("ingest.skipped_duplicate", rep.SkippedDuplicate),
		attribute.Int("ingest.skipped_invalid", rep.SkippedInvalid),
	)
	return rep, nil
}
