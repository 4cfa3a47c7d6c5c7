// Package services – VisitService
//
// This file implements the VisitService, which owns the check-in → rating
// state machine per visit. A visit is created the instant a user initiates
// a check-in; rating it later moves the visit to its terminal Rated state.
// The service enforces authentication, visit ownership, score bounds, and
// the at-most-one-rating-per-visit invariant, and persists the rating and
// its back-link atomically. Service-level errors
// (e.g. ErrAuthenticationRequired, ErrNotVisitOwner, ErrAlreadyRated) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/repo"
)

// VisitService implements the use-cases around check-ins and ratings.
// It validates each transition and persists it using the provided GORM
// handle. The service is context-aware and opens its own transaction for
// the rating transition.
type VisitService struct {
	// DB is the database handle used for all visit operations.
	DB *gorm.DB

	// ScoreMin and ScoreMax bound accepted rating scores (inclusive).
	// Both zero means the documented default of 1..5.
	ScoreMin int
	ScoreMax int
}

// CheckIn records a visit by userID to restroomID.
//
// Semantics and validation:
//   - userID must be non-empty; otherwise ErrAuthenticationRequired and no
//     visit is created.
//   - restroomID must exist; otherwise ErrRestroomNotFound.
//   - Once authenticated, check-in always succeeds: a user may check in to
//     the same restroom unlimited times, each call producing an
//     independent visit in state CheckedIn.
func (s *VisitService) CheckIn(ctx context.Context, userID, restroomID string) (*domain.CheckIn, error) {
	tr := otel.Tracer("services/VisitService")
	ctx, span := tr.Start(ctx, "CheckIn",
		trace.WithAttributes(
			attribute.String("restroom.id", restroomID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}

	if _, err := repo.GetRestroom(ctx, s.DB, restroomID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRestroomNotFound
		}
		return nil, err
	}

	return repo.CreateCheckIn(ctx, s.DB, userID, restroomID)
}

// Rate attaches the one allowed rating to a visit on behalf of userID.
//
// Semantics and validation:
//   - userID must be non-empty; otherwise ErrAuthenticationRequired.
//   - checkinID must exist; otherwise ErrVisitNotFound.
//   - The visit must belong to userID; otherwise ErrNotVisitOwner.
//   - The visit must not already carry a rating; otherwise ErrAlreadyRated.
//   - score must lie within [ScoreMin, ScoreMax]; otherwise
//     ErrScoreOutOfRange. reviewText is optional; blank input is stored
//     as absent.
//
// Concurrency & atomicity:
//   - The ownership/state checks, the rating insert, and the back-link
//     update run inside one transaction, so no partial rating is ever
//     visible. A concurrent rating of the same visit loses on the
//     ratings.checkin_id unique index and is reported as ErrAlreadyRated.
func (s *VisitService) Rate(ctx context.Context, userID, checkinID string, score int, reviewText string) (*domain.Rating, error) {
	tr := otel.Tracer("services/VisitService")
	ctx, span := tr.Start(ctx, "Rate",
		trace.WithAttributes(
			attribute.String("checkin.id", checkinID),
			attribute.String("user.id", userID),
			attribute.Int("score", score),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}

	min, max := s.scoreBounds()
	if score < min || score > max {
		return nil, ErrScoreOutOfRange
	}

	var review *string
	if t := strings.TrimSpace(reviewText); t != "" {
		review = &t
	}

	var rating *domain.Rating
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visit, err := repo.GetCheckIn(ctx, tx, checkinID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrVisitNotFound
			}
			return err
		}
		if visit.UserID != userID {
			return ErrNotVisitOwner
		}
		if visit.Rated() {
			return ErrAlreadyRated
		}

		r, err := repo.CreateRating(ctx, tx, userID, visit.RestroomID, visit.ID, score, review)
		if err != nil {
			// The unique index catches a concurrent first rating.
			if isDuplicate(err) {
				return ErrAlreadyRated
			}
			return err
		}
		if err := repo.LinkRating(ctx, tx, visit.ID, r.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyRated
			}
			return err
		}
		rating = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

// RatingOf returns the rating attached to one of the user's visits.
// The same ownership rules as Rate apply; an unrated visit yields
// ErrNotRated.
func (s *VisitService) RatingOf(ctx context.Context, userID, checkinID string) (*domain.Rating, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}

	visit, err := repo.GetCheckIn(ctx, s.DB, checkinID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}
	if visit.UserID != userID {
		return nil, ErrNotVisitOwner
	}

	r, found, err := repo.GetRatingForCheckIn(ctx, s.DB, checkinID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotRated
	}
	return r, nil
}

// RatingsFor returns all ratings submitted for a restroom, most recent
// first. Ratings are public; no identity is required.
func (s *VisitService) RatingsFor(ctx context.Context, restroomID string) ([]domain.Rating, error) {
	if _, err := repo.GetRestroom(ctx, s.DB, restroomID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRestroomNotFound
		}
		return nil, err
	}
	return repo.ListRatingsForRestroom(ctx, s.DB, restroomID)
}

// History returns the user's visits, most recent first.
func (s *VisitService) History(ctx context.Context, userID string) ([]domain.CheckIn, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}
	return repo.ListCheckIns(ctx, s.DB, userID)
}

// scoreBounds resolves the configured score range, defaulting to 1..5.
func (s *VisitService) scoreBounds() (int, int) {
	if s.ScoreMin == 0 && s.ScoreMax == 0 {
		return 1, 5
	}
	return s.ScoreMin, s.ScoreMax
}

// isDuplicate attempts to detect unique-constraint violations across
// drivers that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
