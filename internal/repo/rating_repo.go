// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Rating
// model.
//
// The repository follows a "thin" approach: it performs persistence and
// simple query composition, leaving business rules (visit ownership, score
// bounds, single-rating-per-visit) to the services package.
//
// Error semantics:
//   - A second rating for the same checkin relies on the ux_rating_checkin
//     unique index and surfaces as a raw DB error; the service layer
//     translates it into a domain error (services.ErrAlreadyRated).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// CreateRating inserts a rating row referencing (user, restroom, checkin).
// The checkin_id column is unique, so a duplicate rating attempt returns a
// unique-violation error for the caller to translate.
func CreateRating(ctx context.Context, db *gorm.DB, userID, restroomID, checkinID string, score int, reviewText *string) (*domain.Rating, error) {
	r := &domain.Rating{
		ID:         uuid.NewString(),
		UserID:     userID,
		RestroomID: restroomID,
		CheckinID:  checkinID,
		Score:      score,
		ReviewText: reviewText,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRatingForCheckIn returns the rating attached to a visit. A missing
// row is reported as (nil, false, nil): an unrated visit is an expected
// state, not a failure.
func GetRatingForCheckIn(ctx context.Context, db *gorm.DB, checkinID string) (*domain.Rating, bool, error) {
	var r domain.Rating
	err := db.WithContext(ctx).Where("checkin_id = ?", checkinID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &r, true, nil
}

// ListRatingsForRestroom returns all ratings for a restroom, most recent
// first.
func ListRatingsForRestroom(ctx context.Context, db *gorm.DB, restroomID string) ([]domain.Rating, error) {
	var out []domain.Rating
	err := db.WithContext(ctx).
		Where("restroom_id = ?", restroomID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
