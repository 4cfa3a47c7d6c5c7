// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the CheckIn
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// CreateCheckIn inserts a new visit row for (userID, restroomID) stamped
// with the current UTC time. Every call produces an independent visit;
// repeat check-ins are not deduplicated.
func CreateCheckIn(ctx context.Context, db *gorm.DB, userID, restroomID string) (*domain.CheckIn, error) {
	c := &domain.CheckIn{
		ID:         uuid.NewString(),
		UserID:     userID,
		RestroomID: restroomID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCheckIn fetches a visit by ID, or ErrNotFound if missing.
func GetCheckIn(ctx context.Context, db *gorm.DB, id string) (*domain.CheckIn, error) {
	var c domain.CheckIn
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LinkRating sets the rating back-link on a visit. It is called inside the
// rating transaction; if no rows are affected the visit vanished underneath
// us and ErrNotFound is returned so the transaction rolls back.
func LinkRating(ctx context.Context, db *gorm.DB, checkinID, ratingID string) error {
	res := db.WithContext(ctx).
		Model(&domain.CheckIn{}).
		Where("id = ? AND rating_id IS NULL", checkinID).
		Update("rating_id", ratingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCheckIns returns all visits for a user, most recent first.
func ListCheckIns(ctx context.Context, db *gorm.DB, userID string) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountCheckIns returns the total number of visits recorded for a user.
func CountCheckIns(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CheckIn{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}
