// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Restroom
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a restroom is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - CreateRestroom translates a coordinate unique-index violation into
//     ErrDuplicateCoordinates so the ingestion pipeline can count the record
//     as a duplicate instead of failing the batch.
//   - On other DB errors (connectivity issues, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateCoordinates indicates that a restroom already exists at the
// exact (latitude, longitude) pair. It is produced when an insert trips the
// ux_restroom_coords unique index, which can happen when two ingestion
// batches race past the existence check.
var ErrDuplicateCoordinates = errors.New("restroom already exists at coordinates")

// RestroomExistsAt reports whether a restroom is already stored at exactly
// (lat, lng). Equality is exact numeric equality on both coordinates; two
// records differing by floating-point noise are distinct.
func RestroomExistsAt(ctx context.Context, db *gorm.DB, lat, lng float64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Restroom{}).
		Where("latitude = ? AND longitude = ?", lat, lng).
		Count(&n).Error
	return n > 0, err
}

// CreateRestroom persists a restroom candidate produced by the normalizer.
// The ID is assigned here (random UUID) and CreatedAt is set to UTC. A
// coordinate collision is returned as ErrDuplicateCoordinates.
func CreateRestroom(ctx context.Context, db *gorm.DB, r *domain.Restroom) (*domain.Restroom, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCoordinates
		}
		return nil, err
	}
	return r, nil
}

// GetRestroom fetches a single restroom by its ID. If the record does not
// exist, it returns ErrNotFound.
func GetRestroom(ctx context.Context, db *gorm.DB, id string) (*domain.Restroom, error) {
	var r domain.Restroom
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRestrooms returns all stored restrooms ordered by creation time
// ascending (stable for index building and display).
func ListRestrooms(ctx context.Context, db *gorm.DB) ([]domain.Restroom, error) {
	var out []domain.Restroom
	err := db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountRestrooms returns the total number of stored restrooms.
func CountRestrooms(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Restroom{}).Count(&total).Error
	return total, err
}

// ListRestroomsPage returns a paginated slice of restrooms ordered by
// creation time ascending. The caller computes offset and limit.
func ListRestroomsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Restroom, error) {
	var out []domain.Restroom
	err := db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique") ||
		strings.Contains(msg, "duplicate key")
}
