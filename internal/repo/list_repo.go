// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the List and
// ListItem models.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

// CreateList inserts a new list row. ownerID may be empty for shared
// default lists that every user can see.
func CreateList(ctx context.Context, db *gorm.DB, ownerID, name string) (*domain.List, error) {
	l := &domain.List{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// GetList fetches a list by ID, or ErrNotFound if missing.
func GetList(ctx context.Context, db *gorm.DB, id string) (*domain.List, error) {
	var l domain.List
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ListListsForUser returns the lists visible to a user: their own plus the
// shared default lists (empty owner), oldest first.
func ListListsForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.List, error) {
	var out []domain.List
	err := db.WithContext(ctx).
		Where("owner_id = ? OR owner_id = ''", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// FindListByName returns a shared default list by exact name. A missing
// row is reported as (nil, false, nil) so bootstrap can decide whether to
// create it.
func FindListByName(ctx context.Context, db *gorm.DB, name string) (*domain.List, bool, error) {
	var l domain.List
	err := db.WithContext(ctx).Where("owner_id = '' AND name = ?", name).First(&l).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &l, true, nil
}

// AddListItem records a restroom on a list for a user, stamped with the
// current UTC time. Membership is not deduplicated here; the duplicate
// policy lives in the service layer.
func AddListItem(ctx context.Context, db *gorm.DB, listID, userID, restroomID string) (*domain.ListItem, error) {
	it := &domain.ListItem{
		ID:         uuid.NewString(),
		ListID:     listID,
		UserID:     userID,
		RestroomID: restroomID,
		AddedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// HasListItem reports whether the user already has the restroom on the
// given list. Used only when the duplicate policy forbids re-adding.
func HasListItem(ctx context.Context, db *gorm.DB, listID, userID, restroomID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ListItem{}).
		Where("list_id = ? AND user_id = ? AND restroom_id = ?", listID, userID, restroomID).
		Count(&n).Error
	return n > 0, err
}

// ListItemsForUser returns the user's list items ordered by add time
// ascending, for the service layer to join with lists and restrooms.
func ListItemsForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.ListItem, error) {
	var out []domain.ListItem
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
