// Package services – ListService
//
// This file implements the ListService, which manages named collections of
// restrooms. It validates and normalizes list names, applies the
// configurable duplicate-membership policy, and composes the per-user
// (list, restroom) join for display. Name handling follows the same
// normalize/clip approach used elsewhere in the application.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crapp/go-restroom-backend/internal/domain"
	"github.com/crapp/go-restroom-backend/internal/repo"
)

// Default shared lists created at bootstrap, mirroring the product's
// built-in collections.
const (
	DefaultListFavorites      = "Favorites"
	DefaultListLeastFavorites = "Least Favorites"
)

// ListEntry is one row of the per-user membership join.
type ListEntry struct {
	List     domain.List     `json:"list"`
	Restroom domain.Restroom `json:"restroom"`
	AddedAt  string          `json:"added_at"`
}

// ListService provides list-level operations: creating lists, adding
// restrooms to them, and composing the membership join for a user.
type ListService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// AllowDuplicateItems controls whether the same restroom may be added
	// to the same list repeatedly. The observed product behavior permits
	// duplicates, so callers that want deduplication must opt in
	// explicitly by setting this to false.
	AllowDuplicateItems bool

	// NameMaxLen caps stored list names by rune length.
	NameMaxLen int
	// NameLocale selects the casing rules for normalized names.
	NameLocale language.Tag
}

// NewListService constructs a ListService with sane defaults for name
// handling and the duplicate policy preserved from observed behavior.
func NewListService(db *gorm.DB) *ListService {
	return &ListService{
		DB:                  db,
		AllowDuplicateItems: true,
		NameMaxLen:          32,
		NameLocale:          language.English,
	}
}

// Create inserts a new list. ownerID may be empty for a shared default
// list. Names are normalized, title-cased, clipped, and fall back to
// "Untitled" when blank.
func (s *ListService) Create(ctx context.Context, ownerID, name string) (*domain.List, error) {
	name = s.normalizeName(name)
	if name == "" {
		name = "Untitled"
	}
	return repo.CreateList(ctx, s.DB, ownerID, s.clip(name))
}

// AddItem records restroomID on the given list for userID.
//
// Semantics and validation:
//   - userID must be non-empty; otherwise ErrAuthenticationRequired.
//   - The list must exist and be visible to the user (their own or a
//     shared default); otherwise ErrListNotFound.
//   - The restroom must exist; otherwise ErrRestroomNotFound.
//   - When AllowDuplicateItems is false, re-adding a restroom the user
//     already has on this list fails with ErrDuplicateListItem.
func (s *ListService) AddItem(ctx context.Context, userID, listID, restroomID string) (*domain.ListItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}

	l, err := repo.GetList(ctx, s.DB, listID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	if l.OwnerID != "" && l.OwnerID != userID {
		return nil, ErrListNotFound
	}

	if _, err := repo.GetRestroom(ctx, s.DB, restroomID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRestroomNotFound
		}
		return nil, err
	}

	if !s.AllowDuplicateItems {
		has, err := repo.HasListItem(ctx, s.DB, listID, userID, restroomID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, ErrDuplicateListItem
		}
	}

	return repo.AddListItem(ctx, s.DB, listID, userID, restroomID)
}

// Lists returns the lists visible to a user (their own plus shared
// defaults).
func (s *ListService) Lists(ctx context.Context, userID string) ([]domain.List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}
	return repo.ListListsForUser(ctx, s.DB, userID)
}

// ItemsFor composes the user's membership join: each of their list items
// paired with its list and restroom, ordered by add time.
func (s *ListService) ItemsFor(ctx context.Context, userID string) ([]ListEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrAuthenticationRequired
	}

	items, err := repo.ListItemsForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []ListEntry{}, nil
	}

	// Resolve lists and restrooms once per distinct id.
	lists := make(map[string]*domain.List)
	restrooms := make(map[string]*domain.Restroom)

	out := make([]ListEntry, 0, len(items))
	for _, it := range items {
		l, ok := lists[it.ListID]
		if !ok {
			l, err = repo.GetList(ctx, s.DB, it.ListID)
			if err != nil {
				return nil, err
			}
			lists[it.ListID] = l
		}
		r, ok := restrooms[it.RestroomID]
		if !ok {
			r, err = repo.GetRestroom(ctx, s.DB, it.RestroomID)
			if err != nil {
				return nil, err
			}
			restrooms[it.RestroomID] = r
		}
		out = append(out, ListEntry{
			List:     *l,
			Restroom: *r,
			AddedAt:  it.AddedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

// EnsureDefaults creates the shared default lists if they are missing.
// Called once at startup; safe to call repeatedly.
func (s *ListService) EnsureDefaults(ctx context.Context) error {
	for _, name := range []string{DefaultListFavorites, DefaultListLeastFavorites} {
		_, found, err := repo.FindListByName(ctx, s.DB, name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		if _, err := repo.CreateList(ctx, s.DB, "", name); err != nil {
			return err
		}
	}
	return nil
}

// clip truncates a list name to the configured maximum rune length.
func (s *ListService) clip(name string) string {
	max := s.NameMaxLen
	if max <= 0 {
		max = 32
	}
	if utf8.RuneCountInString(name) > max {
		return string([]rune(name)[:max])
	}
	return name
}

// normalizeName trims whitespace, collapses runs of spaces, and applies
// locale-aware title casing so "road trip stops" and "Road Trip Stops"
// name the same collection.
func (s *ListService) normalizeName(name string) string {
	name = listWhitespaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	loc := s.NameLocale
	if loc == language.Und {
		loc = language.English
	}
	return cases.Title(loc).String(name)
}

// listWhitespaceRE collapses consecutive whitespace to a single space.
var listWhitespaceRE = regexp.MustCompile(`\s+`)
