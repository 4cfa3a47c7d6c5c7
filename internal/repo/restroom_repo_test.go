package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestCreateRestroom_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	r, err := CreateRestroom(context.Background(), db, &domain.Restroom{Latitude: 1, Longitude: 2})
	if err == nil || r != nil {
		t.Fatalf("expected error creating without table, got restroom=%v err=%v", r, err)
	}
}

func TestCreateRestroom_AssignsIDAndTimestamp(t *testing.T) {
	db := newRepoDB(t, &domain.Restroom{})

	r, err := CreateRestroom(context.Background(), db, &domain.Restroom{
		Latitude:  37.787,
		Longitude: -122.410,
		Name:      strptr("Quizno's"),
		Approved:  boolptr(true),
	})
	if err != nil {
		t.Fatalf("CreateRestroom: %v", err)
	}
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Fatalf("expected assigned ID and timestamp, got %+v", r)
	}

	got, err := GetRestroom(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("GetRestroom: %v", err)
	}
	if got.Name == nil || *got.Name != "Quizno's" {
		t.Fatalf("expected persisted name, got %+v", got.Name)
	}
	if got.Directions != nil || got.City != nil {
		t.Fatalf("unset optional fields must stay nil, got %+v", got)
	}
}

func TestCreateRestroom_DuplicateCoordinates(t *testing.T) {
	db := newRepoDB(t, &domain.Restroom{})
	ctx := context.Background()

	if _, err := CreateRestroom(ctx, db, &domain.Restroom{Latitude: 37.787, Longitude: -122.410}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := CreateRestroom(ctx, db, &domain.Restroom{Latitude: 37.787, Longitude: -122.410})
	if !errors.Is(err, ErrDuplicateCoordinates) {
		t.Fatalf("expected ErrDuplicateCoordinates, got %v", err)
	}
}

func TestRestroomExistsAt_ExactEquality(t *testing.T) {
	db := newRepoDB(t, &domain.Restroom{})
	ctx := context.Background()

	if _, err := CreateRestroom(ctx, db, &domain.Restroom{Latitude: 37.787, Longitude: -122.410}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err := RestroomExistsAt(ctx, db, 37.787, -122.410)
	if err != nil || !ok {
		t.Fatalf("expected match at exact coordinates, ok=%v err=%v", ok, err)
	}

	// Floating-point noise means a different restroom.
	ok, err = RestroomExistsAt(ctx, db, 37.7870001, -122.410)
	if err != nil || ok {
		t.Fatalf("expected no match for perturbed latitude, ok=%v err=%v", ok, err)
	}
}

func TestListRestroomsPage_And_Count(t *testing.T) {
	db := newRepoDB(t, &domain.Restroom{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := CreateRestroom(ctx, db, &domain.Restroom{Latitude: float64(i), Longitude: float64(-i)}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	total, err := CountRestrooms(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountRestrooms = %d, %v; want 5", total, err)
	}

	page, err := ListRestroomsPage(ctx, db, 2, 2)
	if err != nil {
		t.Fatalf("ListRestroomsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows on page, got %d", len(page))
	}
}
