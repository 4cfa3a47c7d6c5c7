package repo

import (
	"context"
	"testing"

	"github.com/crapp/go-restroom-backend/internal/domain"
)

func TestCreateList_OwnedAndShared(t *testing.T) {
	db := newRepoDB(t, &domain.List{})
	ctx := context.Background()

	owned, err := CreateList(ctx, db, "u1", "Favorites")
	if err != nil {
		t.Fatalf("owned list: %v", err)
	}
	if owned.OwnerID != "u1" || owned.Name != "Favorites" {
		t.Fatalf("unexpected list: %+v", owned)
	}

	shared, err := CreateList(ctx, db, "", "Least Favorites")
	if err != nil {
		t.Fatalf("shared list: %v", err)
	}
	if shared.OwnerID != "" {
		t.Fatalf("shared list must have no owner, got %q", shared.OwnerID)
	}
}

func TestListListsForUser_IncludesShared(t *testing.T) {
	db := newRepoDB(t, &domain.List{})
	ctx := context.Background()

	if _, err := CreateList(ctx, db, "", "Favorites"); err != nil {
		t.Fatalf("shared: %v", err)
	}
	if _, err := CreateList(ctx, db, "u1", "Road Trip"); err != nil {
		t.Fatalf("owned: %v", err)
	}
	if _, err := CreateList(ctx, db, "u2", "Other"); err != nil {
		t.Fatalf("foreign: %v", err)
	}

	got, err := ListListsForUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListListsForUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected shared + owned = 2 lists, got %d", len(got))
	}
}

func TestFindListByName_SharedOnly(t *testing.T) {
	db := newRepoDB(t, &domain.List{})
	ctx := context.Background()

	if _, err := CreateList(ctx, db, "u1", "Favorites"); err != nil {
		t.Fatalf("owned: %v", err)
	}

	// The owned list must not shadow a missing shared default.
	_, found, err := FindListByName(ctx, db, "Favorites")
	if err != nil {
		t.Fatalf("FindListByName: %v", err)
	}
	if found {
		t.Fatalf("owned list must not be returned as shared default")
	}

	if _, err := CreateList(ctx, db, "", "Favorites"); err != nil {
		t.Fatalf("shared: %v", err)
	}
	l, found, err := FindListByName(ctx, db, "Favorites")
	if err != nil || !found {
		t.Fatalf("expected shared default found, found=%v err=%v", found, err)
	}
	if l.OwnerID != "" {
		t.Fatalf("expected shared list, got owner %q", l.OwnerID)
	}
}

func TestAddListItem_DuplicatesPermittedAtThisLayer(t *testing.T) {
	db := newRepoDB(t, &domain.Restroom{}, &domain.List{}, &domain.ListItem{})
	ctx := context.Background()
	r := seedRestroom(t, db)

	l, err := CreateList(ctx, db, "u1", "Favorites")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := AddListItem(ctx, db, l.ID, "u1", r.ID); err != nil {
			t.Fatalf("add item %d: %v", i, err)
		}
	}

	has, err := HasListItem(ctx, db, l.ID, "u1", r.ID)
	if err != nil || !has {
		t.Fatalf("HasListItem = %v, %v; want true", has, err)
	}

	items, err := ListItemsForUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListItemsForUser: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("repo layer must not dedupe, got %d items", len(items))
	}
	if items[0].AddedAt.After(items[1].AddedAt) {
		t.Fatalf("items must be ordered by add time ascending")
	}
}
