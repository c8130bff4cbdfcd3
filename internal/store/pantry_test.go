package store

import (
	"errors"
	"testing"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/database"
	"github.com/larderhq/larder/internal/model"
)

func setupPantryTestDB(t *testing.T) (*PantryStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("test@example.com", "Test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewPantryStore(db), user.ID
}

func strp(s string) *string { return &s }

func TestPantryInsertAndGetByKey(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	created, err := ps.Insert(&model.PantryItem{
		UserID:  userID,
		Name:    "Whole Milk",
		NameKey: "whole milk",
		Brand:   strp("Tillamook"),
		Label:   strp("organic"),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected nonzero id")
	}
	if created.Brand == nil || *created.Brand != "Tillamook" {
		t.Errorf("brand = %v, want Tillamook", created.Brand)
	}

	got, err := ps.GetByKey(userID, "whole milk", "Tillamook")
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.ID != created.ID {
		t.Errorf("id = %d, want %d", got.ID, created.ID)
	}
	if got.Name != "Whole Milk" {
		t.Errorf("name = %q, want %q", got.Name, "Whole Milk")
	}
}

func TestPantryGetByKeyNotFound(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	got, err := ps.GetByKey(userID, "nonexistent", "")
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing key")
	}
}

func TestPantryDuplicateTripleConflict(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	item := &model.PantryItem{UserID: userID, Name: "Eggs", NameKey: "eggs"}
	if _, err := ps.Insert(item); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := ps.Insert(item)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate insert error = %v, want ErrConflict", err)
	}
}

func TestPantryBrandedAndUnbrandedDistinct(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	plain, err := ps.Insert(&model.PantryItem{UserID: userID, Name: "Butter", NameKey: "butter"})
	if err != nil {
		t.Fatalf("insert unbranded: %v", err)
	}
	branded, err := ps.Insert(&model.PantryItem{UserID: userID, Name: "Butter", NameKey: "butter", Brand: strp("Kerrygold")})
	if err != nil {
		t.Fatalf("insert branded: %v", err)
	}
	if plain.ID == branded.ID {
		t.Error("branded and unbranded entries should be distinct rows")
	}
	if plain.Brand != nil {
		t.Errorf("unbranded brand = %v, want nil", *plain.Brand)
	}

	got, err := ps.GetByKey(userID, "butter", "")
	if err != nil {
		t.Fatalf("get unbranded: %v", err)
	}
	if got == nil || got.ID != plain.ID {
		t.Errorf("unbranded lookup = %v, want id %d", got, plain.ID)
	}
}

func TestPantrySameKeyDifferentUsers(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	other, err := NewUserStore(ps.db).Create("other@example.com", "Other", "hash")
	if err != nil {
		t.Fatalf("create second user: %v", err)
	}

	if _, err := ps.Insert(&model.PantryItem{UserID: userID, Name: "Rice", NameKey: "rice"}); err != nil {
		t.Fatalf("insert for first user: %v", err)
	}
	if _, err := ps.Insert(&model.PantryItem{UserID: other.ID, Name: "Rice", NameKey: "rice"}); err != nil {
		t.Errorf("same key for a different user should not conflict: %v", err)
	}
}

func TestPantryListByUser(t *testing.T) {
	ps, userID := setupPantryTestDB(t)

	ps.Insert(&model.PantryItem{UserID: userID, Name: "Yogurt", NameKey: "yogurt"})
	ps.Insert(&model.PantryItem{UserID: userID, Name: "Apples", NameKey: "apples"})
	ps.Insert(&model.PantryItem{UserID: userID, Name: "Apples", NameKey: "apples", Brand: strp("Fuji")})

	items, err := ps.ListByUser(userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// name_key ASC, brand ASC: unbranded apples first
	if items[0].NameKey != "apples" || items[0].Brand != nil {
		t.Errorf("items[0] = %q/%v, want unbranded apples", items[0].NameKey, items[0].Brand)
	}
	if items[1].Brand == nil || *items[1].Brand != "Fuji" {
		t.Errorf("items[1].Brand = %v, want Fuji", items[1].Brand)
	}
	if items[2].NameKey != "yogurt" {
		t.Errorf("items[2].NameKey = %q, want yogurt", items[2].NameKey)
	}
}
