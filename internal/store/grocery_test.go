package store

import (
	"testing"
	"time"

	"github.com/larderhq/larder/internal/database"
	"github.com/larderhq/larder/internal/model"
)

func setupGroceryTestDB(t *testing.T) (*GroceryStore, *PantryStore, int64) {
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
	return NewGroceryStore(db), NewPantryStore(db), user.ID
}

func groceryPantryItem(t *testing.T, ps *PantryStore, userID int64, name, key string) *model.PantryItem {
	t.Helper()
	p, err := ps.Insert(&model.PantryItem{UserID: userID, Name: name, NameKey: key})
	if err != nil {
		t.Fatalf("insert pantry item: %v", err)
	}
	return p
}

func TestGroceryItemCRUD(t *testing.T) {
	gs, ps, userID := setupGroceryTestDB(t)
	pantry := groceryPantryItem(t, ps, userID, "Whole Milk", "whole milk")

	exp := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	item, err := gs.Insert(&model.GroceryItem{
		UserID:         userID,
		PantryItemID:   pantry.ID,
		Name:           "Whole Milk",
		NameKey:        "whole milk",
		Quantity:       2,
		Unit:           "liter",
		Brand:          strp("Tillamook"),
		ExpirationDate: &exp,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if item.Quantity != 2 {
		t.Errorf("quantity = %v, want 2", item.Quantity)
	}
	if item.Checked {
		t.Error("expected unchecked on create")
	}
	if item.ExpirationDate == nil || !item.ExpirationDate.Equal(exp) {
		t.Errorf("expiration = %v, want %v", item.ExpirationDate, exp)
	}

	got, err := gs.GetByID(userID, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.PantryItemID != pantry.ID {
		t.Fatalf("got = %+v, want pantry ref %d", got, pantry.ID)
	}

	got.Name = "Skim Milk"
	got.NameKey = "skim milk"
	got.Checked = true
	updated, err := gs.Update(got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Skim Milk" || updated.NameKey != "skim milk" {
		t.Errorf("updated name/key = %q/%q", updated.Name, updated.NameKey)
	}
	if !updated.Checked {
		t.Error("expected checked after update")
	}
	if updated.PantryItemID != pantry.ID {
		t.Errorf("pantry ref changed to %d, want %d", updated.PantryItemID, pantry.ID)
	}

	if err := gs.Delete(userID, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = gs.GetByID(userID, item.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted item")
	}
}

func TestGroceryGetByIDWrongUser(t *testing.T) {
	gs, ps, userID := setupGroceryTestDB(t)
	pantry := groceryPantryItem(t, ps, userID, "Eggs", "eggs")

	item, err := gs.Insert(&model.GroceryItem{
		UserID: userID, PantryItemID: pantry.ID, Name: "Eggs", NameKey: "eggs", Quantity: 1, Unit: "piece",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := gs.GetByID(userID+1, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil when fetched under another user")
	}
}

func TestGroceryListOrdering(t *testing.T) {
	gs, ps, userID := setupGroceryTestDB(t)
	pantry := groceryPantryItem(t, ps, userID, "Bread", "bread")

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := gs.Insert(&model.GroceryItem{
			UserID: userID, PantryItemID: pantry.ID, Name: name, NameKey: "bread", Quantity: 1, Unit: "piece",
		})
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	items, err := gs.ListByUser(userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// newest first
	if items[0].Name != "Third" || items[2].Name != "First" {
		t.Errorf("order = [%s %s %s], want newest first", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestGroceryNullableFields(t *testing.T) {
	gs, ps, userID := setupGroceryTestDB(t)
	pantry := groceryPantryItem(t, ps, userID, "Salt", "salt")

	item, err := gs.Insert(&model.GroceryItem{
		UserID: userID, PantryItemID: pantry.ID, Name: "Salt", NameKey: "salt", Quantity: 1, Unit: "piece",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if item.Brand != nil || item.Label != nil || item.ExpirationDate != nil {
		t.Errorf("expected nil optionals, got brand=%v label=%v exp=%v", item.Brand, item.Label, item.ExpirationDate)
	}
}
