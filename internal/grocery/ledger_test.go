package grocery

import (
	"errors"
	"testing"
	"time"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/database"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/store"
)

// recordingSyncer captures toggles so tests can assert the ledger hands
// over the persisted item.
type recordingSyncer struct {
	applied []model.GroceryItem
	err     error
}

func (s *recordingSyncer) Apply(item *model.GroceryItem) error {
	s.applied = append(s.applied, *item)
	return s.err
}

func setupLedger(t *testing.T) (*Ledger, *recordingSyncer, *store.PantryStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := store.NewUserStore(db).Create("test@example.com", "Test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	pantryStore := store.NewPantryStore(db)
	syncer := &recordingSyncer{}
	ledger := NewLedger(store.NewGroceryStore(db), pantry.NewResolver(pantryStore), syncer)
	return ledger, syncer, pantryStore, user.ID
}

func strp(s string) *string { return &s }

func floatp(v float64) *float64 { return &v }

func TestCreateResolvesAndDefaults(t *testing.T) {
	ledger, _, pantryStore, userID := setupLedger(t)

	item, err := ledger.Create(userID, CreateInput{Name: "  Whole  Milk "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Name != "Whole  Milk" {
		t.Errorf("name = %q, want trimmed original", item.Name)
	}
	if item.NameKey != "whole milk" {
		t.Errorf("name key = %q, want %q", item.NameKey, "whole milk")
	}
	if item.Quantity != 1 || item.Unit != "piece" {
		t.Errorf("defaults = %v %q, want 1 piece", item.Quantity, item.Unit)
	}
	if item.Checked {
		t.Error("expected unchecked on create")
	}

	identity, err := pantryStore.GetByID(userID, item.PantryItemID)
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity == nil || identity.NameKey != "whole milk" {
		t.Errorf("identity = %v", identity)
	}
}

func TestCreateReusesIdentity(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	first, err := ledger.Create(userID, CreateInput{Name: "Eggs"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := ledger.Create(userID, CreateInput{Name: "EGGS  "})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct ledger entries")
	}
	if first.PantryItemID != second.PantryItemID {
		t.Errorf("pantry refs differ: %d vs %d", first.PantryItemID, second.PantryItemID)
	}
}

func TestCreateInvalidInput(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	if _, err := ledger.Create(userID, CreateInput{Name: "   "}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("blank name error = %v, want ErrInvalidInput", err)
	}
	if _, err := ledger.Create(userID, CreateInput{Name: "Milk", Quantity: floatp(0)}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("zero quantity error = %v, want ErrInvalidInput", err)
	}
	if _, err := ledger.Create(userID, CreateInput{Name: "Milk", Quantity: floatp(-2)}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("negative quantity error = %v, want ErrInvalidInput", err)
	}
}

func TestCreateBrandFallsBackToIdentity(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	branded, err := ledger.Create(userID, CreateInput{Name: "Butter", Brand: strp("Kerrygold")})
	if err != nil {
		t.Fatalf("create branded: %v", err)
	}
	if branded.Brand == nil || *branded.Brand != "Kerrygold" {
		t.Errorf("brand = %v, want Kerrygold", branded.Brand)
	}

	// No brand given and the unbranded identity has none either.
	plain, err := ledger.Create(userID, CreateInput{Name: "Butter"})
	if err != nil {
		t.Fatalf("create plain: %v", err)
	}
	if plain.Brand != nil {
		t.Errorf("brand = %v, want nil", *plain.Brand)
	}
	if plain.PantryItemID == branded.PantryItemID {
		t.Error("branded and unbranded should resolve to different identities")
	}
}

func TestUpdateRenameKeepsPantryRef(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	item, err := ledger.Create(userID, CreateInput{Name: "Whole Milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := ledger.Update(userID, item.ID, Patch{Name: strp("Oat Milk")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Oat Milk" || updated.NameKey != "oat milk" {
		t.Errorf("name/key = %q/%q", updated.Name, updated.NameKey)
	}
	if updated.PantryItemID != item.PantryItemID {
		t.Errorf("pantry ref changed: %d, want %d", updated.PantryItemID, item.PantryItemID)
	}
}

func TestUpdateOmittedVsNull(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	exp := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	item, err := ledger.Create(userID, CreateInput{
		Name: "Yogurt", Label: strp("dairy"), ExpirationDate: &exp,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Omitted fields are untouched.
	updated, err := ledger.Update(userID, item.ID, Patch{Quantity: floatp(3)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Label == nil || *updated.Label != "dairy" {
		t.Errorf("label = %v, want dairy untouched", updated.Label)
	}
	if updated.ExpirationDate == nil {
		t.Error("expiration should be untouched")
	}

	// Explicit null clears.
	updated, err = ledger.Update(userID, item.ID, Patch{
		Label:          model.Null[string](),
		ExpirationDate: model.Null[time.Time](),
	})
	if err != nil {
		t.Fatalf("update with nulls: %v", err)
	}
	if updated.Label != nil {
		t.Errorf("label = %v, want cleared", *updated.Label)
	}
	if updated.ExpirationDate != nil {
		t.Errorf("expiration = %v, want cleared", *updated.ExpirationDate)
	}
}

func TestUpdateNotFound(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	_, err := ledger.Update(userID, 9999, Patch{Quantity: floatp(2)})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestToggleRunsSyncer(t *testing.T) {
	ledger, syncer, _, userID := setupLedger(t)

	item, err := ledger.Create(userID, CreateInput{Name: "Milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := ledger.Toggle(userID, item.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Checked {
		t.Error("expected checked after toggle")
	}
	if len(syncer.applied) != 1 || !syncer.applied[0].Checked {
		t.Fatalf("syncer.applied = %+v, want one checked item", syncer.applied)
	}

	toggled, err = ledger.Toggle(userID, item.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if toggled.Checked {
		t.Error("expected unchecked after second toggle")
	}
	if len(syncer.applied) != 2 || syncer.applied[1].Checked {
		t.Fatalf("syncer.applied = %+v, want second unchecked", syncer.applied)
	}
}

func TestTogglePartialFailure(t *testing.T) {
	ledger, syncer, _, userID := setupLedger(t)
	syncer.err = &apperror.SyncError{Op: "check", Err: errors.New("fridge down")}

	item, err := ledger.Create(userID, CreateInput{Name: "Milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := ledger.Toggle(userID, item.ID)
	var se *apperror.SyncError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SyncError", err)
	}
	if toggled == nil || !toggled.Checked {
		t.Fatal("checked flip must stand despite sync failure")
	}

	// The persisted state reflects the flip too.
	got, err := ledger.Get(userID, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Checked {
		t.Error("persisted item should be checked")
	}
}

func TestDeleteNotFound(t *testing.T) {
	ledger, _, _, userID := setupLedger(t)

	if err := ledger.Delete(userID, 9999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
