package pantry

import (
	"errors"
	"sync"
	"testing"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/database"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/store"
)

func setupResolver(t *testing.T) (*Resolver, int64) {
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
	return NewResolver(store.NewPantryStore(db)), user.ID
}

func strp(s string) *string { return &s }

func TestResolveCreatesIdentity(t *testing.T) {
	r, userID := setupResolver(t)

	item, err := r.Resolve(userID, "  Whole  MILK ", Hints{Brand: strp(" Tillamook "), DefaultUnit: strp("liter")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.NameKey != "whole milk" {
		t.Errorf("name key = %q, want %q", item.NameKey, "whole milk")
	}
	if item.Brand == nil || *item.Brand != "Tillamook" {
		t.Errorf("brand = %v, want Tillamook (trimmed)", item.Brand)
	}
	if item.DefaultUnit == nil || *item.DefaultUnit != "liter" {
		t.Errorf("default unit = %v, want liter", item.DefaultUnit)
	}
}

func TestResolveReturnsExistingUnchanged(t *testing.T) {
	r, userID := setupResolver(t)

	first, err := r.Resolve(userID, "Whole Milk", Hints{Label: strp("dairy")})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Different casing, spacing, and hints resolve to the same identity.
	second, err := r.Resolve(userID, "whole   milk", Hints{Label: strp("beverages"), DefaultUnit: strp("gallon")})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second resolve id = %d, want %d", second.ID, first.ID)
	}
	if second.Label == nil || *second.Label != "dairy" {
		t.Errorf("hints mutated existing identity: label = %v", second.Label)
	}
	if second.DefaultUnit != nil {
		t.Errorf("hints mutated existing identity: default unit = %v", *second.DefaultUnit)
	}
}

func TestResolveBrandSeparatesIdentities(t *testing.T) {
	r, userID := setupResolver(t)

	unbranded, err := r.Resolve(userID, "Butter", Hints{})
	if err != nil {
		t.Fatalf("resolve unbranded: %v", err)
	}
	branded, err := r.Resolve(userID, "Butter", Hints{Brand: strp("Kerrygold")})
	if err != nil {
		t.Fatalf("resolve branded: %v", err)
	}
	if unbranded.ID == branded.ID {
		t.Error("branded and unbranded should be separate identities")
	}

	// Blank brand collapses to the unbranded lane.
	blank, err := r.Resolve(userID, "Butter", Hints{Brand: strp("   ")})
	if err != nil {
		t.Fatalf("resolve blank brand: %v", err)
	}
	if blank.ID != unbranded.ID {
		t.Errorf("blank brand id = %d, want unbranded %d", blank.ID, unbranded.ID)
	}
}

func TestResolveBlankHintsUnset(t *testing.T) {
	r, userID := setupResolver(t)

	item, err := r.Resolve(userID, "Eggs", Hints{Label: strp(""), DefaultUnit: strp("  \t")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.Label != nil {
		t.Errorf("blank label stored as %q, want unset", *item.Label)
	}
	if item.DefaultUnit != nil {
		t.Errorf("blank default unit stored as %q, want unset", *item.DefaultUnit)
	}

	padded, err := r.Resolve(userID, "Flour", Hints{Label: strp(" baking "), DefaultUnit: strp(" kg ")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if padded.Label == nil || *padded.Label != "baking" {
		t.Errorf("label = %v, want baking (trimmed)", padded.Label)
	}
	if padded.DefaultUnit == nil || *padded.DefaultUnit != "kg" {
		t.Errorf("default unit = %v, want kg (trimmed)", padded.DefaultUnit)
	}
}

func TestResolveEmptyNameRejected(t *testing.T) {
	r, userID := setupResolver(t)

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := r.Resolve(userID, raw, Hints{})
		if !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidInput", raw, err)
		}
	}
}

func TestResolveConcurrentSameTriple(t *testing.T) {
	r, userID := setupResolver(t)

	const n = 10
	ids := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item, err := r.Resolve(userID, "Oat Milk", Hints{Brand: strp("Oatly")})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = item.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("divergent identities: ids[0]=%d ids[%d]=%d", ids[0], i, ids[i])
		}
	}
}

// conflictStore forces the insert race path without real concurrency.
type conflictStore struct {
	item     *model.PantryItem
	fetches  int
	inserted bool
}

func (s *conflictStore) GetByKey(userID int64, nameKey, brand string) (*model.PantryItem, error) {
	s.fetches++
	if s.fetches == 1 {
		return nil, nil
	}
	return s.item, nil
}

func (s *conflictStore) Insert(item *model.PantryItem) (*model.PantryItem, error) {
	s.inserted = true
	return nil, apperror.ErrConflict
}

func TestResolveAbsorbsInsertConflict(t *testing.T) {
	winner := &model.PantryItem{ID: 7, NameKey: "oat milk"}
	cs := &conflictStore{item: winner}
	r := NewResolver(cs)

	item, err := r.Resolve(1, "Oat Milk", Hints{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cs.inserted {
		t.Error("expected insert attempt")
	}
	if item.ID != 7 {
		t.Errorf("id = %d, want the concurrent winner's 7", item.ID)
	}
}
