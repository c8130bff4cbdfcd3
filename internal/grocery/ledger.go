// Package grocery implements the shopping-list ledger. Items are created
// through pantry resolution, edited with partial updates, and toggled
// checked/unchecked; the checked state drives the fridge synchronizer.
package grocery

import (
	"fmt"
	"strings"
	"time"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/namekey"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/store"
)

const (
	defaultQuantity = 1
	defaultUnit     = "piece"
)

// Syncer is the fridge-side half of a toggle. Apply receives the grocery
// item after its new checked state is persisted.
type Syncer interface {
	Apply(item *model.GroceryItem) error
}

type Ledger struct {
	store    *store.GroceryStore
	resolver *pantry.Resolver
	syncer   Syncer
}

func NewLedger(s *store.GroceryStore, r *pantry.Resolver, syncer Syncer) *Ledger {
	return &Ledger{store: s, resolver: r, syncer: syncer}
}

type CreateInput struct {
	Name           string
	Quantity       *float64
	Unit           string
	Brand          *string
	Label          *string
	ExpirationDate *time.Time
}

// Patch is a partial update. Pointer fields distinguish omitted from set;
// Optional fields additionally distinguish set-to-null for columns that can
// be cleared.
type Patch struct {
	Name           *string
	Quantity       *float64
	Unit           *string
	Brand          model.Optional[string]
	Label          model.Optional[string]
	ExpirationDate model.Optional[time.Time]
	Checked        *bool
}

// Create resolves the item's pantry identity and inserts an unchecked
// entry. Quantity defaults to 1 and unit to "piece"; an explicit
// non-positive quantity is rejected.
func (l *Ledger) Create(userID int64, in CreateInput) (*model.GroceryItem, error) {
	quantity := float64(defaultQuantity)
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, apperror.Invalid("quantity must be positive")
		}
		quantity = *in.Quantity
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	identity, err := l.resolver.Resolve(userID, in.Name, pantry.Hints{
		Brand:       in.Brand,
		Label:       in.Label,
		DefaultUnit: &unit,
	})
	if err != nil {
		return nil, err
	}

	brand := in.Brand
	if brand == nil {
		brand = identity.Brand
	}

	return l.store.Insert(&model.GroceryItem{
		UserID:         userID,
		PantryItemID:   identity.ID,
		Name:           strings.TrimSpace(in.Name),
		NameKey:        identity.NameKey,
		Quantity:       quantity,
		Unit:           unit,
		Brand:          brand,
		Label:          in.Label,
		ExpirationDate: in.ExpirationDate,
	})
}

// CreateResolved inserts an entry against an already-resolved pantry
// identity, bypassing resolution. Used when recipe ingredients carry their
// pantry reference.
func (l *Ledger) CreateResolved(userID int64, identity *model.PantryItem, in CreateInput) (*model.GroceryItem, error) {
	quantity := float64(defaultQuantity)
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, apperror.Invalid("quantity must be positive")
		}
		quantity = *in.Quantity
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = defaultUnit
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = identity.Name
	}

	brand := in.Brand
	if brand == nil {
		brand = identity.Brand
	}

	return l.store.Insert(&model.GroceryItem{
		UserID:         userID,
		PantryItemID:   identity.ID,
		Name:           name,
		NameKey:        identity.NameKey,
		Quantity:       quantity,
		Unit:           unit,
		Brand:          brand,
		Label:          in.Label,
		ExpirationDate: in.ExpirationDate,
	})
}

func (l *Ledger) Get(userID, id int64) (*model.GroceryItem, error) {
	item, err := l.store.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("grocery item %d: %w", id, apperror.ErrNotFound)
	}
	return item, nil
}

// Update applies a partial update. A rename recomputes the stored name key
// but never re-resolves the pantry reference; the identity from creation
// time sticks. The synchronizer is not consulted here, only on Toggle.
func (l *Ledger) Update(userID, id int64, patch Patch) (*model.GroceryItem, error) {
	item, err := l.Get(userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		key := namekey.Normalize(*patch.Name)
		if key == "" {
			return nil, apperror.Invalid("name must not be empty")
		}
		item.Name = strings.TrimSpace(*patch.Name)
		item.NameKey = key
	}
	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, apperror.Invalid("quantity must be positive")
		}
		item.Quantity = *patch.Quantity
	}
	if patch.Unit != nil {
		unit := strings.TrimSpace(*patch.Unit)
		if unit == "" {
			return nil, apperror.Invalid("unit must not be empty")
		}
		item.Unit = unit
	}
	if patch.Brand.Set {
		item.Brand = patch.Brand.Value
	}
	if patch.Label.Set {
		item.Label = patch.Label.Value
	}
	if patch.ExpirationDate.Set {
		item.ExpirationDate = patch.ExpirationDate.Value
	}
	if patch.Checked != nil {
		item.Checked = *patch.Checked
	}

	return l.store.Update(item)
}

// Delete removes the item. Fridge items created from it survive; their
// back-link is cleared by the schema.
func (l *Ledger) Delete(userID, id int64) error {
	if _, err := l.Get(userID, id); err != nil {
		return err
	}
	return l.store.Delete(userID, id)
}

// Toggle flips the checked flag, persists it, then hands the item to the
// fridge synchronizer. When the fridge side fails the flip still stands:
// the updated item is returned together with a *apperror.SyncError.
func (l *Ledger) Toggle(userID, id int64) (*model.GroceryItem, error) {
	item, err := l.Get(userID, id)
	if err != nil {
		return nil, err
	}

	item.Checked = !item.Checked
	item, err = l.store.Update(item)
	if err != nil {
		return nil, err
	}

	if err := l.syncer.Apply(item); err != nil {
		return item, err
	}
	return item, nil
}

func (l *Ledger) List(userID int64) ([]model.GroceryItem, error) {
	return l.store.ListByUser(userID)
}
