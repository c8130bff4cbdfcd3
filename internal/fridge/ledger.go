// Package fridge implements the fridge-stock ledger. Items arrive two
// ways: added directly by the user, or copied in from a checked grocery
// item by the synchronizer.
package fridge

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

type Ledger struct {
	store    *store.FridgeStore
	resolver *pantry.Resolver
}

func NewLedger(s *store.FridgeStore, r *pantry.Resolver) *Ledger {
	return &Ledger{store: s, resolver: r}
}

type CreateInput struct {
	Name           string
	Quantity       *float64
	Unit           string
	Brand          *string
	Label          *string
	ExpirationDate *time.Time
}

type Patch struct {
	Name           *string
	Quantity       *float64
	Unit           *string
	Brand          model.Optional[string]
	Label          model.Optional[string]
	ExpirationDate model.Optional[time.Time]
}

// Create adds an item directly to the fridge. Direct additions are marked
// added_manually so the synchronizer never removes them on an uncheck.
func (l *Ledger) Create(userID int64, in CreateInput) (*model.FridgeItem, error) {
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

	return l.store.Insert(&model.FridgeItem{
		UserID:         userID,
		PantryItemID:   identity.ID,
		Name:           strings.TrimSpace(in.Name),
		NameKey:        identity.NameKey,
		Quantity:       quantity,
		Unit:           unit,
		Brand:          brand,
		Label:          in.Label,
		ExpirationDate: in.ExpirationDate,
		AddedManually:  true,
	})
}

// CreateFromGrocery copies a checked grocery item into the fridge. The copy
// keeps the grocery item's pantry reference and descriptive fields verbatim
// and records the back-link for the synchronizer's idempotency check.
func (l *Ledger) CreateFromGrocery(item *model.GroceryItem) (*model.FridgeItem, error) {
	return l.store.Insert(&model.FridgeItem{
		UserID:               item.UserID,
		PantryItemID:         item.PantryItemID,
		Name:                 item.Name,
		NameKey:              item.NameKey,
		Quantity:             item.Quantity,
		Unit:                 item.Unit,
		Brand:                item.Brand,
		Label:                item.Label,
		ExpirationDate:       item.ExpirationDate,
		AddedFromGroceryItem: &item.ID,
	})
}

func (l *Ledger) Get(userID, id int64) (*model.FridgeItem, error) {
	item, err := l.store.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("fridge item %d: %w", id, apperror.ErrNotFound)
	}
	return item, nil
}

// Update applies a partial update. The pantry reference, the grocery
// back-link, and the added_manually flag are immutable.
func (l *Ledger) Update(userID, id int64, patch Patch) (*model.FridgeItem, error) {
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

	return l.store.Update(item)
}

// Delete removes the item. The originating grocery item, if any, is left
// untouched.
func (l *Ledger) Delete(userID, id int64) error {
	if _, err := l.Get(userID, id); err != nil {
		return err
	}
	return l.store.Delete(userID, id)
}

// FindByGroceryLink returns the fridge item synchronized from the given
// grocery item, or nil.
func (l *Ledger) FindByGroceryLink(userID, groceryID int64) (*model.FridgeItem, error) {
	return l.store.FindByGroceryLink(userID, groceryID)
}

// DeleteLinkedTo removes the sync-created item for a grocery item, if one
// exists, and returns it. Manually added items are never candidates.
func (l *Ledger) DeleteLinkedTo(userID, groceryID int64) (*model.FridgeItem, error) {
	return l.store.DeleteLinkedTo(userID, groceryID)
}

func (l *Ledger) List(userID int64) ([]model.FridgeItem, error) {
	return l.store.ListByUser(userID)
}

// ListExpiringBefore returns items expiring on or before the cutoff, for
// the push notifier.
func (l *Ledger) ListExpiringBefore(userID int64, cutoff time.Time) ([]model.FridgeItem, error) {
	return l.store.ListExpiringBefore(userID, cutoff)
}
