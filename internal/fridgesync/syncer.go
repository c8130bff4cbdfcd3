// Package fridgesync bridges the grocery and fridge ledgers. Checking a
// grocery item materializes it in the fridge; unchecking removes the
// synchronized copy. Both directions are idempotent, so a retried toggle
// converges instead of duplicating or erroring.
package fridgesync

import (
	"errors"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/fridge"
	"github.com/larderhq/larder/internal/model"
)

type Syncer struct {
	fridge *fridge.Ledger
}

func New(f *fridge.Ledger) *Syncer {
	return &Syncer{fridge: f}
}

// Apply reconciles the fridge with a grocery item's persisted checked
// state. Failures are wrapped in *apperror.SyncError so callers can report
// a partial toggle without rolling back the grocery side.
func (s *Syncer) Apply(item *model.GroceryItem) error {
	if item.Checked {
		if err := s.ensure(item); err != nil {
			return &apperror.SyncError{Op: "check", Err: err}
		}
		return nil
	}
	if err := s.remove(item); err != nil {
		return &apperror.SyncError{Op: "uncheck", Err: err}
	}
	return nil
}

// ensure creates the fridge copy unless one already exists for this
// grocery item. A concurrent toggle racing past the existence check loses
// on the link's unique index and is treated as already-synced.
func (s *Syncer) ensure(item *model.GroceryItem) error {
	existing, err := s.fridge.FindByGroceryLink(item.UserID, item.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.fridge.CreateFromGrocery(item)
	if errors.Is(err, apperror.ErrConflict) {
		return nil
	}
	return err
}

// remove deletes the synchronized copy if present. Absence is success:
// the fridge already reflects the unchecked state.
func (s *Syncer) remove(item *model.GroceryItem) error {
	_, err := s.fridge.DeleteLinkedTo(item.UserID, item.ID)
	return err
}
