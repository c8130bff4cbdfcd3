// Package pantry implements find-or-create resolution of canonical product
// identities. Every grocery item, fridge item, and recipe ingredient is
// resolved through here so that "Whole Milk" and " whole  MILK " converge
// on the same pantry row.
package pantry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/namekey"
)

// Store is the slice of the pantry store the resolver needs.
type Store interface {
	GetByKey(userID int64, nameKey, brand string) (*model.PantryItem, error)
	Insert(item *model.PantryItem) (*model.PantryItem, error)
}

// Hints carry optional descriptive fields applied only when the resolution
// creates a new identity. An existing identity is returned unchanged; hints
// never mutate it.
type Hints struct {
	Brand       *string
	Label       *string
	DefaultUnit *string
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve finds or creates the identity for (user, name, brand). The name
// is normalized to its key; the brand is trimmed, with blank treated as no
// brand. Concurrent resolutions of the same triple all converge on one row:
// a lost insert race is absorbed by re-fetching the winner.
func (r *Resolver) Resolve(userID int64, rawName string, hints Hints) (*model.PantryItem, error) {
	key := namekey.Normalize(rawName)
	if key == "" {
		return nil, apperror.Invalid("name must not be empty")
	}

	brand := ""
	if hints.Brand != nil {
		brand = strings.TrimSpace(*hints.Brand)
	}

	existing, err := r.store.GetByKey(userID, key, brand)
	if err != nil {
		return nil, fmt.Errorf("resolve pantry item: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	item := &model.PantryItem{
		UserID:      userID,
		Name:        strings.TrimSpace(rawName),
		NameKey:     key,
		Label:       trimHint(hints.Label),
		DefaultUnit: trimHint(hints.DefaultUnit),
	}
	if brand != "" {
		item.Brand = &brand
	}

	created, err := r.store.Insert(item)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, fmt.Errorf("create pantry item: %w", err)
	}

	// Lost the race: a concurrent resolve inserted the triple first.
	winner, err := r.store.GetByKey(userID, key, brand)
	if err != nil {
		return nil, fmt.Errorf("refetch pantry item: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("refetch pantry item: row vanished after conflict")
	}
	return winner, nil
}

// trimHint trims an optional identity hint, treating blank as unset.
func trimHint(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
