// Package availability computes the per-ingredient recipe availability
// view. It is a pure function over two already-fetched ledger snapshots;
// callers load the fridge and grocery lists once and reuse them across all
// recipes in a request.
package availability

import (
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/namekey"
)

type Status string

const (
	StatusFridgeAndGrocery Status = "fridge-and-grocery"
	StatusFridge           Status = "fridge"
	StatusGrocery          Status = "grocery"
	StatusMissing          Status = "missing"
)

// AnnotatedIngredient is a recipe ingredient plus its computed presence in
// the user's ledgers. Matched entry ids are attached so the UI can link to
// them.
type AnnotatedIngredient struct {
	model.RecipeIngredient
	Status        Status `json:"status"`
	FridgeItemID  *int64 `json:"fridge_item_id,omitempty"`
	GroceryItemID *int64 `json:"grocery_item_id,omitempty"`
}

// Annotate computes availability for each ingredient in order.
//
// A pantry reference is the primary match: when the ingredient carries one
// and it matches an entry in either ledger, those matches alone decide the
// status. The name-key fallback runs only when no reference is present or
// the reference matched nothing; entries saved without a stored key are
// normalized on the fly.
func Annotate(ingredients []model.RecipeIngredient, fridgeItems []model.FridgeItem, groceryItems []model.GroceryItem) []AnnotatedIngredient {
	out := make([]AnnotatedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, annotateOne(ing, fridgeItems, groceryItems))
	}
	return out
}

func annotateOne(ing model.RecipeIngredient, fridgeItems []model.FridgeItem, groceryItems []model.GroceryItem) AnnotatedIngredient {
	a := AnnotatedIngredient{RecipeIngredient: ing, Status: StatusMissing}

	key := ing.NameKey
	if key == "" {
		key = namekey.Normalize(ing.Name)
	}
	if key == "" && ing.PantryItemID == nil {
		return a
	}

	var fridgeID, groceryID *int64

	if ing.PantryItemID != nil {
		ref := *ing.PantryItemID
		for i := range fridgeItems {
			if fridgeItems[i].PantryItemID == ref {
				fridgeID = &fridgeItems[i].ID
				break
			}
		}
		for i := range groceryItems {
			if groceryItems[i].PantryItemID == ref {
				groceryID = &groceryItems[i].ID
				break
			}
		}
	}

	// Fall back to the name key only when the reference decided nothing.
	if fridgeID == nil && groceryID == nil && key != "" {
		for i := range fridgeItems {
			if fridgeKey(&fridgeItems[i]) == key {
				fridgeID = &fridgeItems[i].ID
				break
			}
		}
		for i := range groceryItems {
			if groceryKey(&groceryItems[i]) == key {
				groceryID = &groceryItems[i].ID
				break
			}
		}
	}

	a.FridgeItemID = fridgeID
	a.GroceryItemID = groceryID
	switch {
	case fridgeID != nil && groceryID != nil:
		a.Status = StatusFridgeAndGrocery
	case fridgeID != nil:
		a.Status = StatusFridge
	case groceryID != nil:
		a.Status = StatusGrocery
	}
	return a
}

func fridgeKey(item *model.FridgeItem) string {
	if item.NameKey != "" {
		return item.NameKey
	}
	return namekey.Normalize(item.Name)
}

func groceryKey(item *model.GroceryItem) string {
	if item.NameKey != "" {
		return item.NameKey
	}
	return namekey.Normalize(item.Name)
}
