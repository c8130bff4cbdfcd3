package model

import "time"

// FridgeItem is one fridge-stock entry. AddedFromGroceryItem links back to
// the grocery item that was checked off to create it; nil for items added
// directly. At most one fridge item exists per live grocery link.
type FridgeItem struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	PantryItemID         int64      `json:"pantry_item_id"`
	Name                 string     `json:"name"`
	NameKey              string     `json:"name_key"`
	Quantity             float64    `json:"quantity"`
	Unit                 string     `json:"unit"`
	Brand                *string    `json:"brand"`
	Label                *string    `json:"label"`
	ExpirationDate       *time.Time `json:"expiration_date"`
	AddedFromGroceryItem *int64     `json:"added_from_grocery_item"`
	AddedManually        bool       `json:"added_manually"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
