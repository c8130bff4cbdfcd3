package model

import "time"

// GroceryItem is one shopping-list entry. It carries a denormalized copy of
// the pantry name key from creation time; the pantry reference itself never
// changes, even when the item is renamed.
type GroceryItem struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	PantryItemID   int64      `json:"pantry_item_id"`
	Name           string     `json:"name"`
	NameKey        string     `json:"name_key"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	Brand          *string    `json:"brand"`
	Label          *string    `json:"label"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Checked        bool       `json:"checked"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
