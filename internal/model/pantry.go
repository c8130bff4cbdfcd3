package model

import "time"

// PantryItem is the canonical product identity for one user. Grocery items,
// fridge items, and recipe ingredients all reference it. At most one exists
// per (user, name key, brand) triple; identity fields never change after
// creation.
type PantryItem struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	NameKey     string    `json:"name_key"`
	Brand       *string   `json:"brand"`
	Label       *string   `json:"label"`
	DefaultUnit *string   `json:"default_unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BrandKey returns the brand as it participates in the uniqueness triple:
// the empty string when no brand is set.
func (p *PantryItem) BrandKey() string {
	if p.Brand == nil {
		return ""
	}
	return *p.Brand
}
