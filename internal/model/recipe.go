package model

import "time"

// RecipeIngredient is embedded in a recipe. PantryItemID and NameKey are
// filled in at recipe-save time via the pantry resolver; availability
// against the ledgers is computed on read, never stored.
type RecipeIngredient struct {
	ID           int64    `json:"id"`
	RecipeID     int64    `json:"-"`
	Position     int      `json:"-"`
	Name         string   `json:"name"`
	NameKey      string   `json:"name_key,omitempty"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	Label        *string  `json:"label"`
	Note         *string  `json:"note"`
	Brand        *string  `json:"brand"`
	PantryItemID *int64   `json:"pantry_item_id"`
}

type Recipe struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	PhotoURL        *string            `json:"photo_url"`
	PrepTimeMinutes *int               `json:"prep_time_minutes"`
	CookTimeMinutes *int               `json:"cook_time_minutes"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	Steps           []string           `json:"steps"`
	Tags            []string           `json:"tags"`
	SourceURL       *string            `json:"source_url"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
