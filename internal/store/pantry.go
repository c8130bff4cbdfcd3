package store

import (
	"database/sql"
	"fmt"

	"github.com/larderhq/larder/internal/model"
)

// PantryStore persists canonical pantry identities. The schema enforces at
// most one row per (user, name key, brand) triple; the brand column stores
// '' for "no brand" so the unique index covers the unbranded lane too
// (SQLite treats NULLs as distinct in unique indexes).
type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

const pantryCols = `id, user_id, name, name_key, brand, label, default_unit, created_at, updated_at`

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var p model.PantryItem
	var brand string
	var label, defaultUnit sql.NullString

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Name, &p.NameKey, &brand,
		&label, &defaultUnit, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Brand = strPtr(brand)
	if label.Valid {
		p.Label = &label.String
	}
	if defaultUnit.Valid {
		p.DefaultUnit = &defaultUnit.String
	}
	return &p, nil
}

// GetByKey looks up the identity for (user, nameKey, brand). brand is the
// trimmed display brand, or "" for no brand.
func (s *PantryStore) GetByKey(userID int64, nameKey, brand string) (*model.PantryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+pantryCols+` FROM pantry_items WHERE user_id = ? AND name_key = ? AND brand = ?`,
		userID, nameKey, brand,
	)
	p, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return p, nil
}

func (s *PantryStore) GetByID(userID, id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+pantryCols+` FROM pantry_items WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	p, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return p, nil
}

// Insert creates a new identity. A concurrent insert of the same triple
// surfaces as apperror.ErrConflict for the resolver to absorb.
func (s *PantryStore) Insert(item *model.PantryItem) (*model.PantryItem, error) {
	brand := ""
	if item.Brand != nil {
		brand = *item.Brand
	}

	result, err := s.db.Exec(
		`INSERT INTO pantry_items (user_id, name, name_key, brand, label, default_unit) VALUES (?, ?, ?, ?, ?, ?)`,
		item.UserID, item.Name, item.NameKey, brand, nullStr(item.Label), nullStr(item.DefaultUnit),
	)
	if err != nil {
		return nil, conflictErr("insert pantry item", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(item.UserID, id)
}

func (s *PantryStore) ListByUser(userID int64) ([]model.PantryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+pantryCols+` FROM pantry_items WHERE user_id = ? ORDER BY name_key ASC, brand ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		p, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
