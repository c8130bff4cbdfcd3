package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/larderhq/larder/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

const groceryCols = `id, user_id, pantry_item_id, name, name_key, quantity, unit, brand, label, expiration_date, checked, created_at, updated_at`

func scanGroceryItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var g model.GroceryItem
	var brand, label sql.NullString
	var expiration sql.NullTime
	var checked int

	err := scanner.Scan(
		&g.ID, &g.UserID, &g.PantryItemID, &g.Name, &g.NameKey,
		&g.Quantity, &g.Unit, &brand, &label, &expiration,
		&checked, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Checked = checked != 0
	if brand.Valid {
		g.Brand = &brand.String
	}
	if label.Valid {
		g.Label = &label.String
	}
	if expiration.Valid {
		g.ExpirationDate = &expiration.Time
	}
	return &g, nil
}

func (s *GroceryStore) GetByID(userID, id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+groceryCols+` FROM grocery_items WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	g, err := scanGroceryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery item: %w", err)
	}
	return g, nil
}

func (s *GroceryStore) Insert(item *model.GroceryItem) (*model.GroceryItem, error) {
	var expiration any
	if item.ExpirationDate != nil {
		expiration = item.ExpirationDate.UTC()
	}

	result, err := s.db.Exec(
		`INSERT INTO grocery_items (user_id, pantry_item_id, name, name_key, quantity, unit, brand, label, expiration_date, checked)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.PantryItemID, item.Name, item.NameKey, item.Quantity, item.Unit,
		nullStr(item.Brand), nullStr(item.Label), expiration, boolInt(item.Checked),
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(item.UserID, id)
}

// Update writes every mutable column from the given item. Partial-update
// semantics live in the ledger; by the time a row reaches the store it is
// fully resolved.
func (s *GroceryStore) Update(item *model.GroceryItem) (*model.GroceryItem, error) {
	var expiration any
	if item.ExpirationDate != nil {
		expiration = item.ExpirationDate.UTC()
	}

	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, name_key = ?, quantity = ?, unit = ?, brand = ?, label = ?, expiration_date = ?, checked = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		item.Name, item.NameKey, item.Quantity, item.Unit,
		nullStr(item.Brand), nullStr(item.Label), expiration, boolInt(item.Checked),
		time.Now().UTC(), item.ID, item.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update grocery item: %w", err)
	}
	return s.GetByID(item.UserID, item.ID)
}

func (s *GroceryStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete grocery item: %w", err)
	}
	return nil
}

func (s *GroceryStore) ListByUser(userID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryCols+` FROM grocery_items WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		g, err := scanGroceryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery item: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
