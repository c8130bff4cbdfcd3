package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/larderhq/larder/internal/model"
)

type FridgeStore struct {
	db *sql.DB
}

func NewFridgeStore(db *sql.DB) *FridgeStore {
	return &FridgeStore{db: db}
}

const fridgeCols = `id, user_id, pantry_item_id, name, name_key, quantity, unit, brand, label, expiration_date, added_from_grocery_item, added_manually, created_at, updated_at`

func scanFridgeItem(scanner interface{ Scan(...any) error }) (*model.FridgeItem, error) {
	var f model.FridgeItem
	var brand, label sql.NullString
	var expiration sql.NullTime
	var groceryLink sql.NullInt64
	var addedManually int

	err := scanner.Scan(
		&f.ID, &f.UserID, &f.PantryItemID, &f.Name, &f.NameKey,
		&f.Quantity, &f.Unit, &brand, &label, &expiration,
		&groceryLink, &addedManually, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.AddedManually = addedManually != 0
	if brand.Valid {
		f.Brand = &brand.String
	}
	if label.Valid {
		f.Label = &label.String
	}
	if expiration.Valid {
		f.ExpirationDate = &expiration.Time
	}
	if groceryLink.Valid {
		f.AddedFromGroceryItem = &groceryLink.Int64
	}
	return &f, nil
}

func (s *FridgeStore) GetByID(userID, id int64) (*model.FridgeItem, error) {
	row := s.db.QueryRow(
		`SELECT `+fridgeCols+` FROM fridge_items WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	f, err := scanFridgeItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fridge item: %w", err)
	}
	return f, nil
}

func (s *FridgeStore) Insert(item *model.FridgeItem) (*model.FridgeItem, error) {
	var expiration any
	if item.ExpirationDate != nil {
		expiration = item.ExpirationDate.UTC()
	}
	var groceryLink any
	if item.AddedFromGroceryItem != nil {
		groceryLink = *item.AddedFromGroceryItem
	}

	result, err := s.db.Exec(
		`INSERT INTO fridge_items (user_id, pantry_item_id, name, name_key, quantity, unit, brand, label, expiration_date, added_from_grocery_item, added_manually)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.PantryItemID, item.Name, item.NameKey, item.Quantity, item.Unit,
		nullStr(item.Brand), nullStr(item.Label), expiration, groceryLink, boolInt(item.AddedManually),
	)
	if err != nil {
		return nil, conflictErr("insert fridge item", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(item.UserID, id)
}

func (s *FridgeStore) Update(item *model.FridgeItem) (*model.FridgeItem, error) {
	var expiration any
	if item.ExpirationDate != nil {
		expiration = item.ExpirationDate.UTC()
	}

	_, err := s.db.Exec(
		`UPDATE fridge_items SET name = ?, name_key = ?, quantity = ?, unit = ?, brand = ?, label = ?, expiration_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		item.Name, item.NameKey, item.Quantity, item.Unit,
		nullStr(item.Brand), nullStr(item.Label), expiration,
		time.Now().UTC(), item.ID, item.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update fridge item: %w", err)
	}
	return s.GetByID(item.UserID, item.ID)
}

func (s *FridgeStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM fridge_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete fridge item: %w", err)
	}
	return nil
}

// FindByGroceryLink returns the fridge item synchronized from the given
// grocery item, or nil. Used by the synchronizer for its idempotency check.
func (s *FridgeStore) FindByGroceryLink(userID, groceryID int64) (*model.FridgeItem, error) {
	row := s.db.QueryRow(
		`SELECT `+fridgeCols+` FROM fridge_items WHERE user_id = ? AND added_from_grocery_item = ?`,
		userID, groceryID,
	)
	f, err := scanFridgeItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by grocery link: %w", err)
	}
	return f, nil
}

// DeleteLinkedTo removes the sync-created fridge item linked to a grocery
// item and returns it. Manually added items are never touched, even when
// they share a pantry identity. Returns nil if no linked item exists.
func (s *FridgeStore) DeleteLinkedTo(userID, groceryID int64) (*model.FridgeItem, error) {
	row := s.db.QueryRow(
		`SELECT `+fridgeCols+` FROM fridge_items WHERE user_id = ? AND added_from_grocery_item = ? AND added_manually = 0`,
		userID, groceryID,
	)
	f, err := scanFridgeItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find linked fridge item: %w", err)
	}

	if _, err := s.db.Exec(`DELETE FROM fridge_items WHERE id = ?`, f.ID); err != nil {
		return nil, fmt.Errorf("delete linked fridge item: %w", err)
	}
	return f, nil
}

func (s *FridgeStore) ListByUser(userID int64) ([]model.FridgeItem, error) {
	rows, err := s.db.Query(
		`SELECT `+fridgeCols+` FROM fridge_items WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fridge items: %w", err)
	}
	defer rows.Close()

	var items []model.FridgeItem
	for rows.Next() {
		f, err := scanFridgeItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fridge item: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// ListExpiringBefore returns items whose expiration date falls on or before
// the cutoff. Used by the expiry notifier.
func (s *FridgeStore) ListExpiringBefore(userID int64, cutoff time.Time) ([]model.FridgeItem, error) {
	rows, err := s.db.Query(
		`SELECT `+fridgeCols+` FROM fridge_items WHERE user_id = ? AND expiration_date IS NOT NULL AND expiration_date <= ? ORDER BY expiration_date ASC`,
		userID, cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring fridge items: %w", err)
	}
	defer rows.Close()

	var items []model.FridgeItem
	for rows.Next() {
		f, err := scanFridgeItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fridge item: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}
