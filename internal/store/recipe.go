package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/larderhq/larder/internal/model"
)

// RecipeStore persists recipes and their embedded ingredient lists. Steps
// and tags are stored as JSON arrays; ingredients live in a child table and
// are rewritten wholesale on update.
type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeCols = `id, user_id, title, description, photo_url, prep_time_minutes, cook_time_minutes, steps, tags, source_url, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var photoURL, sourceURL sql.NullString
	var prep, cook sql.NullInt64
	var steps, tags string

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &photoURL,
		&prep, &cook, &steps, &tags, &sourceURL,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if photoURL.Valid {
		r.PhotoURL = &photoURL.String
	}
	if sourceURL.Valid {
		r.SourceURL = &sourceURL.String
	}
	if prep.Valid {
		v := int(prep.Int64)
		r.PrepTimeMinutes = &v
	}
	if cook.Valid {
		v := int(cook.Int64)
		r.CookTimeMinutes = &v
	}
	if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &r, nil
}

const ingredientCols = `id, recipe_id, position, name, name_key, quantity, unit, label, note, brand, pantry_item_id`

func scanIngredient(scanner interface{ Scan(...any) error }) (*model.RecipeIngredient, error) {
	var ing model.RecipeIngredient
	var quantity sql.NullFloat64
	var unit, label, note, brand sql.NullString
	var pantryID sql.NullInt64

	err := scanner.Scan(
		&ing.ID, &ing.RecipeID, &ing.Position, &ing.Name, &ing.NameKey,
		&quantity, &unit, &label, &note, &brand, &pantryID,
	)
	if err != nil {
		return nil, err
	}

	if quantity.Valid {
		ing.Quantity = &quantity.Float64
	}
	if unit.Valid {
		ing.Unit = &unit.String
	}
	if label.Valid {
		ing.Label = &label.String
	}
	if note.Valid {
		ing.Note = &note.String
	}
	if brand.Valid {
		ing.Brand = &brand.String
	}
	if pantryID.Valid {
		ing.PantryItemID = &pantryID.Int64
	}
	return &ing, nil
}

func (s *RecipeStore) Insert(recipe *model.Recipe) (*model.Recipe, error) {
	steps, tags, err := encodeLists(recipe)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO recipes (user_id, title, description, photo_url, prep_time_minutes, cook_time_minutes, steps, tags, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.UserID, recipe.Title, recipe.Description, nullStr(recipe.PhotoURL),
		nullInt(recipe.PrepTimeMinutes), nullInt(recipe.CookTimeMinutes),
		steps, tags, nullStr(recipe.SourceURL),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertIngredients(tx, id, recipe.Ingredients); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(recipe.UserID, id)
}

// Update rewrites the recipe row and replaces its ingredient list.
func (s *RecipeStore) Update(recipe *model.Recipe) (*model.Recipe, error) {
	steps, tags, err := encodeLists(recipe)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE recipes SET title = ?, description = ?, photo_url = ?, prep_time_minutes = ?, cook_time_minutes = ?, steps = ?, tags = ?, source_url = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		recipe.Title, recipe.Description, nullStr(recipe.PhotoURL),
		nullInt(recipe.PrepTimeMinutes), nullInt(recipe.CookTimeMinutes),
		steps, tags, nullStr(recipe.SourceURL),
		time.Now().UTC(), recipe.ID, recipe.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipe.ID); err != nil {
		return nil, fmt.Errorf("clear ingredients: %w", err)
	}
	if err := insertIngredients(tx, recipe.ID, recipe.Ingredients); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(recipe.UserID, recipe.ID)
}

func insertIngredients(tx *sql.Tx, recipeID int64, ingredients []model.RecipeIngredient) error {
	for i, ing := range ingredients {
		var quantity any
		if ing.Quantity != nil {
			quantity = *ing.Quantity
		}
		var pantryID any
		if ing.PantryItemID != nil {
			pantryID = *ing.PantryItemID
		}
		_, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, position, name, name_key, quantity, unit, label, note, brand, pantry_item_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			recipeID, i, ing.Name, ing.NameKey, quantity,
			nullStr(ing.Unit), nullStr(ing.Label), nullStr(ing.Note), nullStr(ing.Brand), pantryID,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}
	return nil
}

func (s *RecipeStore) GetByID(userID, id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(
		`SELECT `+recipeCols+` FROM recipes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	r.Ingredients, err = s.ingredientsFor(id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeStore) ingredientsFor(recipeID int64) ([]model.RecipeIngredient, error) {
	rows, err := s.db.Query(
		`SELECT `+ingredientCols+` FROM recipe_ingredients WHERE recipe_id = ? ORDER BY position ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.RecipeIngredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, *ing)
	}
	return ingredients, rows.Err()
}

// ListByUser returns all of a user's recipes with ingredients attached,
// newest first. Ingredients are fetched in one query to avoid per-recipe
// round trips.
func (s *RecipeStore) ListByUser(userID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	index := map[int64]int{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		r.Ingredients = []model.RecipeIngredient{}
		index[r.ID] = len(recipes)
		recipes = append(recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ingRows, err := s.db.Query(
		`SELECT `+ingredientCols+` FROM recipe_ingredients
		 WHERE recipe_id IN (SELECT id FROM recipes WHERE user_id = ?)
		 ORDER BY recipe_id ASC, position ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		ing, err := scanIngredient(ingRows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		if i, ok := index[ing.RecipeID]; ok {
			recipes[i].Ingredients = append(recipes[i].Ingredients, *ing)
		}
	}
	return recipes, ingRows.Err()
}

func (s *RecipeStore) Delete(userID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func encodeLists(recipe *model.Recipe) (steps, tags string, err error) {
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	stepsJSON, err := json.Marshal(recipe.Steps)
	if err != nil {
		return "", "", fmt.Errorf("encode steps: %w", err)
	}
	tagsJSON, err := json.Marshal(recipe.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(stepsJSON), string(tagsJSON), nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
