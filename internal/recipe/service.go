// Package recipe implements recipe CRUD, ingredient resolution, the
// availability view, and the add-ingredients-to-grocery flow.
package recipe

import (
	"fmt"
	"strings"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/availability"
	"github.com/larderhq/larder/internal/fridge"
	"github.com/larderhq/larder/internal/grocery"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/store"
)

type Service struct {
	store     *store.RecipeStore
	resolver  *pantry.Resolver
	pantries  *store.PantryStore
	groceries *grocery.Ledger
	fridges   *fridge.Ledger
}

func NewService(s *store.RecipeStore, r *pantry.Resolver, ps *store.PantryStore, g *grocery.Ledger, f *fridge.Ledger) *Service {
	return &Service{store: s, resolver: r, pantries: ps, groceries: g, fridges: f}
}

type IngredientInput struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Label    *string  `json:"label"`
	Note     *string  `json:"note"`
	Brand    *string  `json:"brand"`
}

type Input struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	PhotoURL        *string           `json:"photo_url"`
	PrepTimeMinutes *int              `json:"prep_time_minutes"`
	CookTimeMinutes *int              `json:"cook_time_minutes"`
	Ingredients     []IngredientInput `json:"ingredients"`
	Steps           []string          `json:"steps"`
	Tags            []string          `json:"tags"`
	SourceURL       *string           `json:"source_url"`
}

// RecipeWithAvailability is the enriched read view: the recipe with each
// ingredient annotated against the current ledgers. Never persisted.
type RecipeWithAvailability struct {
	model.Recipe
	Ingredients []availability.AnnotatedIngredient `json:"ingredients"`
}

func (s *Service) Create(userID int64, in Input) (*model.Recipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Invalid("title must not be empty")
	}

	ingredients, err := s.resolveIngredients(userID, in.Ingredients)
	if err != nil {
		return nil, err
	}

	return s.store.Insert(&model.Recipe{
		UserID:          userID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		PhotoURL:        in.PhotoURL,
		PrepTimeMinutes: in.PrepTimeMinutes,
		CookTimeMinutes: in.CookTimeMinutes,
		Ingredients:     ingredients,
		Steps:           in.Steps,
		Tags:            in.Tags,
		SourceURL:       in.SourceURL,
	})
}

func (s *Service) Update(userID, id int64, in Input) (*model.Recipe, error) {
	existing, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Invalid("title must not be empty")
	}

	ingredients, err := s.resolveIngredients(userID, in.Ingredients)
	if err != nil {
		return nil, err
	}

	existing.Title = strings.TrimSpace(in.Title)
	existing.Description = in.Description
	existing.PhotoURL = in.PhotoURL
	existing.PrepTimeMinutes = in.PrepTimeMinutes
	existing.CookTimeMinutes = in.CookTimeMinutes
	existing.Ingredients = ingredients
	existing.Steps = in.Steps
	existing.Tags = in.Tags
	existing.SourceURL = in.SourceURL

	return s.store.Update(existing)
}

// resolveIngredients passes each named ingredient through the pantry
// resolver and stores the resulting identity and key on the embedded row.
// Blank names are kept as free-text lines ("a pinch of love") and never
// resolved; availability reports them missing.
func (s *Service) resolveIngredients(userID int64, inputs []IngredientInput) ([]model.RecipeIngredient, error) {
	ingredients := make([]model.RecipeIngredient, 0, len(inputs))
	for _, in := range inputs {
		ing := model.RecipeIngredient{
			Name:     strings.TrimSpace(in.Name),
			Quantity: in.Quantity,
			Unit:     in.Unit,
			Label:    in.Label,
			Note:     in.Note,
			Brand:    in.Brand,
		}
		if ing.Name == "" {
			ingredients = append(ingredients, ing)
			continue
		}

		identity, err := s.resolver.Resolve(userID, in.Name, pantry.Hints{
			Brand:       in.Brand,
			Label:       in.Label,
			DefaultUnit: in.Unit,
		})
		if err != nil {
			return nil, fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
		ing.PantryItemID = &identity.ID
		ing.NameKey = identity.NameKey
		if ing.Brand == nil {
			ing.Brand = identity.Brand
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func (s *Service) Get(userID, id int64) (*model.Recipe, error) {
	r, err := s.store.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("recipe %d: %w", id, apperror.ErrNotFound)
	}
	return r, nil
}

func (s *Service) List(userID int64) ([]model.Recipe, error) {
	return s.store.ListByUser(userID)
}

func (s *Service) Delete(userID, id int64) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}
	return s.store.Delete(userID, id)
}

// ListWithAvailability annotates every recipe against the current ledgers.
// Both ledgers are fetched once and shared across all recipes.
func (s *Service) ListWithAvailability(userID int64) ([]RecipeWithAvailability, error) {
	recipes, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	fridgeItems, err := s.fridges.List(userID)
	if err != nil {
		return nil, err
	}
	groceryItems, err := s.groceries.List(userID)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeWithAvailability, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, RecipeWithAvailability{
			Recipe:      r,
			Ingredients: availability.Annotate(r.Ingredients, fridgeItems, groceryItems),
		})
	}
	return out, nil
}

// GetWithAvailability annotates a single recipe.
func (s *Service) GetWithAvailability(userID, id int64) (*RecipeWithAvailability, error) {
	r, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	fridgeItems, err := s.fridges.List(userID)
	if err != nil {
		return nil, err
	}
	groceryItems, err := s.groceries.List(userID)
	if err != nil {
		return nil, err
	}
	return &RecipeWithAvailability{
		Recipe:      *r,
		Ingredients: availability.Annotate(r.Ingredients, fridgeItems, groceryItems),
	}, nil
}

// AddToGrocery puts a recipe's ingredients on the shopping list. An
// existing entry for the same pantry identity is merged into rather than
// duplicated: its quantity and unit take the ingredient's values when
// given, its brand and label are replaced by the ingredient's, and its
// checked flag resets so an already-bought item is wanted again. Two
// ingredients sharing one identity within a call merge into one entry.
func (s *Service) AddToGrocery(userID, recipeID int64) ([]model.GroceryItem, error) {
	r, err := s.Get(userID, recipeID)
	if err != nil {
		return nil, err
	}

	existing, err := s.groceries.List(userID)
	if err != nil {
		return nil, err
	}
	byPantry := make(map[int64]*model.GroceryItem, len(existing))
	for i := range existing {
		if _, ok := byPantry[existing[i].PantryItemID]; !ok {
			byPantry[existing[i].PantryItemID] = &existing[i]
		}
	}

	var affected []model.GroceryItem
	for _, ing := range r.Ingredients {
		identity, err := s.ingredientIdentity(userID, ing)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			continue
		}

		if current, ok := byPantry[identity.ID]; ok {
			patch := grocery.Patch{
				Brand:   model.Optional[string]{Set: true, Value: ing.Brand},
				Label:   model.Optional[string]{Set: true, Value: ing.Label},
				Checked: boolPtr(false),
			}
			if ing.Quantity != nil && *ing.Quantity > 0 {
				patch.Quantity = ing.Quantity
			}
			if ing.Unit != nil && strings.TrimSpace(*ing.Unit) != "" {
				patch.Unit = ing.Unit
			}
			updated, err := s.groceries.Update(userID, current.ID, patch)
			if err != nil {
				return nil, fmt.Errorf("merge %q: %w", ing.Name, err)
			}
			byPantry[identity.ID] = updated
			affected = append(affected, *updated)
			continue
		}

		unit := ""
		if ing.Unit != nil {
			unit = *ing.Unit
		}
		created, err := s.groceries.CreateResolved(userID, identity, grocery.CreateInput{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     unit,
			Brand:    ing.Brand,
			Label:    ing.Label,
		})
		if err != nil {
			return nil, fmt.Errorf("add %q: %w", ing.Name, err)
		}
		byPantry[identity.ID] = created
		affected = append(affected, *created)
	}
	return affected, nil
}

// ingredientIdentity returns the pantry identity for an ingredient, using
// its stored reference when present and resolving by name otherwise.
// Blank-name ingredients have no identity and are skipped by the caller.
func (s *Service) ingredientIdentity(userID int64, ing model.RecipeIngredient) (*model.PantryItem, error) {
	if ing.PantryItemID != nil {
		identity, err := s.pantries.GetByID(userID, *ing.PantryItemID)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			return identity, nil
		}
		// Stale reference; fall through to name resolution.
	}
	if strings.TrimSpace(ing.Name) == "" {
		return nil, nil
	}
	return s.resolver.Resolve(userID, ing.Name, pantry.Hints{
		Brand: ing.Brand,
		Label: ing.Label,
	})
}

func boolPtr(b bool) *bool { return &b }
