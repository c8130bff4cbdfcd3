package handler

import (
	"net/http"

	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/recipe"
	"github.com/larderhq/larder/internal/websocket"
)

type RecipeHandler struct {
	svc *recipe.Service
	hub *websocket.Hub
}

func NewRecipeHandler(svc *recipe.Service, hub *websocket.Hub) *RecipeHandler {
	return &RecipeHandler{svc: svc, hub: hub}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.List(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// ListWithAvailability returns every recipe with each ingredient annotated
// against the current fridge and grocery contents.
func (h *RecipeHandler) ListWithAvailability(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.ListWithAvailability(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.RecipeWithAvailability{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	rec, err := h.svc.GetWithAvailability(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var in recipe.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.svc.Create(userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("recipe", "created", rec.ID, nil))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	var in recipe.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.svc.Update(userID, id, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("recipe", "updated", rec.ID, nil))
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	if err := h.svc.Delete(userID, id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("recipe", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// AddToGrocery merges the recipe's ingredients into the grocery list and
// returns the rows that were created or updated.
func (h *RecipeHandler) AddToGrocery(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	items, err := h.svc.AddToGrocery(userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "changed", id, map[string]any{"count": len(items)}))
	writeJSON(w, http.StatusOK, items)
}
