package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/grocery"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/websocket"
)

type GroceryHandler struct {
	ledger *grocery.Ledger
	hub    *websocket.Hub
}

func NewGroceryHandler(ledger *grocery.Ledger, hub *websocket.Hub) *GroceryHandler {
	return &GroceryHandler{ledger: ledger, hub: hub}
}

type groceryCreateRequest struct {
	Name           string     `json:"name"`
	Quantity       *float64   `json:"quantity"`
	Unit           string     `json:"unit"`
	Brand          *string    `json:"brand"`
	Label          *string    `json:"label"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// groceryPatchRequest keeps the omitted/null distinction for clearable
// columns via model.Optional.
type groceryPatchRequest struct {
	Name           *string                   `json:"name"`
	Quantity       *float64                  `json:"quantity"`
	Unit           *string                   `json:"unit"`
	Brand          model.Optional[string]    `json:"brand"`
	Label          model.Optional[string]    `json:"label"`
	ExpirationDate model.Optional[time.Time] `json:"expiration_date"`
	Checked        *bool                     `json:"checked"`
}

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.List(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req groceryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Label == nil {
		req.Label = pantry.SuggestLabel(req.Name)
	}

	item, err := h.ledger.Create(userID, grocery.CreateInput{
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Brand:          req.Brand,
		Label:          req.Label,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	var req groceryPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.ledger.Update(userID, id, grocery.Patch{
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Brand:          req.Brand,
		Label:          req.Label,
		ExpirationDate: req.ExpirationDate,
		Checked:        req.Checked,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	if err := h.ledger.Delete(userID, id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Toggle flips the checked flag and mirrors the change into the fridge.
// A sync failure still returns the updated item; the response carries a
// warning so the client can surface the lagging fridge.
func (h *GroceryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	item, err := h.ledger.Toggle(userID, id)
	if err != nil {
		var syncErr *apperror.SyncError
		if errors.As(err, &syncErr) && item != nil {
			h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "toggled", item.ID, nil))
			writeJSON(w, http.StatusOK, map[string]any{
				"item":         item,
				"sync_warning": syncErr.Error(),
			})
			return
		}
		writeError(w, err)
		return
	}

	h.hub.BroadcastTo(userID, websocket.NewMessage("grocery", "toggled", item.ID, nil))
	h.hub.BroadcastTo(userID, websocket.NewMessage("fridge", "changed", item.ID, nil))
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}
