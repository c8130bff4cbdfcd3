package handler

import (
	"net/http"
	"time"

	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/fridge"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/pantry"
	"github.com/larderhq/larder/internal/websocket"
)

type FridgeHandler struct {
	ledger *fridge.Ledger
	hub    *websocket.Hub
}

func NewFridgeHandler(ledger *fridge.Ledger, hub *websocket.Hub) *FridgeHandler {
	return &FridgeHandler{ledger: ledger, hub: hub}
}

type fridgeCreateRequest struct {
	Name           string     `json:"name"`
	Quantity       *float64   `json:"quantity"`
	Unit           string     `json:"unit"`
	Brand          *string    `json:"brand"`
	Label          *string    `json:"label"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

type fridgePatchRequest struct {
	Name           *string                   `json:"name"`
	Quantity       *float64                  `json:"quantity"`
	Unit           *string                   `json:"unit"`
	Brand          model.Optional[string]    `json:"brand"`
	Label          model.Optional[string]    `json:"label"`
	ExpirationDate model.Optional[time.Time] `json:"expiration_date"`
}

func (h *FridgeHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.List(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.FridgeItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *FridgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req fridgeCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Label == nil {
		req.Label = pantry.SuggestLabel(req.Name)
	}

	item, err := h.ledger.Create(userID, fridge.CreateInput{
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

	h.hub.BroadcastTo(userID, websocket.NewMessage("fridge", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *FridgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	var req fridgePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.ledger.Update(userID, id, fridge.Patch{
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

	h.hub.BroadcastTo(userID, websocket.NewMessage("fridge", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *FridgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	h.hub.BroadcastTo(userID, websocket.NewMessage("fridge", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
