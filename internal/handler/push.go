package handler

import (
	"net/http"
	"strings"

	"github.com/larderhq/larder/internal/apperror"
	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/model"
	"github.com/larderhq/larder/internal/push"
	"github.com/larderhq/larder/internal/store"
)

// PushHandler manages web-push subscriptions. Nil service means push is
// not configured (no VAPID keys).
type PushHandler struct {
	subs *store.PushStore
	svc  *push.Service
}

func NewPushHandler(subs *store.PushStore, svc *push.Service) *PushHandler {
	return &PushHandler{subs: subs, svc: svc}
}

// subscribeRequest mirrors the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push notifications are not configured"})
		return
	}

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, apperror.Invalid("endpoint and keys are required"))
		return
	}

	sub, err := h.subs.Subscribe(auth.UserID(r.Context()), req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, errInvalidID)
		return
	}

	if err := h.subs.Delete(auth.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey hands the public key to the browser for subscribing.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push notifications are not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": h.svc.VAPIDPublicKey()})
}
