package handler

import (
	"net/http"

	"github.com/larderhq/larder/internal/auth"
	"github.com/larderhq/larder/internal/fridge"
	"github.com/larderhq/larder/internal/recipeai"
)

// AIHandler generates unsaved recipe drafts. Nil client means the feature
// is not configured.
type AIHandler struct {
	client *recipeai.Client
	fridge *fridge.Ledger
}

func NewAIHandler(client *recipeai.Client, fridgeLedger *fridge.Ledger) *AIHandler {
	return &AIHandler{client: client, fridge: fridgeLedger}
}

type generateRequest struct {
	Mode   string `json:"mode"`
	Prompt string `json:"prompt"`
}

func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI recipe generation is not configured"})
		return
	}

	userID := auth.UserID(r.Context())

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	genReq := recipeai.Request{Mode: recipeai.Mode(req.Mode), Prompt: req.Prompt}
	if genReq.Mode == recipeai.ModeFridge {
		items, err := h.fridge.List(userID)
		if err != nil {
			writeError(w, err)
			return
		}
		genReq.FridgeItems = items
	}

	draft, err := h.client.Generate(r.Context(), genReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
