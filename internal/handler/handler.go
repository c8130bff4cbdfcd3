// Package handler exposes the HTTP surface: JSON request decoding, error
// mapping, and change-event broadcasting after successful writes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/larderhq/larder/internal/apperror"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error through apperror.Status. Internal errors get a
// generic body; the details go to the log, not the client.
func writeError(w http.ResponseWriter, err error) {
	status := apperror.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

var errInvalidID = apperror.Invalid("invalid id")

// decodeJSON rejects unparseable bodies as invalid input.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Invalid("invalid JSON body")
	}
	return nil
}
