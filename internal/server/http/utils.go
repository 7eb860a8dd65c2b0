package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/internal/ring"
)

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeEngineError maps engine and device failures to HTTP statuses.
// Validation failures are client errors; device failures are reported
// verbatim as server errors, untranslated.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ring.ErrNotInitialized), errors.Is(err, ring.ErrPaused):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ring.ErrInvalidLength), errors.Is(err, ring.ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flash.ErrRead), errors.Is(err, flash.ErrWrite), errors.Is(err, flash.ErrErase):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseUint32 parses a decimal or 0x-prefixed query value.
func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
