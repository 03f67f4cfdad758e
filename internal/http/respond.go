package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pocketlog/internal/core"
)

// genericServerError is the only message 500 responses carry; store details
// stay in the logs.
const genericServerError = "something went wrong"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the error taxonomy to HTTP statuses: validation 400,
// not found 404, everything else 500 with the generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		writeError(w, http.StatusInternalServerError, genericServerError)
	}
}
