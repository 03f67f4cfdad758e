package http

import (
	"net/http"

	"pocketlog/internal/core"
	applog "pocketlog/internal/log"
)

// saveUserRequest is the sign-in payload forwarded by the client after the
// identity provider authenticates. PhotoURL is accepted but not stored.
type saveUserRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// handleSaveUser finds or creates the user for the signed-in identity.
func (s *Server) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	var req saveUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.directory.FindOrCreate(r.Context(), core.Identity{
		ExternalID:  req.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save user",
			applog.FieldOperation, applog.OpUpsert,
			applog.FieldUID, req.UID,
			applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	s.invalidateLogs(user.Details.ExternalID)

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
