package http

import (
	"net/http"
	"strings"

	"pocketlog/internal/core"
	applog "pocketlog/internal/log"
)

// logRequest is the payload for creating or updating a log entry.
type logRequest struct {
	UID      string  `json:"uid"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

func (req logRequest) input() core.LogInput {
	return core.LogInput{
		Amount:   req.Amount,
		Category: strings.TrimSpace(req.Category),
		Note:     strings.TrimSpace(req.Note),
	}
}

// handleListLogs returns the user's log entries and spend limit.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}
	if !s.subjectAllowed(r, uid) {
		writeError(w, http.StatusForbidden, "subject mismatch")
		return
	}

	if view, ok := s.cachedLogsView(uid); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	logs, spendLimit, err := s.logs.List(r.Context(), uid)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list logs",
			applog.FieldOperation, applog.OpList,
			applog.FieldUID, uid,
			applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	if logs == nil {
		logs = []core.LogEntry{}
	}
	view := logsView{Logs: logs, SpendLimit: spendLimit}
	s.storeLogsView(uid, view)

	writeJSON(w, http.StatusOK, view)
}

// handleAddLog appends a new log entry.
func (s *Server) handleAddLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}
	if !s.subjectAllowed(r, uid) {
		writeError(w, http.StatusForbidden, "subject mismatch")
		return
	}

	user, err := s.logs.Add(r.Context(), uid, req.input())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add log",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUID, uid,
			applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	s.invalidateLogs(uid)

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// handleUpdateLog mutates amount, category and note of one log entry.
func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	logID := r.PathValue("id")

	var req logRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}
	if !s.subjectAllowed(r, uid) {
		writeError(w, http.StatusForbidden, "subject mismatch")
		return
	}

	user, err := s.logs.Update(r.Context(), uid, logID, req.input())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update log",
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldUID, uid,
			applog.FieldLogID, logID,
			applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	s.invalidateLogs(uid)

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// handleDeleteLog removes one log entry.
func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	logID := r.PathValue("id")
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return
	}
	if !s.subjectAllowed(r, uid) {
		writeError(w, http.StatusForbidden, "subject mismatch")
		return
	}

	if _, err := s.logs.Delete(r.Context(), uid, logID); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete log",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldUID, uid,
			applog.FieldLogID, logID,
			applog.FieldError, err)
		writeServiceError(w, err)
		return
	}

	s.invalidateLogs(uid)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted successfully"})
}
