package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/trade_strategy_manager/internal/domain"
	"go.uber.org/zap"
)

type mutationResponse struct {
	Strategy     domain.Strategy `json:"strategy"`
	Warning      string          `json:"warning,omitempty"`
	UndoWindowMs int64           `json:"undo_window_ms,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeMutation maps a repository result onto a response. Store errors still
// return the mutated strategy, with a warning attached.
func (s *Server) writeMutation(w http.ResponseWriter, status int, strategy domain.Strategy, err error) bool {
	var verr *domain.ValidationError
	var storeErr *domain.StoreError
	switch {
	case err == nil:
		s.writeJSON(w, status, mutationResponse{Strategy: strategy})
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
		return false
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrNotFound.Error()})
		return false
	case errors.As(err, &storeErr):
		s.writeJSON(w, status, mutationResponse{Strategy: strategy, Warning: storeErr.Error()})
	default:
		s.logger.Error("Unexpected repository error", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return false
	}
	return true
}

func (s *Server) handleListJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.query.Filter(r.URL.Query().Get("q")))
}

func (s *Server) handleGetJSON(w http.ResponseWriter, r *http.Request) {
	strategy, ok := s.repo.FindByID(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrNotFound.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, strategy)
}

func (s *Server) handleCreateJSON(w http.ResponseWriter, r *http.Request) {
	var fields domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := s.repo.Create(r.Context(), fields)
	if s.writeMutation(w, http.StatusCreated, created, err) {
		s.hub.Publish(Event{Type: EventCreated, ID: created.ID, Name: created.Name})
	}
}

func (s *Server) handleUpdateJSON(w http.ResponseWriter, r *http.Request) {
	var fields domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := s.repo.Update(r.Context(), r.PathValue("id"), fields)
	if s.writeMutation(w, http.StatusOK, updated, err) {
		s.hub.Publish(Event{Type: EventUpdated, ID: updated.ID, Name: updated.Name})
	}
}

func (s *Server) handleDeleteJSON(w http.ResponseWriter, r *http.Request) {
	removed, err := s.repo.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrNotFound.Error()})
		return
	}

	resp := mutationResponse{Strategy: removed, UndoWindowMs: s.repo.UndoBuffer().Window().Milliseconds()}
	if err != nil {
		resp.Warning = err.Error()
	}
	if s.query.CurrentID() == removed.ID {
		s.query.ClearSelection()
	}
	s.hub.Publish(Event{Type: EventDeleted, ID: removed.ID, Name: removed.Name})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndoJSON(w http.ResponseWriter, r *http.Request) {
	restored, ok, err := s.repo.Undo(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := mutationResponse{Strategy: restored}
	if err != nil {
		resp.Warning = err.Error()
	}
	s.hub.Publish(Event{Type: EventRestored, ID: restored.ID, Name: restored.Name})
	s.writeJSON(w, http.StatusOK, resp)
}
