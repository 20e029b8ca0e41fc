package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "User listing failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"users": users})
}

func (s *Server) handleAdminAggregate(w http.ResponseWriter, r *http.Request) {
	all, err := s.admin.AggregateAll(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Aggregation failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to aggregate expenses")
		return
	}
	if all == nil {
		all = []services.OwnedRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"records": all,
		"count":   len(all),
	})
}

func (s *Server) handleAdminPurge(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := s.admin.PurgeUserData(r.Context(), username); err != nil {
		s.logger.ErrorContext(r.Context(), "Purge failed",
			log.FieldUsername, username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to purge user expenses")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
