package http

import (
	"errors"
	"net/http"
	"strings"

	"spendtrack/internal/auth"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

type setBudgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

type budgetView struct {
	LimitCents int64  `json:"limit_cents"`
	Limit      string `json:"limit"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cents, err := core.ParseLimitCents(strings.TrimSpace(req.Limit))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}

	category := sanitizeInput(req.Category)
	if err := s.ledger.SetBudget(r.Context(), session.Username, category, core.Money{Cents: cents}); err != nil {
		if errors.Is(err, core.ErrEmptyCategory) || errors.Is(err, core.ErrInvalidAmount) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Budget upsert failed",
			log.FieldUsername, session.Username,
			log.FieldCategory, category,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to set budget")
		return
	}

	respondJSON(w, http.StatusOK, map[string]budgetView{
		category: {LimitCents: cents, Limit: core.FormatCents(cents)},
	})
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	budgets, err := s.ledger.Budgets(r.Context(), session.Username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget load failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load budgets")
		return
	}

	out := make(map[string]budgetView, len(budgets))
	for category, limit := range budgets {
		out[category] = budgetView{LimitCents: limit.Cents, Limit: core.FormatCents(limit.Cents)}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	progress, err := s.ledger.Progress(r.Context(), session.Username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget progress failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to evaluate budgets")
		return
	}
	if progress == nil {
		progress = []services.BudgetProgress{}
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		respondError(w, http.StatusBadRequest, "category query parameter is required")
		return
	}

	status, err := s.ledger.Evaluate(r.Context(), session.Username, category)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget evaluation failed",
			log.FieldUsername, session.Username,
			log.FieldCategory, category,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to evaluate budget")
		return
	}
	if status == nil {
		respondError(w, http.StatusNotFound, "no budget set for category")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
