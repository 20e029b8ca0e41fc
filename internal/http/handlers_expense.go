package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"spendtrack/internal/auth"
	"spendtrack/internal/core"
	"spendtrack/internal/export"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

type createExpenseRequest struct {
	Date        string `json:"date,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type createExpenseResponse struct {
	Record core.Record            `json:"record"`
	Budget *services.BudgetStatus `json:"budget,omitempty"`
}

type listExpensesResponse struct {
	Records    []core.Record `json:"records"`
	Count      int           `json:"count"`
	TotalCents int64         `json:"total_cents"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	rec := core.Record{
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
	}
	if req.Date != "" {
		t, err := parseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid date")
			return
		}
		rec.Time = t
	}
	if err := rec.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	stored, status, err := s.ledger.Add(r.Context(), session.Username, rec)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense append failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to record expense")
		return
	}

	respondJSON(w, http.StatusCreated, createExpenseResponse{Record: stored, Budget: status})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	crit, month, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var records []core.Record
	if month != "" {
		all, lerr := s.ledger.History(r.Context(), session.Username)
		if lerr != nil {
			err = lerr
		} else {
			records = core.FilterMonth(core.Filter(all, crit), month)
		}
	} else {
		records, err = s.ledger.Filter(r.Context(), session.Username, crit)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger load failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}

	total, count := core.TotalAndCount(records)
	if records == nil {
		records = []core.Record{}
	}
	respondJSON(w, http.StatusOK, listExpensesResponse{
		Records:    records,
		Count:      count,
		TotalCents: total.Cents,
	})
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	if err := s.ledger.Clear(r.Context(), session.Username); err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger clear failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to clear expenses")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	report, err := s.ledger.Analytics(r.Context(), session.Username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Analytics failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to build analytics")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	crit, month, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.ledger.Filter(r.Context(), session.Username, crit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger load failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	if month != "" {
		records = core.FilterMonth(records, month)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(session.Username)+`"`)
	if err := export.Write(w, format, session.Username, records); err != nil {
		// Headers are out; the truncated body is the best signal left
		s.logger.ErrorContext(r.Context(), "Export serialization failed",
			log.FieldUsername, session.Username,
			log.FieldFormat, string(format),
			log.FieldError, err)
	}
}

// parseFilter reads the shared query filters: from, to (whole days),
// category and q (case-insensitive substrings), month (YYYY-MM).
func parseFilter(r *http.Request) (core.FilterCriteria, string, error) {
	q := r.URL.Query()
	var crit core.FilterCriteria

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return crit, "", errors.New("invalid from date, expected YYYY-MM-DD")
		}
		crit.From = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return crit, "", errors.New("invalid to date, expected YYYY-MM-DD")
		}
		crit.To = t
	}
	crit.Category = strings.TrimSpace(q.Get("category"))
	crit.Description = strings.TrimSpace(q.Get("q"))

	month := strings.TrimSpace(q.Get("month"))
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return crit, "", errors.New("invalid month, expected YYYY-MM")
		}
	}
	return crit, month, nil
}

// parseDate accepts the ledger timestamp layout or a plain day.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(core.TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
