// Package http exposes the expense tracker over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"spendtrack/internal/auth"
	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/middleware/ratelimit"
	"spendtrack/internal/middleware/security"
	"spendtrack/internal/middleware/trace"
	"spendtrack/internal/services"
)

type Server struct {
	http.Server

	cfg    *config.Config
	creds  *auth.CredentialStore
	ledger *services.LedgerService
	admin  *services.AdminService
	logger *log.Logger

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware and handlers into a ready-to-run server.
func NewServer(cfg *config.Config, creds *auth.CredentialStore, ledger *services.LedgerService, admin *services.AdminService, logger *log.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		creds:   creds,
		ledger:  ledger,
		admin:   admin,
		logger:  logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	r := chi.NewRouter()
	r.Use(trace.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	// Mutations count against the per-IP budget, reads do not
	r.Use(s.limiter.Middleware(trace.ClientIP, http.MethodPost, http.MethodPut, http.MethodDelete))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/admin/login", s.handleAdminLogin)
		r.With(s.requireUser).Delete("/account", s.handleDeleteAccount)
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/expenses", s.handleCreateExpense)
			r.Get("/expenses", s.handleListExpenses)
			r.Delete("/expenses", s.handleClearExpenses)
			r.Put("/budgets", s.handleSetBudget)
			r.Get("/budgets", s.handleGetBudgets)
			r.Get("/budgets/progress", s.handleBudgetProgress)
			r.Get("/budgets/status", s.handleBudgetStatus)
			r.Get("/analytics", s.handleAnalytics)
			r.Get("/export", s.handleExport)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/users", s.handleAdminListUsers)
			r.Get("/expenses", s.handleAdminAggregate)
			r.Delete("/users/{username}/expenses", s.handleAdminPurge)
		})
	})

	s.Addr = ":" + cfg.Port
	s.Handler = r
	return s
}

// Shutdown stops background goroutines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
