package http

import (
	"net/http"

	"spendtrack/internal/auth"
	"spendtrack/internal/log"
)

// requireUser validates the Bearer token and stores the session in context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := auth.ParseBearer(r.Header.Get("Authorization"), s.cfg.JWTSecret)
		if err != nil {
			s.logger.WarnContext(r.Context(), "Rejected token",
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
			respondError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// requireAdmin additionally demands an admin session.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.SessionFrom(r.Context())
		if !ok || !session.Admin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
