package http

import (
	"errors"
	"net/http"

	"spendtrack/internal/auth"
	"spendtrack/internal/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	err := s.creds.Signup(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingField):
		respondError(w, http.StatusBadRequest, "username and password are required")
	case errors.Is(err, auth.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "username already taken")
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Signup failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "signup failed")
	default:
		s.logger.InfoContext(r.Context(), "Account created", log.FieldUsername, req.Username)
		respondJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := s.creds.Authenticate(req.Username, req.Password); err != nil {
		// Same response for unknown user and wrong password
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	s.issueToken(w, r, auth.Session{Username: req.Username})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := auth.CheckAdmin(s.cfg.AdminUser, s.cfg.AdminPass, req.Username, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	s.issueToken(w, r, auth.Session{Username: req.Username, Admin: true})
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, session auth.Session) {
	token, err := auth.IssueToken(session, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Token issuance failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())
	if session.Admin {
		respondError(w, http.StatusForbidden, "admin sessions have no account to delete")
		return
	}

	if err := s.admin.DeleteAccount(r.Context(), session.Username); err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Account deletion failed",
			log.FieldUsername, session.Username,
			log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "account deletion failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
