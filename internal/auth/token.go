package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Session represents the authenticated caller. It is created at login,
// carried through the request context and discarded at logout.
type Session struct {
	Username string
	Admin    bool
}

type sessionKey struct{}

// WithSession stores the session in context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom retrieves the session from context (if any).
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

const (
	kindUser  = "user"
	kindAdmin = "admin"
)

type sessionClaims struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// IssueToken signs a session as an HS256 JWT valid for ttl.
func IssueToken(s Session, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	kind := kindUser
	if s.Admin {
		kind = kindAdmin
	}
	now := time.Now()
	claims := sessionClaims{
		Name: s.Username,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseBearer extracts and validates a Bearer JWT from an Authorization
// header value, returning the session it encodes.
func ParseBearer(header, secret string) (*Session, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}
	return ParseToken(strings.TrimSpace(parts[1]), secret)
}

// ParseToken validates a signed token and extracts the session.
func ParseToken(tokenStr, secret string) (*Session, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*sessionClaims)
	if c == nil || c.Name == "" {
		return nil, errors.New("invalid claims")
	}
	return &Session{Username: c.Name, Admin: c.Kind == kindAdmin}, nil
}

// CheckAdmin compares a login attempt against the configured admin
// credential pair. An unset pair always rejects, so a deployment without
// admin configuration fails closed.
func CheckAdmin(confUser, confPass, username, password string) error {
	if confUser == "" || confPass == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(confUser), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(confPass), []byte(password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
