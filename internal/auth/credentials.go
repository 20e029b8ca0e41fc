// Package auth implements the credential store and session tokens.
//
// Credentials live in a single users.json file mapping username to a bcrypt
// password hash. The file is rewritten whole on every mutation, via a temp
// file and rename so a crash cannot truncate it.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const usersFile = "users.json"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrMissingField       = errors.New("username and password are required")
	ErrUnknownUser        = errors.New("unknown user")
)

// Credential is the stored entry for one user.
type Credential struct {
	PasswordHash string `json:"password_hash"`
}

// CredentialStore persists username -> credential in a JSON file.
type CredentialStore struct {
	mu   sync.Mutex
	path string
}

func NewCredentialStore(dataDir string) *CredentialStore {
	return &CredentialStore{path: filepath.Join(dataDir, usersFile)}
}

// Signup registers a new user. Usernames are unique; the password is stored
// as a bcrypt hash.
func (s *CredentialStore) Signup(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	users[username] = Credential{PasswordHash: string(hash)}

	return s.save(users)
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords both return ErrInvalidCredentials so callers cannot distinguish
// them.
func (s *CredentialStore) Authenticate(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	cred, exists := users[username]
	if !exists {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Delete removes a user's credential entry.
func (s *CredentialStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := users[username]; !exists {
		return ErrUnknownUser
	}
	delete(users, username)
	return s.save(users)
}

// ListUsers returns all registered usernames, sorted.
func (s *CredentialStore) ListUsers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// load reads the credential file. A missing file is an empty store; a corrupt
// file is an error since overwriting it would lose accounts.
func (s *CredentialStore) load() (map[string]Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Credential{}, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	users := map[string]Credential{}
	if len(data) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	return users, nil
}

func (s *CredentialStore) save(users map[string]Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
