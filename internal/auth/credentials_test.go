package auth

import (
	"errors"
	"testing"
)

func TestSignupLogin(t *testing.T) {
	store := NewCredentialStore(t.TempDir())

	if err := store.Signup("alice", "pw1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := store.Authenticate("alice", "pw1"); err != nil {
		t.Fatalf("login with correct password: %v", err)
	}
	if err := store.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login with wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if err := store.Authenticate("bob", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login of unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSignupValidation(t *testing.T) {
	store := NewCredentialStore(t.TempDir())

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "", "pw", ErrMissingField},
		{"blank username", "   ", "pw", ErrMissingField},
		{"empty password", "carol", "", ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Signup(tt.username, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Signup(%q, %q) = %v, want %v", tt.username, tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	store := NewCredentialStore(t.TempDir())

	if err := store.Signup("alice", "pw1"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if err := store.Signup("alice", "pw2"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate signup: got %v, want ErrUsernameTaken", err)
	}
	// Original password still works
	if err := store.Authenticate("alice", "pw1"); err != nil {
		t.Fatalf("original credential damaged: %v", err)
	}
}

func TestListUsersAndDelete(t *testing.T) {
	store := NewCredentialStore(t.TempDir())

	names, err := store.ListUsers()
	if err != nil {
		t.Fatalf("list on empty store: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("empty store listed %v", names)
	}

	for _, u := range []string{"carol", "alice", "bob"} {
		if err := store.Signup(u, "pw"); err != nil {
			t.Fatalf("signup %s: %v", u, err)
		}
	}

	names, err = store.ListUsers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(names) != len(want) {
		t.Fatalf("listed %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("listed %v, want %v", names, want)
		}
	}

	if err := store.Delete("bob"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete("bob"); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("delete again: got %v, want ErrUnknownUser", err)
	}
	if err := store.Authenticate("bob", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deleted user can still log in: %v", err)
	}
}
