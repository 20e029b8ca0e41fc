package services

import (
	"context"
	"errors"
	"fmt"

	"spendtrack/internal/auth"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
)

// OwnedRecord tags a ledger record with its owner for cross-user views.
type OwnedRecord struct {
	Username string      `json:"username"`
	Record   core.Record `json:"record"`
}

// AdminService implements cross-user operations: listing accounts,
// aggregating every ledger, and purging user data.
type AdminService struct {
	creds  *auth.CredentialStore
	store  store.Store
	logger *log.Logger
}

func NewAdminService(creds *auth.CredentialStore, st store.Store, logger *log.Logger) *AdminService {
	return &AdminService{
		creds:  creds,
		store:  st,
		logger: logger.WithComponent(log.ComponentAdmin),
	}
}

// ListUsers returns every registered username, sorted.
func (s *AdminService) ListUsers(ctx context.Context) ([]string, error) {
	return s.creds.ListUsers()
}

// AggregateAll loads every registered user's ledger and tags each record
// with its owner. Users are visited in sorted order; records keep their
// ledger order within a user. Built fresh on every call, never cached.
func (s *AdminService) AggregateAll(ctx context.Context) ([]OwnedRecord, error) {
	users, err := s.creds.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var out []OwnedRecord
	for _, user := range users {
		recs, err := s.store.Load(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("load ledger for %s: %w", user, err)
		}
		for _, rec := range recs {
			out = append(out, OwnedRecord{Username: user, Record: rec})
		}
	}
	return out, nil
}

// PurgeUserData truncates the user's ledger. The account and its budgets
// survive.
func (s *AdminService) PurgeUserData(ctx context.Context, user string) error {
	if err := s.store.Clear(ctx, user); err != nil {
		return fmt.Errorf("purge ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Purged user ledger", log.FieldUsername, user)
	return nil
}

// DeleteAccount removes the user's credentials, ledger and budgets. Storage
// removal errors are collected so a partial failure still deletes as much
// as possible.
func (s *AdminService) DeleteAccount(ctx context.Context, user string) error {
	if err := s.creds.Delete(user); err != nil {
		return err
	}

	var errs []error
	if err := s.store.RemoveLedger(ctx, user); err != nil {
		errs = append(errs, fmt.Errorf("remove ledger: %w", err))
	}
	if err := s.store.RemoveBudgets(ctx, user); err != nil {
		errs = append(errs, fmt.Errorf("remove budgets: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete account %s: %w", user, errors.Join(errs...))
	}

	s.logger.InfoContext(ctx, "Deleted account", log.FieldUsername, user)
	return nil
}
