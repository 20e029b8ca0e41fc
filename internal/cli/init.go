// Package cli consolidates the initialization shared by cmd/spendtrack,
// cmd/spendtrackctl and cmd/mirror-worker.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"spendtrack/internal/auth"
	"spendtrack/internal/backend"
	"spendtrack/internal/config"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
)

// LoadEnvFile loads the .env file for local development. Errors are ignored
// since the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, exiting the process on
// validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore constructs the configured storage backend, exiting on failure.
func OpenStore(cfg *config.Config, logger *log.Logger) store.Store {
	st, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to open storage backend",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Storage backend ready", log.FieldBackend, cfg.DataBackend)
	return st
}

// OpenCredentials returns the credential store rooted in the data directory.
func OpenCredentials(cfg *config.Config) *auth.CredentialStore {
	return auth.NewCredentialStore(cfg.DataDir)
}
