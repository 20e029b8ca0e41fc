// Package backend selects and constructs the configured storage backend.
package backend

import (
	"fmt"

	"spendtrack/internal/config"
	"spendtrack/internal/store"
	"spendtrack/internal/store/file"
	"spendtrack/internal/store/sqlite"
)

// Compile-time checks that both backends satisfy the port.
var (
	_ store.Store = (*file.Store)(nil)
	_ store.Store = (*sqlite.Repository)(nil)
)

// Open creates the storage backend selected by configuration.
func Open(cfg *config.Config) (store.Store, error) {
	switch cfg.DataBackend {
	case "file":
		return file.New(cfg.DataDir)
	case "sqlite":
		return sqlite.New(cfg.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
