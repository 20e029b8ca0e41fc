package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Logging
	LogLevel string

	// Data backend
	DataBackend  string // "file" or "sqlite"
	DataDir      string // file backend: directory holding per-user files
	SQLiteDBPath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Admin credentials. Both empty means admin login is disabled (fails closed).
	AdminUser string
	AdminPass string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendtrack.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 12*time.Hour),

		AdminUser: getEnv("ADMIN_USER", ""),
		AdminPass: getEnv("ADMIN_PASS", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendtrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	switch c.DataBackend {
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		} else if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
			if err := os.MkdirAll(c.DataDir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create data directory '%s': %v", c.DataDir, err))
			}
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [file sqlite]", c.DataBackend))
	}

	// Validate auth settings
	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET must be set")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	} else if c.TokenTTL > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at most 720 hours", c.TokenTTL))
	}

	// Admin credentials must be set together or not at all
	if (c.AdminUser == "") != (c.AdminPass == "") {
		errors = append(errors, "ADMIN_USER and ADMIN_PASS must be set together")
	}

	// Validate AMQP settings if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Sheet name is only meaningful together with a spreadsheet ID
	if c.GoogleSheetName != "" && c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SHEET_NAME requires GOOGLE_SPREADSHEET_ID")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AdminEnabled reports whether an admin credential pair is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPass != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
