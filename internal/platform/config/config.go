// Package config loads application configuration from environment variables.
// All variables use the STATSMD_ prefix.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Storage drivers accepted by STATSMD_STORAGE_DRIVER.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var storageDrivers = []string{DriverFile, DriverSQLite, DriverRedis, DriverPostgres, DriverMemory}

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Log         LogConfig
	CatalogPath string
	EventLog    bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	Host            string
	ShutdownTimeout time.Duration
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where the session snapshot is persisted.
type StorageConfig struct {
	Driver     string
	Dir        string
	SQLitePath string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings.
type CacheConfig struct {
	URL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STATSMD_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("STATSMD_SERVER_PORT", 8080),
			Host:            envStr("STATSMD_SERVER_HOST", "127.0.0.1"),
			ShutdownTimeout: time.Duration(envInt("STATSMD_SERVER_SHUTDOWN_TIMEOUT", 10)) * time.Second,
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(envStr("STATSMD_STORAGE_DRIVER", DriverFile)),
			Dir:        envStr("STATSMD_STORAGE_DIR", "./data"),
			SQLitePath: envStr("STATSMD_SQLITE_PATH", "./data/statsmd.db"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STATSMD_DATABASE_URL", ""),
			MaxConns: envInt("STATSMD_DATABASE_MAX_CONNS", 4),
			MinConns: envInt("STATSMD_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("STATSMD_CACHE_URL", ""),
		},
		Log: LogConfig{
			Level:  envStr("STATSMD_LOG_LEVEL", "info"),
			Format: envStr("STATSMD_LOG_FORMAT", "json"),
		},
		CatalogPath: envStr("STATSMD_CATALOG_PATH", ""),
		EventLog:    envBool("STATSMD_EVENT_LOG", false),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("STATSMD_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}

	if !slices.Contains(storageDrivers, c.Storage.Driver) {
		return fmt.Errorf("STATSMD_STORAGE_DRIVER must be one of %s, got %q",
			strings.Join(storageDrivers, ", "), c.Storage.Driver)
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("STATSMD_STORAGE_DIR is required for the file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("STATSMD_SQLITE_PATH is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Cache.URL == "" {
			return fmt.Errorf("STATSMD_CACHE_URL is required for the redis driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("STATSMD_DATABASE_URL is required for the postgres driver")
		}
	}

	if c.EventLog && c.Database.URL == "" {
		return fmt.Errorf("STATSMD_DATABASE_URL is required when STATSMD_EVENT_LOG is enabled")
	}

	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		return fmt.Errorf("STATSMD_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// NeedsDatabase reports whether a PostgreSQL pool must be opened.
func (c *Config) NeedsDatabase() bool {
	return c.Storage.Driver == DriverPostgres || c.EventLog
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
