package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "LOTTSIM_"

// ServerConfig holds configuration for the lottsched server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.lottsim/lottsim.db, ":memory:" for testing)
	MaxQuanta int    // Largest simulation a POST /runs may request
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		MaxQuanta: 1_000_000,
	}
}

// FromEnv overrides cfg with any LOTTSIM_ADDR, LOTTSIM_LOG_LEVEL,
// LOTTSIM_LOG_FORMAT, LOTTSIM_DB and LOTTSIM_MAX_QUANTA set in the environment.
func (cfg *ServerConfig) FromEnv() error {
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.DBPath, "DB")
	if v, ok := os.LookupEnv(EnvPrefix + "MAX_QUANTA"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%sMAX_QUANTA: want a positive integer, got %q", EnvPrefix, v)
		}
		cfg.MaxQuanta = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
		*dst = v
	}
}

// ResolveDBPath returns path unchanged when set, otherwise the default
// database under the user's home directory, creating its directory.
func ResolveDBPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".lottsim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return filepath.Join(dir, "lottsim.db"), nil
}
