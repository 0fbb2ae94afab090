// Package config handles application configuration management.
package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all Satchel data (~/.satchel)
	BaseDir string

	// Server holds the remote course server settings.
	Server ServerConfig

	// RetentionDays controls how far back synced ledger entries and
	// messages are kept before eviction.
	RetentionDays int

	// ForceOffline makes the client behave as if the network were down,
	// regardless of what probing would report.
	ForceOffline bool
}

// ServerConfig holds remote server settings.
type ServerConfig struct {
	URL       string
	Token     string
	RateLimit int

	// Messaging enables the server's message channel. Off by default:
	// without it, conversations are local-only.
	Messaging bool

	// ProbeInterval is the connectivity polling interval in seconds.
	ProbeInterval int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("SATCHEL_BASE_DIR"); dir != "" {
		cfg.BaseDir = dir
	}
	if server := os.Getenv("SATCHEL_SERVER"); server != "" {
		cfg.Server.URL = server
	}
	if token := os.Getenv("SATCHEL_TOKEN"); token != "" {
		cfg.Server.Token = token
	}
	if v := os.Getenv("SATCHEL_MESSAGING"); v != "" {
		cfg.Server.Messaging, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SATCHEL_OFFLINE"); v != "" {
		cfg.ForceOffline, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SATCHEL_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	dirs := []string{
		cfg.BaseDir,
		LogDir(cfg),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
