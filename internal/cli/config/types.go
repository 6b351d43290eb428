// Package config provides configuration management for the litedb CLI.
package config

import (
	"log/slog"
	"time"

	sharedcfg "github.com/leapstack-labs/litedb/internal/config"
	"github.com/leapstack-labs/litedb/internal/store"
)

// Config holds all CLI configuration options.
type Config struct {
	Database    string        `koanf:"database"`
	Relative    bool          `koanf:"relative"`
	BaseDir     string        `koanf:"base_dir"`
	ForeignKeys bool          `koanf:"foreign_keys"`
	BusyTimeout time.Duration `koanf:"busy_timeout"`
	ReadOnly    bool          `koanf:"read_only"`
	Verbose     bool          `koanf:"verbose"`
	Format      string        `koanf:"format"`
	HistoryFile string        `koanf:"history_file"`

	// ProjectRoot is the directory relative paths are anchored to.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDatabase    = sharedcfg.DefaultDatabase
	DefaultFormat      = sharedcfg.DefaultFormat
	DefaultHistoryFile = sharedcfg.DefaultHistoryFile
)

// StoreConfig converts the CLI configuration into handle options.
func (c *Config) StoreConfig(logger *slog.Logger) store.Config {
	cfg := store.Config{
		Path:        c.Database,
		Relative:    c.Relative,
		BaseDir:     c.BaseDir,
		ForeignKeys: c.ForeignKeys,
		BusyTimeout: c.BusyTimeout,
		ReadOnly:    c.ReadOnly,
		Logger:      logger,
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = c.ProjectRoot
	}
	sharedcfg.ApplyStoreDefaults(&cfg)
	return cfg
}
