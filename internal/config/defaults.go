// Package config holds defaults shared by the CLI and the store.
package config

import (
	"time"

	"github.com/leapstack-labs/litedb/internal/store"
)

// Default configuration values.
const (
	DefaultDatabase    = ".litedb/data.sqlite3"
	DefaultRelative    = true
	DefaultFormat      = "table"
	DefaultHistoryFile = ".litedb/history"
	DefaultBusyTimeout = 5 * time.Second
	EnvPrefix          = "LITEDB_"
)

// ConfigFileNames are searched, in order, in the project root.
var ConfigFileNames = []string{"litedb.yaml", "litedb.yml"}

// Formats lists the supported output formats.
var Formats = []string{"table", "json", "csv", "md", "markdown", "yaml"}

// ApplyStoreDefaults fills unset store options.
func ApplyStoreDefaults(c *store.Config) {
	if c == nil {
		return
	}
	if c.Path == "" {
		c.Path = DefaultDatabase
		c.Relative = DefaultRelative
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
}
