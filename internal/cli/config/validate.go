package config

import (
	"fmt"
	"slices"
	"strings"

	sharedcfg "github.com/leapstack-labs/litedb/internal/config"
)

// Validate checks option values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database path is required")
	}
	if !slices.Contains(sharedcfg.Formats, c.Format) {
		return fmt.Errorf("unknown output format %q (valid: %s)", c.Format, strings.Join(sharedcfg.Formats, ", "))
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busy_timeout must not be negative")
	}
	return nil
}
