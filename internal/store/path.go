package store

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// resolvePath returns the effective database path for cfg, creating the
// containing directories of relative paths.
func resolvePath(cfg Config) (string, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "", fmt.Errorf("%w: database path is required", ErrConnection)
	}
	if !cfg.Relative || path == MemoryPath {
		return path, nil
	}

	base := cfg.BaseDir
	if base == "" {
		var err error
		base, err = executableDir()
		if err != nil {
			return "", fmt.Errorf("%w: failed to determine base directory: %w", ErrDirectoryCreation, err)
		}
	}

	full := filepath.Join(base, path)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDirectoryCreation, dir, err)
	}
	return full, nil
}

// executableDir is the fixed base location for relative paths when no BaseDir is configured.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// dsn builds the modernc.org/sqlite data source name for path.
// The file: form keeps mode=ro visible to SQLite; _pragma and
// _time_format are consumed by the driver.
func (c Config) dsn(path string) string {
	q := url.Values{}
	q.Set("_time_format", "sqlite")
	if c.ForeignKeys {
		q.Add("_pragma", "foreign_keys(1)")
	}
	if c.BusyTimeout > 0 {
		q.Add("_pragma", "busy_timeout("+strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10)+")")
	}
	if c.ReadOnly {
		q.Set("mode", "ro")
	}
	return "file:" + uriPathEscaper.Replace(path) + "?" + q.Encode()
}

// uriPathEscaper escapes the characters SQLite decodes or splits on in a file: URI path.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
