// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
)

// SetupTestProject creates a temporary project with a litedb.yaml pointing
// at a relative database and a migrations directory. It returns the
// project root and the config file path.
func SetupTestProject(t *testing.T) (root, configFile string) {
	t.Helper()

	root = t.TempDir()
	migrations := filepath.Join(root, "migrations")
	if err := os.MkdirAll(migrations, 0o750); err != nil {
		t.Fatalf("failed to create directory %s: %v", migrations, err)
	}

	usersMigration := `-- +goose Up
CREATE TABLE Users (id integer PRIMARY KEY, name text NOT NULL, priority integer);

-- +goose Down
DROP TABLE Users;
`
	if err := os.WriteFile(filepath.Join(migrations, "00001_users.sql"), []byte(usersMigration), 0o600); err != nil {
		t.Fatalf("failed to create 00001_users.sql: %v", err)
	}

	configFile = filepath.Join(root, "litedb.yaml")
	cfg := `database: data/test.sqlite3
relative: true
foreign_keys: true
busy_timeout: 1s
`
	if err := os.WriteFile(configFile, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create litedb.yaml: %v", err)
	}

	return root, configFile
}

// RunCommand executes cmd with args, returning captured stdout and stderr.
func RunCommand(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(bytes.NewReader(nil))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
