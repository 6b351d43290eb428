// Package main provides tests for the litedb CLI.
package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/litedb/internal/cli"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "litedb") {
		t.Errorf("version output should contain 'litedb', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help command error = %v", err)
	}

	for _, want := range []string{"create-table", "select", "mutate", "exec", "repl"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output should list %q, got: %s", want, output)
		}
	}
}

func TestUsersScenario(t *testing.T) {
	t.Chdir(t.TempDir())
	db := filepath.Join("nested", "users.sqlite3")

	steps := [][]string{
		{"--db", db, "create-table", "Users", "id integer PRIMARY KEY", "name text NOT NULL", "priority integer"},
		{"--db", db, "mutate", "INSERT INTO Users (name) VALUES (?)", "--arg", "Joe"},
	}
	for _, args := range steps {
		if output, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, output)
		}
	}

	output, err := runCLI(t, "--db", db, "-f", "csv", "select", "SELECT * FROM Users")
	if err != nil {
		t.Fatalf("select error = %v", err)
	}
	if !strings.Contains(output, "id,name,priority\n1,Joe,NULL") {
		t.Errorf("unexpected select output: %s", output)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}
