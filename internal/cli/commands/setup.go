package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/litedb/internal/cli/config"
	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

// NewCommandContext collects the config and logger stored on the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &CommandContext{
		Cfg:    config.FromContext(ctx),
		Logger: config.GetLogger(ctx),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}
}

// WithStore opens the configured database, runs fn and closes it again.
func (c *CommandContext) WithStore(ctx context.Context, fn func(*store.Handle) error) error {
	return store.With(ctx, c.Cfg.StoreConfig(c.Logger), fn)
}

// Render writes result in the configured output format.
func (c *CommandContext) Render(result *store.Result) error {
	return renderResult(c.Out, result, c.Cfg.Format)
}

// readSQL returns the statement from args, the input file or piped stdin.
func readSQL(cmd *cobra.Command, args []string, input string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
	}
	content, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	statement := strings.TrimSpace(string(content))
	if statement == "" {
		return "", fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
	}
	return statement, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int on supported platforms
}
