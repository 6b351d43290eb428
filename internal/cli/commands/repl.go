package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "litedb> "
	replContinuePrompt = "   ...> "
)

// lineReader is the part of *readline.Instance the REPL loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// repl runs statements typed by the user against one open handle.
type repl struct {
	h          *store.Handle
	in         lineReader
	out        io.Writer
	errOut     io.Writer
	format     string
	autocommit bool
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var autocommit bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive SQL shell",
		Long: `Start an interactive SQL shell on the database.

Statements end with a semicolon and may span lines. With --autocommit=false,
writes stay pending until .commit; leaving the shell discards them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				historyFile := c.Cfg.HistoryFile
				if historyFile != "" {
					if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
						c.Logger.Warn("history disabled", "error", err)
						historyFile = ""
					}
				}

				rl, err := readline.NewEx(&readline.Config{
					Prompt:          replPrompt,
					HistoryFile:     historyFile,
					AutoComplete:    newTableCompleter(cmd.Context(), h),
					InterruptPrompt: "^C",
					EOFPrompt:       ".quit",
				})
				if err != nil {
					return fmt.Errorf("failed to initialize REPL: %w", err)
				}
				defer func() { _ = rl.Close() }()

				_, _ = fmt.Fprintf(c.Out, "litedb shell (database: %s)\n", h.Path())
				_, _ = fmt.Fprintln(c.Out, "Type .help for commands, .quit to exit")
				_, _ = fmt.Fprintln(c.Out)

				r := &repl{
					h:          h,
					in:         rl,
					out:        c.Out,
					errOut:     c.ErrOut,
					format:     c.Cfg.Format,
					autocommit: autocommit,
				}
				return r.run(cmd.Context())
			})
		},
	}

	cmd.Flags().BoolVar(&autocommit, "autocommit", true, "Commit every statement as it runs")
	return cmd
}

func (r *repl) run(ctx context.Context) error {
	var buf strings.Builder
	for {
		line, err := r.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			r.in.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := r.dotCommand(ctx, line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			r.in.SetPrompt(replContinuePrompt)
			continue
		}
		r.in.SetPrompt(replPrompt)

		statement := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()

		if err := r.execute(ctx, statement); err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(r.out)
	}

	if r.h.InTransaction() {
		_, _ = fmt.Fprintln(r.errOut, "Warning: discarding uncommitted changes")
	}
	return nil
}

func (r *repl) execute(ctx context.Context, statement string) error {
	result, err := r.h.Execute(ctx, statement, r.autocommit)
	if err != nil {
		return err
	}
	return renderResult(r.out, result, r.format)
}

// dotCommand handles a shell command and reports whether the shell should exit.
func (r *repl) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	var err error
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(r.out)
	case ".tables":
		err = listTables(ctx, r.out, r.h, r.format)
	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(r.errOut, "Usage: .schema <table>")
			return false
		}
		err = showSchema(ctx, r.out, r.h, parts[1], r.format)
	case ".commit":
		if err = r.h.Commit(ctx); err == nil {
			_, _ = fmt.Fprintln(r.out, "committed")
		}
	case ".rollback":
		if err = r.h.Rollback(ctx); err == nil {
			_, _ = fmt.Fprintln(r.out, "rolled back")
		}
	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	if err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List all tables and views
  .schema <name>  Show the columns of a table
  .commit         Commit pending changes
  .rollback       Discard pending changes
  .quit / .exit   Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names and dot-commands.
func newTableCompleter(ctx context.Context, h *store.Handle) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	// Completion is best effort; a listing failure leaves only the dot-commands.
	if names, err := h.Tables(ctx); err == nil {
		for _, name := range names {
			items = append(items, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".commit"),
		readline.PcItem(".rollback"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
