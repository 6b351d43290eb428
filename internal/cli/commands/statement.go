package commands

import (
	"fmt"

	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
)

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	var (
		opts  paramOptions
		input string
	)

	cmd := &cobra.Command{
		Use:   "select [SQL]",
		Short: "Run a query and print the rows",
		Long: `Run a read statement and print every row it returns.

Parameters bind to ? placeholders left to right. Each --arg is decoded as
a YAML scalar: 1 binds an integer, 1.5 a float, null a NULL and '"007"'
the text 007.`,
		Example: `  litedb select "SELECT * FROM Users WHERE priority > ?" --arg 2
  litedb select "SELECT * FROM Users" --format json
  echo "SELECT count(*) FROM Users" | litedb select`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			params, err := opts.params()
			if err != nil {
				return err
			}

			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				result, err := h.Query(cmd.Context(), statement, params...)
				if err != nil {
					return err
				}
				return c.Render(result)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}

// NewMutateCommand creates the mutate command.
func NewMutateCommand() *cobra.Command {
	var (
		opts  paramOptions
		input string
	)

	cmd := &cobra.Command{
		Use:     "mutate [SQL]",
		Short:   "Run an insert, update or delete and commit it",
		Example: `  litedb mutate "INSERT INTO Users (name) VALUES (?)" --arg Joe`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			params, err := opts.params()
			if err != nil {
				return err
			}

			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				if err := h.Mutate(cmd.Context(), statement, params...); err != nil {
					return err
				}
				_, err := fmt.Fprintln(c.Out, "OK")
				return err
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var (
		opts   paramOptions
		input  string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run any statement",
		Long: `Run an arbitrary statement.

Statements that return rows (SELECT, PRAGMA, ... RETURNING) print them;
others print the number of affected rows. Without --commit, changes are
rolled back when the command exits, which makes exec a dry run.`,
		Example: `  litedb exec "UPDATE Users SET priority = 1" --commit
  litedb exec "DELETE FROM Users RETURNING id"
  litedb exec "PRAGMA journal_mode"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			params, err := opts.params()
			if err != nil {
				return err
			}

			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				result, err := h.Execute(cmd.Context(), statement, commit, params...)
				if err != nil {
					return err
				}
				if h.InTransaction() {
					c.Logger.Warn("changes not committed; pass --commit to keep them")
				}
				return c.Render(result)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the statement before exiting")
	return cmd
}
