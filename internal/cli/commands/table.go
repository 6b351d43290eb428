package commands

import (
	"fmt"

	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
)

// NewCreateTableCommand creates the create-table command.
func NewCreateTableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-table <name> <column-definition>...",
		Short: "Create a table if it does not exist",
		Long: `Create a table with the given column definitions.

Each definition is passed to the database as written, for example
"id integer PRIMARY KEY" or "name text NOT NULL". Creating a table that
already exists does nothing; a differing existing schema is reported as a
warning.`,
		Example: `  litedb create-table Users "id integer PRIMARY KEY" "name text NOT NULL" "priority integer"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				if err := h.CreateTable(cmd.Context(), args[0], args[1:]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.Out, "table %s ready\n", args[0])
				return err
			})
		},
	}
}

// NewAddColumnCommand creates the add-column command.
func NewAddColumnCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "add-column <table> <column-definition>",
		Short:   "Add a column to an existing table",
		Example: `  litedb add-column Users "last_name text"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				if err := h.AddColumn(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.Out, "column added to %s\n", args[0])
				return err
			})
		},
	}
}
