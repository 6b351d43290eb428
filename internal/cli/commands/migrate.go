package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <dir>",
		Short: "Apply SQL migrations from a directory",
		Long: `Apply goose SQL migrations (NNNNN_name.sql files with -- +goose Up
sections) from a directory. Already applied migrations are skipped.`,
		Example: `  litedb migrate ./migrations`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve migrations directory: %w", err)
			}
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("migrations directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("migrations directory: %s is not a directory", dir)
			}

			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				if err := h.Migrate(cmd.Context(), os.DirFS(dir), "."); err != nil {
					return err
				}
				version, err := h.MigrationVersion(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.Out, "database at version %d\n", version)
				return err
			})
		},
	}
}
