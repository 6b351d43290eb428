package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				return listTables(cmd.Context(), c.Out, h, c.Cfg.Format)
			})
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			return c.WithStore(cmd.Context(), func(h *store.Handle) error {
				return showSchema(cmd.Context(), c.Out, h, args[0], c.Cfg.Format)
			})
		},
	}
}

func listTables(ctx context.Context, w io.Writer, h *store.Handle, format string) error {
	names, err := h.Tables(ctx)
	if err != nil {
		return err
	}

	result := &store.Result{Columns: []string{"name"}, Rows: make([]store.Row, 0, len(names))}
	for _, name := range names {
		result.Rows = append(result.Rows, store.Row{"name": name})
	}
	return renderResult(w, result, format)
}

// columnInfo represents schema column information.
type columnInfo struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	PK       bool   `json:"pk" yaml:"pk"`
}

type schemaOutput struct {
	Name    string       `json:"name" yaml:"name"`
	Columns []columnInfo `json:"columns" yaml:"columns"`
}

func showSchema(ctx context.Context, w io.Writer, h *store.Handle, tableName, format string) error {
	cols, err := h.Columns(ctx, tableName)
	if err != nil {
		return err
	}

	out := schemaOutput{Name: tableName, Columns: make([]columnInfo, 0, len(cols))}
	for _, col := range cols {
		info := columnInfo{
			Name:     col.Name,
			Type:     col.Type,
			Nullable: !col.NotNull && !col.PrimaryKey,
			PK:       col.PrimaryKey,
		}
		if col.Default != nil {
			info.Default = *col.Default
		}
		out.Columns = append(out.Columns, info)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return encodeYAML(w, out)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(tableStyle(w))
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "PK"})
	for _, col := range out.Columns {
		nullable := "YES"
		if !col.Nullable {
			nullable = "NO"
		}
		pk := ""
		if col.PK {
			pk = "yes"
		}
		t.AppendRow(table.Row{col.Name, col.Type, nullable, col.Default, pk})
	}
	switch format {
	case "md", "markdown":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		_, _ = fmt.Fprintf(w, "Table: %s\n", tableName)
		_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))
		t.Render()
	}
	return nil
}
