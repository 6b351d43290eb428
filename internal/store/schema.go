package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column describes one column of a table as reported by the engine.
type Column struct {
	Position   int
	Name       string
	Type       string
	NotNull    bool
	Default    *string
	PrimaryKey bool
}

// Tables lists user tables and views, excluding engine and migration bookkeeping tables.
func (h *Handle) Tables(ctx context.Context) ([]string, error) {
	if err := h.check("list tables"); err != nil {
		return nil, err
	}

	const query = `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE 'goose_%'
		ORDER BY name
	`
	rows, err := h.conn().QueryContext(ctx, query)
	if err != nil {
		return nil, newStatementError("list tables", query, err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, newStatementError("list tables", query, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newStatementError("list tables", query, err)
	}
	return tables, nil
}

// TableExists reports whether a table or view named table exists.
func (h *Handle) TableExists(ctx context.Context, table string) (bool, error) {
	if err := h.check("check table"); err != nil {
		return false, err
	}

	const query = `SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`
	var n int
	if err := h.conn().QueryRowContext(ctx, query, unquoteIdent(table)).Scan(&n); err != nil {
		return false, newStatementError("check table", query, err)
	}
	return n > 0, nil
}

// Columns describes the columns of table in declaration order.
func (h *Handle) Columns(ctx context.Context, table string) ([]Column, error) {
	if err := h.check("describe table"); err != nil {
		return nil, err
	}

	cols, err := h.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, newStatementError("describe table", "", fmt.Errorf("%w: %s", ErrTableNotFound, table))
	}
	return cols, nil
}

func (h *Handle) tableInfo(ctx context.Context, table string) ([]Column, error) {
	const query = `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`
	rows, err := h.conn().QueryContext(ctx, query, unquoteIdent(table))
	if err != nil {
		return nil, newStatementError("describe table", query, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var col Column
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, newStatementError("describe table", query, err)
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk > 0
		if dflt.Valid {
			d := dflt.String
			col.Default = &d
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, newStatementError("describe table", query, err)
	}
	return cols, nil
}

// columnNames returns the column names of table, or nil if it does not exist.
func (h *Handle) columnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := h.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names, nil
}

// tableConstraintKeywords start table-level constraints rather than column definitions.
var tableConstraintKeywords = map[string]bool{
	"CONSTRAINT": true,
	"PRIMARY":    true,
	"UNIQUE":     true,
	"CHECK":      true,
	"FOREIGN":    true,
}

// declaredColumnNames extracts column names from column definitions.
func declaredColumnNames(defs []string) []string {
	var names []string
	for _, def := range defs {
		name := firstIdent(strings.TrimSpace(def))
		if name == "" || tableConstraintKeywords[strings.ToUpper(name)] {
			continue
		}
		names = append(names, unquoteIdent(name))
	}
	return names
}

// firstIdent returns the first identifier of s, including its quotes.
func firstIdent(s string) string {
	if s == "" {
		return ""
	}
	if closer, ok := identQuotes[s[0]]; ok {
		if end := strings.IndexByte(s[1:], closer); end >= 0 {
			return s[:end+2]
		}
		return s
	}
	if end := strings.IndexAny(s, " \t\r\n("); end >= 0 {
		return s[:end]
	}
	return s
}

var identQuotes = map[byte]byte{'"': '"', '`': '`', '[': ']', '\'': '\''}

// unquoteIdent strips one level of identifier quoting.
func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if closer, ok := identQuotes[s[0]]; ok && s[len(s)-1] == closer {
		return s[1 : len(s)-1]
	}
	return s
}

// schemaDiff compares column names case-insensitively. missing are declared
// but absent from the table; extra exist in the table but were not declared.
func schemaDiff(existing, declared []string) (missing, extra []string) {
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[strings.ToLower(n)] = true
	}
	want := make(map[string]bool, len(declared))
	for _, n := range declared {
		want[strings.ToLower(n)] = true
		if !have[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	for _, n := range existing {
		if !want[strings.ToLower(n)] {
			extra = append(extra, n)
		}
	}
	return missing, extra
}
