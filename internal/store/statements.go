package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// CreateTable creates table name from the given column definitions, e.g.
// "id integer PRIMARY KEY". If the table already exists the call is a
// no-op even when the definitions differ; a differing schema is logged
// as a warning but never altered.
func (h *Handle) CreateTable(ctx context.Context, name string, columns []string) error {
	if err := h.check("create table"); err != nil {
		return err
	}

	// Best effort: a failed lookup only loses the mismatch warning.
	existing, _ := h.columnNames(ctx, name)

	statement := buildCreateTable(name, columns)
	h.logger.Debug("create table", "table", name, "sql", statement)
	if _, err := h.conn().ExecContext(ctx, statement); err != nil {
		return newStatementError("create table", statement, err)
	}

	if len(existing) > 0 {
		missing, extra := schemaDiff(existing, declaredColumnNames(columns))
		if len(missing) > 0 || len(extra) > 0 {
			h.logger.Warn("table already exists with a different schema",
				"table", name, "missing_columns", missing, "undeclared_columns", extra)
		}
	}
	return nil
}

// AddColumn appends a column to an existing table, e.g. "last_name text".
func (h *Handle) AddColumn(ctx context.Context, table, columnDefinition string) error {
	if err := h.check("add column"); err != nil {
		return err
	}

	statement := "ALTER TABLE " + table + " ADD COLUMN " + columnDefinition
	h.logger.Debug("add column", "table", table, "sql", statement)
	if _, err := h.conn().ExecContext(ctx, statement); err != nil {
		return newStatementError("add column", statement, err)
	}
	return nil
}

// Select runs a read statement, binding params to its ? placeholders in
// order, and returns every row. No matches yields an empty, non-nil slice.
func (h *Handle) Select(ctx context.Context, statement string, params ...any) ([]Row, error) {
	result, err := h.query(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// Query is Select that also reports the result columns in statement order.
func (h *Handle) Query(ctx context.Context, statement string, params ...any) (*Result, error) {
	return h.query(ctx, statement, params)
}

func (h *Handle) query(ctx context.Context, statement string, params []any) (*Result, error) {
	if err := h.check("select"); err != nil {
		return nil, err
	}

	h.logger.Debug("select", "sql", statement, "params", len(params))
	result, err := run(ctx, h.conn(), statement, true, params)
	if err != nil {
		return nil, newStatementError("select", statement, err)
	}
	return result, nil
}

// Mutate runs an insert, update or delete statement and commits before
// returning. Pending work from Execute is committed with it.
func (h *Handle) Mutate(ctx context.Context, statement string, params ...any) error {
	if err := h.check("mutate"); err != nil {
		return err
	}

	tx, owned, err := h.begin(ctx)
	if err != nil {
		return err
	}

	h.logger.Debug("mutate", "sql", statement, "params", len(params))
	if _, err := tx.ExecContext(ctx, statement, params...); err != nil {
		// A failed statement does not undo earlier pending work.
		if owned {
			h.discard()
		}
		return newStatementError("mutate", statement, err)
	}
	return h.Commit(ctx)
}

// Execute runs an arbitrary statement. Everything except plain reads
// (SELECT, VALUES, PRAGMA, EXPLAIN) and transaction control runs inside a
// transaction that stays pending until commit is requested here, by Mutate
// or by Commit. This includes DDL and WITH ... INSERT/UPDATE/DELETE. Row-returning statements fill
// Result.Columns and Result.Rows; others report RowsAffected and LastInsertID.
func (h *Handle) Execute(ctx context.Context, statement string, commit bool, params ...any) (*Result, error) {
	if err := h.check("execute"); err != nil {
		return nil, err
	}

	returnsRows, writes := classify(statement)

	q := h.conn()
	owned := false
	if writes {
		tx, began, err := h.begin(ctx)
		if err != nil {
			return nil, err
		}
		q, owned = tx, began
	}

	h.logger.Debug("execute", "sql", statement, "params", len(params), "commit", commit)
	result, err := run(ctx, q, statement, returnsRows, params)
	if err != nil {
		if owned {
			h.discard()
		}
		return nil, newStatementError("execute", statement, err)
	}

	if commit {
		if err := h.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Commit commits pending work. It is a no-op when nothing is pending.
func (h *Handle) Commit(_ context.Context) error {
	if err := h.check("commit"); err != nil {
		return err
	}
	if h.tx == nil {
		return nil
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Commit(); err != nil {
		return newStatementError("commit", "", err)
	}
	h.logger.Debug("committed transaction")
	return nil
}

// Rollback discards pending work. It is a no-op when nothing is pending.
func (h *Handle) Rollback(_ context.Context) error {
	if err := h.check("rollback"); err != nil {
		return err
	}
	if h.tx == nil {
		return nil
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return newStatementError("rollback", "", err)
	}
	h.logger.Debug("rolled back transaction")
	return nil
}

// begin returns the pending transaction, starting one if needed.
// owned reports whether this call started it.
func (h *Handle) begin(ctx context.Context) (tx *sql.Tx, owned bool, err error) {
	if h.tx != nil {
		return h.tx, false, nil
	}
	// The transaction outlives this call, so it must not be bound to ctx cancellation.
	tx, err = h.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, false, newStatementError("begin transaction", "", err)
	}
	h.tx = tx
	return tx, true, nil
}

func (h *Handle) discard() {
	if h.tx == nil {
		return
	}
	_ = h.tx.Rollback()
	h.tx = nil
}

func run(ctx context.Context, q querier, statement string, returnsRows bool, params []any) (*Result, error) {
	if returnsRows {
		rows, err := q.QueryContext(ctx, statement, params...)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		data, cols, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		return &Result{Columns: cols, Rows: data}, nil
	}

	res, err := q.ExecContext(ctx, statement, params...)
	if err != nil {
		return nil, err
	}
	result := &Result{Rows: []Row{}}
	// Both are informational; the driver always reports them for SQLite.
	result.RowsAffected, _ = res.RowsAffected()
	result.LastInsertID, _ = res.LastInsertId()
	return result, nil
}

func buildCreateTable(name string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(name)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(")")
	return b.String()
}
