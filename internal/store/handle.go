// Package store provides a handle over a single embedded SQLite database
// connection. It formats table DDL, binds positional parameters and returns
// query results as column-name keyed rows. Query processing, storage and
// locking are left to the engine (modernc.org/sqlite).
//
// A Handle is not safe for concurrent use.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	// sqlite driver (pure Go).
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// State is the lifecycle state of a Handle.
type State int

// Handle states. Closed is terminal.
const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unopened"
	}
}

// Config holds handle configuration.
type Config struct {
	// Path is the database file path, or MemoryPath.
	Path string
	// Relative resolves Path against BaseDir and creates missing directories.
	Relative bool
	// BaseDir is the base location for relative paths.
	// Defaults to the directory of the running executable.
	BaseDir string
	// ForeignKeys enables foreign key enforcement on the connection.
	ForeignKeys bool
	// BusyTimeout makes the engine wait for file locks held by other processes.
	BusyTimeout time.Duration
	// ReadOnly opens the database file in read-only mode.
	ReadOnly bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Row is one result row keyed by column name. Values are int64, float64,
// string, []byte or nil.
type Row map[string]any

// Result is the result handle returned by Execute.
type Result struct {
	// Columns lists the result columns of row-returning statements.
	Columns []string
	// Rows holds the returned rows; empty for statements that return none.
	Rows []Row
	// RowsAffected is reported for statements that do not return rows.
	RowsAffected int64
	// LastInsertID is reported for statements that do not return rows.
	LastInsertID int64
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Handle owns one database connection.
type Handle struct {
	db     *sql.DB
	tx     *sql.Tx // pending transaction started by Execute without commit
	path   string
	id     string
	state  State
	logger *slog.Logger
}

// Open resolves the configured path and connects to the database immediately.
func Open(ctx context.Context, cfg Config) (*Handle, error) {
	path, err := resolvePath(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %w", ErrConnection, path, err)
	}
	// One engine connection per handle; this also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w at %s: %w", ErrConnection, path, err)
	}

	h := newHandle(db, path, cfg.Logger)
	h.logger.Debug("opened database", "path", path, "read_only", cfg.ReadOnly)
	return h, nil
}

// New wraps an already opened database. The handle takes ownership of db
// and closes it on Close.
func New(db *sql.DB, logger *slog.Logger) *Handle {
	return newHandle(db, "", logger)
}

func newHandle(db *sql.DB, path string, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.New().String()
	return &Handle{
		db:     db,
		path:   path,
		id:     id,
		state:  StateOpen,
		logger: logger.With("handle_id", id),
	}
}

// With opens a handle, passes it to fn and closes it on every return path.
func With(ctx context.Context, cfg Config, fn func(*Handle) error) (err error) {
	h, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()
	return fn(h)
}

// Path returns the resolved database path. It is empty for handles created with New.
func (h *Handle) Path() string {
	return h.path
}

// ID returns the handle identifier attached to its log entries.
func (h *Handle) ID() string {
	return h.id
}

// State returns the lifecycle state of the handle.
func (h *Handle) State() State {
	if h == nil {
		return StateUnopened
	}
	return h.state
}

// InTransaction reports whether uncommitted work from Execute is pending.
func (h *Handle) InTransaction() bool {
	return h != nil && h.tx != nil
}

// Close rolls back pending work and releases the connection.
// Closing a closed or unopened handle is a no-op.
func (h *Handle) Close() error {
	if h == nil || h.state != StateOpen {
		return nil
	}
	h.state = StateClosed

	var errs []error
	if h.tx != nil {
		h.logger.Warn("discarding uncommitted changes on close")
		if err := h.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("failed to roll back pending transaction: %w", err))
		}
		h.tx = nil
	}
	if err := h.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	h.logger.Debug("closed database", "path", h.path)
	return errors.Join(errs...)
}

// check guards every operation on the handle state.
func (h *Handle) check(op string) error {
	switch h.State() {
	case StateOpen:
		return nil
	case StateClosed:
		return fmt.Errorf("cannot %s: %w", op, ErrClosed)
	default:
		return fmt.Errorf("cannot %s: %w: handle was never opened", op, ErrConnection)
	}
}

// conn routes statements through the pending transaction when there is one.
func (h *Handle) conn() querier {
	if h.tx != nil {
		return h.tx
	}
	return h.db
}
