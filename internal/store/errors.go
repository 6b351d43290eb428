package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDirectoryCreation indicates the directory holding a relative database path could not be created.
	ErrDirectoryCreation = errors.New("failed to create database directory")

	// ErrConnection indicates the engine could not open or create the database file.
	ErrConnection = errors.New("failed to connect to database")

	// ErrStatement matches every SQL execution failure returned as a *StatementError.
	ErrStatement = errors.New("statement failed")

	// ErrClosed is returned when an operation is attempted on a closed handle.
	ErrClosed = errors.New("database handle is closed")

	// ErrPendingTransaction is returned by operations that cannot run while Execute work is uncommitted.
	ErrPendingTransaction = errors.New("uncommitted changes pending")

	// ErrTableNotFound is returned by schema lookups for a table that does not exist.
	ErrTableNotFound = errors.New("table not found")
)

// StatementError describes a failed SQL statement.
// errors.Is(err, ErrStatement) reports true for every StatementError.
type StatementError struct {
	// Op is the handle operation that failed, e.g. "select".
	Op string
	// SQL is the statement text, empty for commit/rollback failures.
	SQL string
	// Code is the SQLite result code reported by the engine, or 0 when unknown.
	Code int
	// Err is the underlying driver error.
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Is makes StatementError match ErrStatement.
func (e *StatementError) Is(target error) bool {
	return target == ErrStatement
}

func newStatementError(op, statement string, err error) *StatementError {
	return &StatementError{
		Op:   op,
		SQL:  statement,
		Code: sqliteCode(err),
		Err:  err,
	}
}

// sqliteCode extracts the (possibly extended) result code of a driver error.
func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	return sqliteErr.Code()
}

// IsConstraint reports whether err was caused by a constraint violation
// (NOT NULL, UNIQUE, PRIMARY KEY, CHECK or FOREIGN KEY).
func IsConstraint(err error) bool {
	code := sqliteCode(err)
	return code != 0 && code&0xff == sqlite3.SQLITE_CONSTRAINT
}

// IsBusy reports whether err was caused by another connection holding a lock on the database file.
func IsBusy(err error) bool {
	code := sqliteCode(err) & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
