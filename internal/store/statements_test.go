package store

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/litedb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usersColumns = []string{"id integer PRIMARY KEY", "name text NOT NULL", "priority integer"}

func TestHandle_UsersScenario(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)

	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name) VALUES (?)", "Joe"))

	rows, err := h.Select(ctx, "SELECT * FROM Users")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(1), "name": "Joe", "priority": nil}}, rows)
}

func TestHandle_CreateTableIdempotent(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)

	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	before, err := h.Columns(ctx, "Users")
	require.NoError(t, err)

	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	after, err := h.Columns(ctx, "Users")
	require.NoError(t, err)

	assert.Equal(t, before, after)
	require.Len(t, after, 3)
	assert.Equal(t, "id", after[0].Name)
	assert.True(t, after[0].PrimaryKey)
	assert.True(t, after[1].NotNull)
	assert.True(t, strings.EqualFold("integer", after[2].Type), "declared type %q", after[2].Type)
}

func TestHandle_CreateTableSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	logger, buf := testutil.NewCaptureLogger(t, slog.LevelWarn)
	h, err := Open(ctx, Config{Path: MemoryPath, Logger: logger})
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	assert.Empty(t, buf.String())

	// Same table, different definition: still a no-op, but reported.
	require.NoError(t, h.CreateTable(ctx, "Users", []string{"id integer PRIMARY KEY", "email text"}))

	cols, err := h.Columns(ctx, "Users")
	require.NoError(t, err)
	assert.Len(t, cols, 3, "existing table must not be altered")

	out := buf.String()
	assert.Contains(t, out, "table already exists with a different schema")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "priority")
}

func TestHandle_CreateTableMalformed(t *testing.T) {
	h := setupTestHandle(t)

	err := h.CreateTable(context.Background(), "broken", []string{"id integer PRIMARY KEY PRIMARY KEY KEY"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatement)

	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "create table", stmtErr.Op)
	assert.Contains(t, stmtErr.SQL, "CREATE TABLE IF NOT EXISTS broken")
}

func TestHandle_SelectEmptyTable(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))

	rows, err := h.Select(ctx, "SELECT * FROM Users")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestHandle_SelectWithParams(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	for _, name := range []string{"Joe", "Ann", "Bob"} {
		require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name, priority) VALUES (?, ?)", name, len(name)))
	}

	rows, err := h.Select(ctx, "SELECT name FROM Users WHERE name = ? OR id = ? ORDER BY id", "Bob", 1)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "Joe"}, {"name": "Bob"}}, rows)
}

func TestHandle_RoundTripValues(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "samples", []string{
		"id integer PRIMARY KEY",
		"i integer",
		"f real",
		"s text",
		"b blob",
		"n text",
	}))

	require.NoError(t, h.Mutate(ctx,
		"INSERT INTO samples (i, f, s, b) VALUES (?, ?, ?, ?)",
		int64(-7), 2.5, "héllo", []byte{0x00, 0xff}))

	rows, err := h.Select(ctx, "SELECT i, f, s, b, n FROM samples")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		"i": int64(-7),
		"f": 2.5,
		"s": "héllo",
		"b": []byte{0x00, 0xff},
		"n": nil,
	}, rows[0])
}

func TestHandle_AddColumn(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name) VALUES (?)", "Joe"))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name) VALUES (?)", "Ann"))

	require.NoError(t, h.AddColumn(ctx, "Users", "last_name text"))

	rows, err := h.Select(ctx, "SELECT last_name FROM Users")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"last_name": nil}, {"last_name": nil}}, rows)

	t.Run("duplicate column", func(t *testing.T) {
		err := h.AddColumn(ctx, "Users", "last_name text")
		assert.ErrorIs(t, err, ErrStatement)
	})

	t.Run("missing table", func(t *testing.T) {
		err := h.AddColumn(ctx, "Nobody", "x text")
		assert.ErrorIs(t, err, ErrStatement)
	})
}

func TestHandle_MalformedSelectKeepsHandleUsable(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))

	rows, err := h.Select(ctx, "SELEC * FRM Users")
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrStatement)

	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "select", stmtErr.Op)
	assert.NotZero(t, stmtErr.Code)

	assert.Equal(t, StateOpen, h.State())
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name) VALUES (?)", "Joe"))
	rows, err = h.Select(ctx, "SELECT name FROM Users")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHandle_MutateConstraintViolation(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))

	err := h.Mutate(ctx, "INSERT INTO Users (priority) VALUES (?)", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatement)
	assert.True(t, IsConstraint(err))
	assert.False(t, IsBusy(err))
	assert.False(t, h.InTransaction())

	rows, err := h.Select(ctx, "SELECT * FROM Users")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandle_MutateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name, priority) VALUES (?, ?)", "Joe", 1))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name, priority) VALUES (?, ?)", "Ann", 2))

	require.NoError(t, h.Mutate(ctx, "UPDATE Users SET priority = ? WHERE name = ?", 9, "Joe"))
	require.NoError(t, h.Mutate(ctx, "DELETE FROM Users WHERE name = ?", "Ann"))

	rows, err := h.Select(ctx, "SELECT name, priority FROM Users")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "Joe", "priority": int64(9)}}, rows)
}

func TestHandle_MutatePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	h := openFile(t, path)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name) VALUES (?)", "Joe"))
	require.NoError(t, h.Close())

	reopened := openFile(t, path)
	rows, err := reopened.Select(ctx, "SELECT name FROM Users")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "Joe"}}, rows)
}

func TestHandle_Execute(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)

	res, err := h.Execute(ctx, "CREATE TABLE Users (id integer PRIMARY KEY, name text NOT NULL, priority integer)", true)
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Columns)

	res, err = h.Execute(ctx, "INSERT INTO Users (name) VALUES (?), (?)", true, "Joe", "Ann")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)
	assert.Equal(t, int64(2), res.LastInsertID)

	res, err = h.Execute(ctx, "SELECT id, name FROM Users WHERE id = ?", false, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, []Row{{"id": int64(1), "name": "Joe"}}, res.Rows)
	assert.False(t, h.InTransaction())

	res, err = h.Execute(ctx, "UPDATE Users SET priority = 5 WHERE name = ? RETURNING id, priority", true, "Ann")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(2), "priority": int64(5)}}, res.Rows)

	res, err = h.Execute(ctx, "PRAGMA table_info(Users)", false)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
}

func TestHandle_ExecuteWithoutCommit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pending.db")

	h := openFile(t, path)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))

	_, err := h.Execute(ctx, "INSERT INTO Users (name) VALUES (?)", false, "Joe")
	require.NoError(t, err)
	assert.True(t, h.InTransaction())

	// Pending work is visible through the same handle.
	rows, err := h.Select(ctx, "SELECT name FROM Users")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Closing discards it.
	require.NoError(t, h.Close())

	reopened := openFile(t, path)
	rows, err = reopened.Select(ctx, "SELECT name FROM Users")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandle_ExecuteCTEWriteStaysPending(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)

	require.NoError(t, h.CreateTable(ctx, "T", []string{"x integer"}))

	_, err := h.Execute(ctx, "WITH v(a) AS (SELECT 1) INSERT INTO T SELECT a FROM v", false)
	require.NoError(t, err)
	assert.True(t, h.InTransaction())

	require.NoError(t, h.Rollback(ctx))
	rows, err := h.Select(ctx, "SELECT x FROM T")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandle_ExecuteDDLWithoutCommit(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)

	_, err := h.Execute(ctx, "CREATE TABLE scratch (id integer)", false)
	require.NoError(t, err)
	assert.True(t, h.InTransaction())

	require.NoError(t, h.Rollback(ctx))
	exists, err := h.TableExists(ctx, "scratch")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHandle_PendingWorkFinishers(t *testing.T) {
	tests := []struct {
		name     string
		finish   func(ctx context.Context, h *Handle) error
		wantRows int
	}{
		{
			name:     "commit",
			finish:   func(ctx context.Context, h *Handle) error { return h.Commit(ctx) },
			wantRows: 1,
		},
		{
			name:     "rollback",
			finish:   func(ctx context.Context, h *Handle) error { return h.Rollback(ctx) },
			wantRows: 0,
		},
		{
			name: "mutate commits earlier work",
			finish: func(ctx context.Context, h *Handle) error {
				return h.Mutate(ctx, "UPDATE Users SET priority = 1")
			},
			wantRows: 1,
		},
		{
			name: "execute with commit",
			finish: func(ctx context.Context, h *Handle) error {
				_, err := h.Execute(ctx, "SELECT 1", true)
				return err
			},
			wantRows: 1,
		},
		{
			name: "failed mutate keeps pending work",
			finish: func(ctx context.Context, h *Handle) error {
				if err := h.Mutate(ctx, "INSERT INTO Users (priority) VALUES (1)"); !errors.Is(err, ErrStatement) {
					return errors.New("expected statement error")
				}
				if !h.InTransaction() {
					return errors.New("pending work was dropped")
				}
				return h.Commit(ctx)
			},
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "finish.db")

			h := openFile(t, path)
			require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
			_, err := h.Execute(ctx, "INSERT INTO Users (name) VALUES (?)", false, "Joe")
			require.NoError(t, err)

			require.NoError(t, tt.finish(ctx, h))
			assert.False(t, h.InTransaction())
			require.NoError(t, h.Close())

			reopened := openFile(t, path)
			rows, err := reopened.Select(ctx, "SELECT * FROM Users")
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestHandle_CommitWithoutPendingWork(t *testing.T) {
	h := setupTestHandle(t)

	assert.NoError(t, h.Commit(context.Background()))
	assert.NoError(t, h.Rollback(context.Background()))
}

func TestBuildCreateTable(t *testing.T) {
	got := buildCreateTable("Users", usersColumns)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS Users (id integer PRIMARY KEY, name text NOT NULL, priority integer)",
		got)
}

func TestHandle_QueryKeepsColumnOrder(t *testing.T) {
	ctx := context.Background()
	h := setupTestHandle(t)
	require.NoError(t, h.CreateTable(ctx, "Users", usersColumns))
	require.NoError(t, h.Mutate(ctx, "INSERT INTO Users (name, priority) VALUES (?, ?)", "Joe", 3))

	result, err := h.Query(ctx, "SELECT priority, name, id FROM Users")
	require.NoError(t, err)
	assert.Equal(t, []string{"priority", "name", "id"}, result.Columns)
	assert.Equal(t, []Row{{"id": int64(1), "name": "Joe", "priority": int64(3)}}, result.Rows)

	result, err = h.Query(ctx, "SELECT name FROM Users WHERE id = ?", 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, result.Columns)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
}

func TestHandle_QueryErrorNamesSelect(t *testing.T) {
	h := setupTestHandle(t)

	_, err := h.Query(context.Background(), "SELEC * FRM Users")
	require.Error(t, err)

	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "select", stmtErr.Op)
	assert.Contains(t, err.Error(), "failed to select")
}
