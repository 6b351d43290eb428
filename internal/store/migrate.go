package store

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

// Migrate applies pending goose SQL migrations found in dir of fsys.
// Pending work from Execute is committed first.
func (h *Handle) Migrate(ctx context.Context, fsys fs.FS, dir string) error {
	if err := h.check("migrate"); err != nil {
		return err
	}
	if err := h.Commit(ctx); err != nil {
		return err
	}

	if err := configureGoose(fsys, h.logger); err != nil {
		return err
	}
	defer goose.SetBaseFS(nil)

	if err := goose.UpContext(ctx, h.db, dir); err != nil {
		return newStatementError("run migrations", "", err)
	}

	version, err := goose.GetDBVersionContext(ctx, h.db)
	if err == nil {
		h.logger.Info("database migrated", "version", version)
	}
	return nil
}

// MigrationVersion returns the current goose migration version, 0 when none were applied.
func (h *Handle) MigrationVersion(ctx context.Context) (int64, error) {
	if err := h.check("read migration version"); err != nil {
		return 0, err
	}
	// goose needs the connection the pending transaction holds.
	if h.tx != nil {
		return 0, fmt.Errorf("cannot read migration version: %w", ErrPendingTransaction)
	}
	if err := configureGoose(nil, h.logger); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersionContext(ctx, h.db)
	if err != nil {
		return 0, newStatementError("read migration version", "", err)
	}
	return version, nil
}

func configureGoose(fsys fs.FS, logger *slog.Logger) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// gooseLogger routes goose output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}
