// Package testutil provides test utilities for structured logging.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewCaptureLogger returns a logger recording entries at level and above
// into the returned buffer as JSON lines, mirroring them to t.Log().
func NewCaptureLogger(t testing.TB, level slog.Level) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := new(bytes.Buffer)
	return slog.New(slog.NewJSONHandler(captureWriter{t: t, buf: buf}, &slog.HandlerOptions{
		Level: level,
	})), buf
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

type captureWriter struct {
	t   testing.TB
	buf *bytes.Buffer
}

func (w captureWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return w.buf.Write(p)
}
