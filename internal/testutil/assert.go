// Package testutil holds shared test helpers and in-memory repository fakes.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertEqual fails the test immediately when want and got differ.
func AssertEqual(t testing.TB, want, got any) {
	t.Helper()
	require.Equal(t, want, got)
}

// AssertNoError fails the test immediately on a non-nil error.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	require.NoError(t, err)
}

// AssertError fails the test immediately on a nil error.
func AssertError(t testing.TB, err error) {
	t.Helper()
	require.Error(t, err)
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
