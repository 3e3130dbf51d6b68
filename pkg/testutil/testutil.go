// Package testutil provides testing utilities for tripstat
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tripstat/pkg/compression"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// Lines joins lines with '\n' and terminates the last one.
func Lines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes content to name inside a per-test temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	return WriteBytes(t, name, []byte(content))
}

// WriteBytes is WriteFile for binary content such as compressed fixtures.
func WriteBytes(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// RequireNoError fails the test immediately if err is not nil.
// The msg parameter provides additional context in the failure message.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// Compress encodes content with alg for building compressed fixtures.
func Compress(t *testing.T, alg compression.Algorithm, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := compression.NewWriter(&buf, alg)
	RequireNoError(t, err, "create compressor")
	_, err = w.Write([]byte(content))
	RequireNoError(t, err, "compress fixture")
	RequireNoError(t, w.Close(), "flush compressor")
	return buf.Bytes()
}
