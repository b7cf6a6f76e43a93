package testutil

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/kpasscli/internal/logging"
)

// TestLogger captures log output for validation in tests.
//
// It wraps a real *logging.Logger writing into an in-memory buffer, so
// tests can verify that secrets are redacted and that expected messages
// are produced.
//
// Example usage:
//
//	logger := NewTestLogger(t, true)
//	backend, _ := backends.NewKeychainBackendWithClient(cfg, fake, logger.Logger)
//
//	logger.AssertContains(t, "keychain cannot enumerate")
//	logger.AssertNotContains(t, "password123")
type TestLogger struct {
	*logging.Logger

	buffer *syncBuffer
}

// NewTestLogger creates a colourless TestLogger. Debug messages are
// captured when debug is true.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(buf, debug, true),
		buffer: buf,
	}
}

// GetOutput returns the captured log output as a string.
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// AssertContains asserts that the log output contains the specified substring.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()

	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain the specified substring.
//
// This is particularly useful for verifying that secrets are redacted.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()

	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
