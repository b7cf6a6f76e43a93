// Package testutil provides testing utilities for kpasscli.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	pkgexec "github.com/systmms/kpasscli/pkg/exec"
)

// MockCommandExecutor provides a configurable mock for testing CLI-backed
// backends. It satisfies pkg/exec.CommandExecutor.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool

	// Missing lists binaries LookPath reports as not installed.
	Missing map[string]bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	Err      error
	ExitCode int // Used to simulate exit codes when Err is nil
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Context context.Context
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
		Missing:       make(map[string]bool),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    args,
		Context: ctx,
	})

	key := m.buildKey(name, args)

	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	// Longest matching prefix wins so that "bw list items --search x" can
	// override a generic "bw list items".
	var (
		best    MockResponse
		bestLen = -1
	)
	for pattern, resp := range m.Responses {
		if m.matchesPattern(key, pattern) && len(pattern) > bestLen {
			best, bestLen = resp, len(pattern)
		}
	}
	if bestLen >= 0 {
		return best.Stdout, best.Stderr, best.Err
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

// LookPath reports every binary as installed under /usr/bin unless it is
// listed in Missing.
func (m *MockCommandExecutor) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// buildKey creates a lookup key from command and arguments.
func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// matchesPattern checks if the command key matches a pattern.
// A trailing "*" is accepted and ignored; matching is by prefix.
func (m *MockCommandExecutor) matchesPattern(key, pattern string) bool {
	return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddJSONResponse is a convenience method to add a JSON response.
func (m *MockCommandExecutor) AddJSONResponse(commandPattern string, jsonData string) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout: []byte(jsonData),
		Stderr: []byte{},
	})
}

// AddErrorResponse adds an error response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, errMsg string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout:   []byte{},
		Stderr:   []byte(errMsg),
		Err:      fmt.Errorf("exit status %d", exitCode),
		ExitCode: exitCode,
	})
}

// GetCalls returns all recorded calls matching the given command name.
func (m *MockCommandExecutor) GetCalls(commandName string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if call.Command == commandName {
			matches = append(matches, call)
		}
	}
	return matches
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// AssertCalled verifies that a specific command was called at least once.
func (m *MockCommandExecutor) AssertCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) == 0 {
		t.Error("expected command", commandName, "to be called, but it was not")
		return false
	}
	return true
}

// AssertNotCalled verifies that a specific command was never called.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) > 0 {
		t.Error("expected command", commandName, "to not be called, but it was called", len(calls), "times")
		return false
	}
	return true
}

// BitwardenMockResponses provides pre-configured responses for Bitwarden CLI.
type BitwardenMockResponses struct{}

// StatusUnlocked returns a mock response for an unlocked Bitwarden vault.
func (BitwardenMockResponses) StatusUnlocked() MockResponse {
	return MockResponse{
		Stdout: []byte(`{
			"serverUrl": "https://vault.bitwarden.com",
			"lastSync": "2024-01-15T10:30:00.000Z",
			"userEmail": "user@example.com",
			"userId": "user-123",
			"status": "unlocked"
		}`),
	}
}

// StatusLocked returns a mock response for a locked Bitwarden vault.
func (BitwardenMockResponses) StatusLocked() MockResponse {
	return MockResponse{
		Stdout: []byte(`{
			"serverUrl": "https://vault.bitwarden.com",
			"lastSync": "2024-01-15T10:30:00.000Z",
			"userEmail": "user@example.com",
			"userId": "user-123",
			"status": "locked"
		}`),
	}
}

// StatusUnauthenticated returns a mock response for unauthenticated state.
func (BitwardenMockResponses) StatusUnauthenticated() MockResponse {
	return MockResponse{
		Stdout: []byte(`{
			"serverUrl": "https://vault.bitwarden.com",
			"lastSync": null,
			"userEmail": null,
			"userId": null,
			"status": "unauthenticated"
		}`),
	}
}

// Items returns a `bw list items` response holding login items with the
// given names. Each item's username is "<name>-user" and its password
// "<name>-pass".
func (BitwardenMockResponses) Items(names ...string) MockResponse {
	items := make([]string, 0, len(names))
	for i, name := range names {
		items = append(items, fmt.Sprintf(`{
			"id": "item-%d",
			"name": %q,
			"type": 1,
			"login": {
				"username": "%s-user",
				"password": "%s-pass",
				"totp": "JBSWY3DPEHPK3PXP",
				"uris": [
					{"uri": "https://example.com", "match": null}
				]
			},
			"fields": [
				{"name": "api_key", "value": "secret-key-123", "type": 0}
			],
			"notes": "Test notes for the item"
		}`, i+1, name, name, name))
	}
	return MockResponse{
		Stdout: []byte("[" + strings.Join(items, ",") + "]"),
	}
}

var _ pkgexec.CommandExecutor = (*MockCommandExecutor)(nil)
