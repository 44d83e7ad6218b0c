package transport

import (
	"context"
	"os"
	"sync"
)

// MockTransport is an in-memory Transport for testing. It captures uploaded
// file contents with call counters and can be primed to fail.
type MockTransport struct {
	mu      sync.Mutex
	files   map[string][]byte
	order   []string // remote names in first-upload order
	entries []string // fixed ListDir result, overrides uploaded names
	copyErr error
	listErr error
	calls   MockCalls
}

// MockCalls tracks method invocations for test verification.
type MockCalls struct {
	Copy    int
	ListDir int
}

// NewMockTransport creates an empty in-memory transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{files: make(map[string][]byte)}
}

// FailCopyWith makes every subsequent Copy return err.
func (m *MockTransport) FailCopyWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyErr = err
}

// FailListWith makes every subsequent ListDir return err.
func (m *MockTransport) FailListWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// SetEntries fixes the ListDir result regardless of uploads.
func (m *MockTransport) SetEntries(entries []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}

// Copy reads localPath and stores it under remoteName.
func (m *MockTransport) Copy(ctx context.Context, localPath, remoteName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Copy++

	if m.copyErr != nil {
		return m.copyErr
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	if _, seen := m.files[remoteName]; !seen {
		m.order = append(m.order, remoteName)
	}
	m.files[remoteName] = data
	return nil
}

// ListDir returns the fixed entries if set, otherwise the uploaded names in
// first-upload order.
func (m *MockTransport) ListDir(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.ListDir++

	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.entries != nil {
		return append([]string(nil), m.entries...), nil
	}
	return append([]string(nil), m.order...), nil
}

// File returns the stored content for a remote name.
func (m *MockTransport) File(remoteName string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[remoteName]
	return data, ok
}

// Calls returns the number of times each method was called.
func (m *MockTransport) Calls() MockCalls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
