// ABOUTME: Mock Registry implementation for testing
// ABOUTME: Allows tests to run without SQLite or Redis

package store

import (
	"context"
	"sort"
	"sync"
)

// MockRegistry is an in-memory Registry implementation for testing.
type MockRegistry struct {
	mu         sync.RWMutex
	identities map[string]struct{}
	inserts    int

	// InsertErr, when set, is returned by InsertIfAbsent.
	InsertErr error
	// ListErr, when set, is returned by ListAll.
	ListErr error
}

// NewMockRegistry creates a MockRegistry pre-populated with identities.
func NewMockRegistry(identities ...string) *MockRegistry {
	m := &MockRegistry{identities: make(map[string]struct{})}
	for _, id := range identities {
		m.identities[id] = struct{}{}
	}
	return m
}

// InsertIfAbsent records identity.
func (m *MockRegistry) InsertIfAbsent(ctx context.Context, identity string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.inserts++
	m.identities[identity] = struct{}{}
	return nil
}

// ListAll returns every recorded identity, sorted.
func (m *MockRegistry) ListAll(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]string, 0, len(m.identities))
	for id := range m.identities {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Contains reports whether identity has been recorded.
func (m *MockRegistry) Contains(identity string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.identities[identity]
	return ok
}

// Inserts returns how many successful InsertIfAbsent calls were made.
func (m *MockRegistry) Inserts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inserts
}

// Close is a no-op.
func (m *MockRegistry) Close() error {
	return nil
}
