// ABOUTME: Thread-safe identity set with atomic insert-if-absent.
// ABOUTME: Tracks which bot identities currently have a live supervision loop.

package dedupe

import (
	"sort"
	"sync"
)

// Set is a concurrency-safe set of keys. Membership lasts until the key is
// explicitly removed.
type Set struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// CheckAndMark atomically checks whether key is present and adds it if not.
// Returns true if the key was already present (duplicate), false if it was
// absent and is now marked.
func (s *Set) CheckAndMark(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return true
	}
	s.keys[key] = struct{}{}
	return false
}

// Check reports whether key is present.
func (s *Set) Check(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.keys[key]
	return ok
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Set) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Len returns the number of keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Keys returns a sorted snapshot of the keys.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
