package utils

import "sync"

// IDSet is a thread-safe set of listing IDs.
type IDSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the ID was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Reset forgets every tracked ID.
func (s *IDSet) Reset() {
	s.mu.Lock()
	s.seen = make(map[string]struct{})
	s.mu.Unlock()
}
