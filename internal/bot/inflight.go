package bot

import "sync"

// inflightSet marks controllers whose evaluation pass has started but not yet
// finished its fan-out, so re-entrant timer fires and manual triggers cannot
// run overlapping passes on the same controller.
type inflightSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{keys: make(map[string]struct{})}
}

func (s *inflightSet) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *inflightSet) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}
