package service

import "sync"

// SnapshotStore keeps the last-observed value of every (controller, register)
// pair. It is memory-only and reset on restart; re-detecting active alarms
// after a restart is an accepted limitation, not a bug.
type SnapshotStore struct {
	mu   sync.Mutex
	last map[string]map[string]int // plcID -> registerID -> value
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{last: make(map[string]map[string]int)}
}

// Get returns the last-observed value, 0 for unseen registers.
func (s *SnapshotStore) Get(plcID, registerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[plcID][registerID]
}

// Set records the most recent observation, lazily initializing the controller map.
func (s *SnapshotStore) Set(plcID, registerID string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.last[plcID]
	if !ok {
		m = make(map[string]int)
		s.last[plcID] = m
	}
	m[registerID] = value
}
