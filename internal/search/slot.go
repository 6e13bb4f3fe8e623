package search

import "sync"

// requestSlot numbers searches in the order they start and remembers the
// newest one that has committed.
type requestSlot struct {
	mu        sync.Mutex
	started   uint64
	committed uint64
	pending   int
}

func (s *requestSlot) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	s.pending++
	return s.started
}

func (s *requestSlot) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
}

// commit records ticket as committed. If a newer search has already
// committed, it returns that newer ticket; otherwise zero.
func (s *requestSlot) commit(ticket uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed > ticket {
		return s.committed
	}
	s.committed = ticket
	return 0
}

func (s *requestSlot) inFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
