package holderjob

import (
	"sync"
	"time"
)

// State is the mutable progress of one holder-count job. The runner is the
// only mutator; concurrent steps for the same mint race last-writer-wins.
type State struct {
	Owners    map[string]struct{}
	Cursor    string
	PageCount int
	StartedAt time.Time
	UpdatedAt time.Time
}

// Store keeps per-mint job state.
type Store interface {
	Get(mint string) (*State, bool)
	Put(mint string, st *State)
	Delete(mint string)
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*State
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*State)}
}

func (s *MemoryStore) Get(mint string) (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[mint]
	return st, ok
}

func (s *MemoryStore) Put(mint string, st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[mint] = st
}

func (s *MemoryStore) Delete(mint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, mint)
}
