package runs

import (
	"errors"
	"sync"
	"time"

	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/render"
)

var ErrRunNotFound = errors.New("run not found")

// Run is a finished reconciliation kept for download.
type Run struct {
	ID        string
	CreatedAt time.Time
	Batch     *pipeline.Batch
	Artifacts *render.Artifacts
}

// Store keeps the most recent runs in memory; the oldest is evicted once
// capacity is reached.
type Store struct {
	mu       sync.RWMutex
	capacity int
	runs     map[string]*Run
	order    []string
}

func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{capacity: capacity, runs: make(map[string]*Run)}
}

func (s *Store) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run
	for len(s.order) > s.capacity {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
