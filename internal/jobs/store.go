package jobs

import (
	"sync"
	"time"

	"invoice-reconciliation-service/internal/reconciler"
)

// Store persists run handles for status polling.
type Store interface {
	Save(run *Run)
	Get(id string) (*Run, bool)
	MarkProcessing(id string)
	MarkCompleted(id string, payload *reconciler.DocumentPayload)
	MarkFailed(id string, message string)
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// Save implements Store. The stored run is a copy so later status
// updates never touch the caller's handle.
func (s *MemoryStore) Save(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := *run
	s.runs[run.ID] = &snapshot
}

// Get implements Store. The returned run is a copy so callers can read
// it without racing status updates.
func (s *MemoryStore) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	snapshot := *run
	return &snapshot, true
}

// MarkProcessing implements Store.
func (s *MemoryStore) MarkProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		now := time.Now().UTC()
		run.Status = StatusProcessing
		run.StartedAt = &now
	}
}

// MarkCompleted implements Store.
func (s *MemoryStore) MarkCompleted(id string, payload *reconciler.DocumentPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		now := time.Now().UTC()
		run.Status = StatusCompleted
		run.Payload = payload
		run.FinishedAt = &now
	}
}

// MarkFailed implements Store.
func (s *MemoryStore) MarkFailed(id string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		now := time.Now().UTC()
		run.Status = StatusFailed
		run.Error = message
		run.FinishedAt = &now
	}
}
