package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/eduforge/eduforge/core"
)

// ErrNotFound is returned when no artifact exists for the given run / spec
// index pair.
var ErrNotFound = fmt.Errorf("artifact not found")

// InMemoryStore is a trivial in-process ArtifactStore implementation. It
// keeps all artifacts in a nested map guarded by an RWMutex. Save replaces
// any previous artifact for the same spec index wholesale, which is what
// makes repeated synthesis attempts idempotent: a retry's artifact replaces,
// never merges with, the previous attempt.
//
// Layout: runID -> specIndex -> artifact
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[int]core.GameArtifact
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[int]core.GameArtifact)}
}

// Save stores (or replaces) the artifact for its spec index.
func (s *InMemoryStore) Save(runID string, artifact core.GameArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.artifacts[runID]; !exists {
		s.artifacts[runID] = make(map[int]core.GameArtifact)
	}
	s.artifacts[runID][artifact.SpecIndex] = artifact
	return nil
}

// Get returns the stored artifact or ErrNotFound.
func (s *InMemoryStore) Get(runID string, specIndex int) (core.GameArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.artifacts[runID]
	if !ok {
		return core.GameArtifact{}, ErrNotFound
	}
	a, ok := m[specIndex]
	if !ok {
		return core.GameArtifact{}, ErrNotFound
	}
	return a, nil
}

// List returns the run's artifacts ordered by spec index. The slice is a
// snapshot and safe for caller mutation.
func (s *InMemoryStore) List(runID string) ([]core.GameArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.artifacts[runID]
	if !ok {
		return []core.GameArtifact{}, nil
	}
	out := make([]core.GameArtifact, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpecIndex < out[j].SpecIndex })
	return out, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(runID string, specIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.artifacts[runID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[specIndex]; !ok {
		return ErrNotFound
	}
	delete(m, specIndex)
	return nil
}
