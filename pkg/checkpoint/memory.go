package checkpoint

import (
	"context"
	"sort"
	"sync"

	"variate-server/pkg/variate"
)

// MemoryStore keeps snapshots in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]variate.Snapshot
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]variate.Snapshot),
	}
}

// Put stores a copy of snapshot
func (m *MemoryStore) Put(_ context.Context, name string, snapshot variate.Snapshot) error {
	if err := validateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[name] = snapshot.Clone()
	return nil
}

// Get returns a copy of the stored snapshot
func (m *MemoryStore) Get(_ context.Context, name string) (variate.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, found := m.snapshots[name]
	if !found {
		return variate.Snapshot{}, ErrNotFound
	}

	return snapshot.Clone(), nil
}

// Delete removes a snapshot
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.snapshots[name]; !found {
		return ErrNotFound
	}

	delete(m.snapshots, name)
	return nil
}

// List returns the stored names
func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.snapshots))
	for name := range m.snapshots {
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}
