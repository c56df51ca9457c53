// Package memory provides the in-memory container store used directly in
// tests and as the transactional core of the persistent backends.
package memory

import (
	"context"
	"sync"

	"neurocore/pkg/domain"
)

// Store is a mutex-guarded in-memory container store. Appends mutate the
// live container; after a hard error the partially mutated state stays
// caller-visible and no rollback is attempted.
type Store struct {
	mu        sync.Mutex
	container *domain.Container
}

var _ domain.PersistentStore = (*Store)(nil)

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{container: domain.NewContainer()}
}

// Append implements domain.PersistentStore.
func (s *Store) Append(_ context.Context, fn domain.AppendFunc) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.container)
}

// View implements domain.PersistentStore.
func (s *Store) View(_ context.Context, fn func(*domain.Container) error) error {
	s.mu.Lock()
	snapshot := s.container.Clone()
	s.mu.Unlock()
	return fn(snapshot)
}

// Close implements domain.PersistentStore. The in-memory store holds no
// resources.
func (s *Store) Close() error { return nil }

// ExportState clones the current container for external persistence.
func (s *Store) ExportState() *domain.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.container.Clone()
}

// ImportState replaces the container with the provided snapshot.
func (s *Store) ImportState(c *domain.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Normalize()
	s.container = c
}
