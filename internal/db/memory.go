package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"redirector/internal/models"
)

// Memory is an in-process Store. Records live in an id-keyed table with a
// secondary path index whose id lists are kept in ascending order.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*models.Mapping
	byPath map[string][]int64
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an empty in-memory store that reads timestamps
// from now.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		rows:   make(map[int64]*models.Mapping),
		byPath: make(map[string][]int64),
		now:    now,
	}
}

// GetMappingByPath returns the lowest-id mapping for path.
func (s *Memory) GetMappingByPath(_ context.Context, path string) (*models.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPath[path]
	if len(ids) == 0 {
		return nil, ErrMappingNotFound
	}
	m := *s.rows[ids[0]]
	return &m, nil
}

// ListMappings returns a snapshot of all mappings ordered by id.
func (s *Memory) ListMappings(_ context.Context) ([]models.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mappings := make([]models.Mapping, 0, len(s.rows))
	for _, m := range s.rows {
		mappings = append(mappings, *m)
	}
	slices.SortFunc(mappings, func(a, b models.Mapping) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return mappings, nil
}

// CreateMapping stores a new mapping under the next id.
func (s *Memory) CreateMapping(_ context.Context, in models.MappingInput) (*models.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	m := &models.Mapping{
		ID:        s.nextID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.Apply(in)

	s.rows[m.ID] = m
	s.index(m.Path, m.ID)

	out := *m
	return &out, nil
}

// UpdateMapping replaces the editable fields of a mapping.
func (s *Memory) UpdateMapping(_ context.Context, id int64, in models.MappingInput) (*models.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[id]
	if !ok {
		return nil, ErrMappingNotFound
	}

	if m.Path != in.Path {
		s.unindex(m.Path, id)
		s.index(in.Path, id)
	}
	m.Apply(in)

	now := s.now()
	if now.Before(m.CreatedAt) {
		now = m.CreatedAt
	}
	m.UpdatedAt = now

	out := *m
	return &out, nil
}

// DeleteMapping removes a mapping if it exists.
func (s *Memory) DeleteMapping(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[id]
	if !ok {
		return nil
	}
	s.unindex(m.Path, id)
	delete(s.rows, id)
	return nil
}

// IncrementHits bumps the hit counter; missing ids are ignored.
func (s *Memory) IncrementHits(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.rows[id]; ok {
		m.Hits++
	}
	return nil
}

// Ping always succeeds.
func (s *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Memory) Close() {}

func (s *Memory) index(path string, id int64) {
	ids := s.byPath[path]
	pos, _ := slices.BinarySearch(ids, id)
	s.byPath[path] = slices.Insert(ids, pos, id)
}

func (s *Memory) unindex(path string, id int64) {
	ids := s.byPath[path]
	pos, found := slices.BinarySearch(ids, id)
	if !found {
		return
	}
	ids = slices.Delete(ids, pos, pos+1)
	if len(ids) == 0 {
		delete(s.byPath, path)
		return
	}
	s.byPath[path] = ids
}
