package staff

import (
	"context"
	"sort"
	"strings"
	"sync"

	"staffhub.org/internal/ids"
)

// MemoryStore is an in-memory Store for tests and for running without a
// database.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[string]*Employee
}

// NewMemoryStore returns an empty in-memory employee store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{employees: make(map[string]*Employee)}
}

func (s *MemoryStore) Create(ctx context.Context, e *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.employees {
		if existing.Email == e.Email {
			return ErrEmailTaken
		}
	}
	if e.ID == "" {
		e.ID = ids.New()
	}
	clone := *e
	s.employees[e.ID] = &clone
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.Email == email {
			clone := *e
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*Employee) bool { return true }), nil
}

func (s *MemoryStore) ListByDepartment(ctx context.Context, department string) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *Employee) bool {
		return strings.EqualFold(e.Department, department)
	}), nil
}

func (s *MemoryStore) SearchByName(ctx context.Context, name string) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(name)
	return s.collect(func(e *Employee) bool {
		return strings.Contains(strings.ToLower(e.Name), needle)
	}), nil
}

func (s *MemoryStore) Update(ctx context.Context, e *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID]; !ok {
		return ErrNotFound
	}
	clone := *e
	s.employees[e.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.employees)), nil
}

// collect assumes the caller holds at least a read lock.
func (s *MemoryStore) collect(keep func(*Employee) bool) []*Employee {
	var out []*Employee
	for _, e := range s.employees {
		if keep(e) {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
