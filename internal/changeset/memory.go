package changeset

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"
)

// MemoryStore keeps change-sets in process memory. Values are deep-copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]*ChangeSet
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]*ChangeSet)}
}

func clone(cs *ChangeSet) (*ChangeSet, error) {
	c, err := copystructure.Copy(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to copy change-set %s: %w", cs.ID, err)
	}
	return c.(*ChangeSet), nil
}

func (s *MemoryStore) Create(ctx context.Context, cs *ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sets[cs.ID]; ok {
		return fmt.Errorf("%w: id %s already exists", ErrValidation, cs.ID)
	}
	c, err := clone(cs)
	if err != nil {
		return err
	}
	s.sets[cs.ID] = c
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(cs)
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*ChangeSet{}
	for _, cs := range s.sets {
		if !filter.match(cs) {
			continue
		}
		c, err := clone(cs)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortChangeSets(out)
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*ChangeSet) error) (*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	working, err := clone(cs)
	if err != nil {
		return nil, err
	}
	if err := mutate(working); err != nil {
		return nil, err
	}
	stored, err := clone(working)
	if err != nil {
		return nil, err
	}
	s.sets[id] = stored
	return working, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string, check func(*ChangeSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if check != nil {
		c, err := clone(cs)
		if err != nil {
			return err
		}
		if err := check(c); err != nil {
			return err
		}
	}
	delete(s.sets, id)
	return nil
}
