package changeset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cenniki/pricelist-service/internal/storage"
)

// CollectionKey is the storage key of the change-set collection
const CollectionKey = "scheduled-changes.json"

// FileStore keeps every change-set in one JSON array on blob storage. Each call reads
// the whole collection, mutates it and writes it back under a mutex.
type FileStore struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
}

// NewFileStore creates a FileStore over the given storage
func NewFileStore(store storage.Storage) *FileStore {
	return &FileStore{storage: store, key: CollectionKey}
}

func (s *FileStore) load(ctx context.Context) ([]*ChangeSet, error) {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []*ChangeSet{}, nil
		}
		return nil, fmt.Errorf("failed to read change-sets: %w", err)
	}
	if len(data) == 0 {
		return []*ChangeSet{}, nil
	}

	var sets []*ChangeSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	return sets, nil
}

func (s *FileStore) save(ctx context.Context, sets []*ChangeSet) error {
	data, err := json.MarshalIndent(sets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode change-sets: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, data, nil); err != nil {
		return fmt.Errorf("failed to write change-sets: %w", err)
	}
	return nil
}

func indexOf(sets []*ChangeSet, id string) int {
	for i, cs := range sets {
		if cs.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) Create(ctx context.Context, cs *ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(sets, cs.ID) >= 0 {
		return fmt.Errorf("%w: id %s already exists", ErrValidation, cs.ID)
	}
	return s.save(ctx, append(sets, cs))
}

func (s *FileStore) Get(ctx context.Context, id string) (*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(sets, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sets[i], nil
}

func (s *FileStore) List(ctx context.Context, filter Filter) ([]*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []*ChangeSet{}
	for _, cs := range sets {
		if filter.match(cs) {
			out = append(out, cs)
		}
	}
	sortChangeSets(out)
	return out, nil
}

func (s *FileStore) Update(ctx context.Context, id string, mutate func(*ChangeSet) error) (*ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(sets, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := mutate(sets[i]); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sets); err != nil {
		return nil, err
	}
	return sets[i], nil
}

func (s *FileStore) Delete(ctx context.Context, id string, check func(*ChangeSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(sets, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if check != nil {
		if err := check(sets[i]); err != nil {
			return err
		}
	}
	return s.save(ctx, append(sets[:i], sets[i+1:]...))
}
