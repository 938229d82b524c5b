package producers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/storage"
)

// Snapshot is a decoded catalog with the version it was read at
type Snapshot struct {
	Producer Producer
	Document *catalog.Document
	// Version is the sha256 of the stored bytes
	Version string
}

// Repository reads and writes producer catalogs. Writes are serialised per producer in
// process and guarded by a version check against the stored bytes.
type Repository struct {
	registry *Registry
	storage  storage.Storage
	logger   *zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRepository creates a Repository
func NewRepository(registry *Registry, store storage.Storage, logger *zerolog.Logger) *Repository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Repository{
		registry: registry,
		storage:  store,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Registry returns the producer registry
func (r *Repository) Registry() *Registry {
	return r.registry
}

func (r *Repository) lock(slug string) func() {
	r.mu.Lock()
	l, ok := r.locks[slug]
	if !ok {
		l = &sync.Mutex{}
		r.locks[slug] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load reads and decodes a producer's catalog
func (r *Repository) Load(ctx context.Context, slug string) (*Snapshot, error) {
	p, err := r.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	raw, err := r.storage.Get(ctx, storage.CatalogKey(slug))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, slug)
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", slug, err)
	}

	doc, err := catalog.Decode(p.Layout, raw, p.DecodeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", slug, err)
	}
	return &Snapshot{Producer: p, Document: doc, Version: storage.ComputeChecksum(raw)}, nil
}

// Decode parses raw JSON with the producer's layout
func (r *Repository) Decode(slug string, raw []byte) (*catalog.Document, error) {
	p, err := r.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	return catalog.Decode(p.Layout, raw, p.DecodeOptions()...)
}

// Save replaces a catalog wholesale. A non-empty expectedVersion must match the stored
// version or ErrConflict is returned; an empty one writes unconditionally.
func (r *Repository) Save(ctx context.Context, slug string, doc *catalog.Document, expectedVersion string) (string, error) {
	if _, err := r.registry.Get(slug); err != nil {
		return "", err
	}
	unlock := r.lock(slug)
	defer unlock()

	return r.save(ctx, slug, doc, expectedVersion)
}

func (r *Repository) save(ctx context.Context, slug string, doc *catalog.Document, expectedVersion string) (string, error) {
	key := storage.CatalogKey(slug)

	if expectedVersion != "" {
		current, err := r.storage.Get(ctx, key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return "", fmt.Errorf("%w: %s was deleted", ErrConflict, slug)
		case err != nil:
			return "", fmt.Errorf("failed to read catalog %s: %w", slug, err)
		case storage.ComputeChecksum(current) != expectedVersion:
			return "", fmt.Errorf("%w: %s", ErrConflict, slug)
		}
	}

	raw := doc.Bytes()
	if err := r.storage.Put(ctx, key, raw, &storage.Metadata{ContentType: "application/json", ProducerSlug: slug}); err != nil {
		return "", fmt.Errorf("failed to write catalog %s: %w", slug, err)
	}

	version := storage.ComputeChecksum(raw)
	r.logger.Info().Str("producer", slug).Str("version", version[:12]).Msg("Catalog saved")
	return version, nil
}

// Update runs a read-modify-write of a catalog under the producer lock. fn receives the
// current snapshot and returns the replacement document.
func (r *Repository) Update(ctx context.Context, slug string, fn func(*Snapshot) (*catalog.Document, error)) (string, error) {
	if _, err := r.registry.Get(slug); err != nil {
		return "", err
	}
	unlock := r.lock(slug)
	defer unlock()

	snap, err := r.Load(ctx, slug)
	if err != nil {
		return "", err
	}
	doc, err := fn(snap)
	if err != nil {
		return "", err
	}
	return r.save(ctx, slug, doc, snap.Version)
}
