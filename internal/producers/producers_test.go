package producers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/storage"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Meble Łódź", "meble-lodz"},
		{"  Gala Collezione ", "gala-collezione"},
		{"Żółć & Spółka", "zolc-spolka"},
		{"bos-meble", "bos-meble"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry([]Producer{
		{Name: "Meble Łódź", Layout: "category"},
		{Slug: "bos", Name: "Bos", Layout: "row-table", Recipients: []string{"a@b.pl"}},
	})
	require.NoError(t, err)

	p, err := reg.Get("meble-lodz")
	require.NoError(t, err)
	assert.Equal(t, catalog.LayoutCategory, p.Layout)

	p, err = reg.Get("bos")
	require.NoError(t, err)
	assert.Equal(t, catalog.LayoutRows, p.Layout)

	_, err = reg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownProducer)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Bos", list[0].Name)
}

func TestNewRegistryInvalid(t *testing.T) {
	tests := []struct {
		name string
		list []Producer
	}{
		{"no slug or name", []Producer{{Layout: "flat"}}},
		{"unnormalised slug", []Producer{{Slug: "Bad Slug", Layout: "flat"}}},
		{"unknown layout", []Producer{{Slug: "a", Layout: "xml"}}},
		{"duplicate", []Producer{{Slug: "a", Layout: "flat"}, {Slug: "a", Layout: "rows"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.list)
			assert.Error(t, err)
		})
	}
}

const chairs = `{"title":"x","categories":{"krzesła":{"X":{"prices":{"grupa I":100}}}}}`

func newRepo(t *testing.T) (*Repository, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reg, err := NewRegistry([]Producer{{Slug: "meble", Name: "Meble", Layout: catalog.LayoutCategory}})
	require.NoError(t, err)
	return NewRepository(reg, store, nil), store
}

func TestRepositoryLoadSave(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)

	_, err := repo.Load(ctx, "meble")
	assert.ErrorIs(t, err, ErrCatalogNotFound)

	_, err = repo.Load(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnknownProducer)

	doc, err := repo.Decode("meble", []byte(chairs))
	require.NoError(t, err)
	version, err := repo.Save(ctx, "meble", doc, "")
	require.NoError(t, err)
	assert.Equal(t, storage.ComputeChecksum([]byte(chairs)), version)

	raw, err := store.Get(ctx, storage.CatalogKey("meble"))
	require.NoError(t, err)
	assert.Equal(t, chairs, string(raw))

	snap, err := repo.Load(ctx, "meble")
	require.NoError(t, err)
	assert.Equal(t, version, snap.Version)
	assert.Equal(t, "Meble", snap.Producer.Name)
	_, _, ok := snap.Document.FindProduct("X")
	assert.True(t, ok)
}

func TestRepositoryShapeMismatch(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepo(t)
	require.NoError(t, store.Put(ctx, storage.CatalogKey("meble"), []byte(`[1]`), nil))

	_, err := repo.Load(ctx, "meble")
	assert.ErrorIs(t, err, catalog.ErrShapeMismatch)
}

func TestRepositorySaveConflict(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	doc, err := repo.Decode("meble", []byte(chairs))
	require.NoError(t, err)
	v1, err := repo.Save(ctx, "meble", doc, "")
	require.NoError(t, err)

	edited, err := repo.Decode("meble", []byte(`{"categories":{}}`))
	require.NoError(t, err)
	_, err = repo.Save(ctx, "meble", edited, v1)
	require.NoError(t, err)

	_, err = repo.Save(ctx, "meble", doc, v1)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	doc, err := repo.Decode("meble", []byte(chairs))
	require.NoError(t, err)
	_, err = repo.Save(ctx, "meble", doc, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "meble", func(s *Snapshot) (*catalog.Document, error) {
				p, cat, _ := s.Document.FindProduct("X")
				v, _ := p.Price("grupa I")
				return s.Document.WithPrices([]catalog.Write{{Path: s.Document.PricePath(cat, p, "grupa I"), Value: v + 1}})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := repo.Load(ctx, "meble")
	require.NoError(t, err)
	p, _, _ := snap.Document.FindProduct("X")
	v, _ := p.Price("grupa I")
	assert.Equal(t, 108.0, v, "updates are serialised per producer")
}
