package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportArchive(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	older := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	put := func(slug string, at time.Time, name string) string {
		key := BuildImportKey(slug, at, name)
		require.NoError(t, s.Put(ctx, key, []byte(name), &Metadata{OriginalName: name, ProducerSlug: slug, UploadedAt: at}))
		return key
	}
	oldKey := put("meble", older, "wrzesien.xlsx")
	newKey := put("meble", newer, "pazdziernik.csv")
	otherKey := put("meble-a", older, "inny.pdf")

	infos, err := ListImports(ctx, s, "meble")
	require.NoError(t, err)
	require.Len(t, infos, 2, "a producer sharing the slug prefix is not listed")
	assert.Equal(t, newKey, infos[0].Key)
	assert.Equal(t, oldKey, infos[1].Key)
	assert.Equal(t, "pazdziernik.csv", infos[0].Metadata.OriginalName)
	assert.Equal(t, int64(len("pazdziernik.csv")), infos[0].Size)

	n, err := PruneImports(ctx, s, "meble", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	infos, err = ListImports(ctx, s, "meble")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, newKey, infos[0].Key)

	ok, err := s.Exists(ctx, otherKey)
	require.NoError(t, err)
	assert.True(t, ok, "other producers are untouched")
}

func TestListImportsEmpty(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	infos, err := ListImports(context.Background(), s, "meble")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestFileInfoUploadedAt(t *testing.T) {
	modified := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	uploaded := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		info FileInfo
		want time.Time
	}{
		{"no metadata", FileInfo{ModifiedAt: modified}, modified},
		{"metadata without time", FileInfo{ModifiedAt: modified, Metadata: &Metadata{}}, modified},
		{"upload time recorded", FileInfo{ModifiedAt: modified, Metadata: &Metadata{UploadedAt: uploaded}}, uploaded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.UploadedAt())
		})
	}
}
