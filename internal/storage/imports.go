package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ImportPrefix is the key prefix under which a producer's uploads are archived
func ImportPrefix(slug string) string {
	return fmt.Sprintf("imports/%s/", slug)
}

// UploadedAt returns when an archived object was uploaded, falling back to its modification time
func (fi *FileInfo) UploadedAt() time.Time {
	if fi.Metadata != nil && !fi.Metadata.UploadedAt.IsZero() {
		return fi.Metadata.UploadedAt
	}
	return fi.ModifiedAt
}

// ListImports describes the archived uploads of a producer, newest first
func ListImports(ctx context.Context, s Storage, slug string) ([]*FileInfo, error) {
	keys, err := s.List(ctx, ImportPrefix(slug))
	if err != nil {
		return nil, err
	}

	out := make([]*FileInfo, 0, len(keys))
	for _, key := range keys {
		info, err := s.GetInfo(ctx, key)
		if errors.Is(err, ErrNotFound) {
			// pruned concurrently
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt().After(out[j].UploadedAt())
	})
	return out, nil
}

// PruneImports deletes a producer's archived uploads older than before and
// returns how many were removed
func PruneImports(ctx context.Context, s Storage, slug string, before time.Time) (int, error) {
	infos, err := ListImports(ctx, s, slug)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, info := range infos {
		if !info.UploadedAt().Before(before) {
			continue
		}
		if err := s.Delete(ctx, info.Key); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
