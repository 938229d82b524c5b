package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGroupSchema(t *testing.T) {
	schema := generateGroupSchema(groups[0])

	assert.Equal(t, "Scheduled Changes API Types", schema["title"])
	defs, ok := schema["$defs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, defs, "CreateScheduledChangeRequest")
	assert.Contains(t, defs, "ApplyDueResponse")
}

func TestWriteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogs.json")
	require.NoError(t, writeSchema(generateGroupSchema(groups[1]), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "https://cenniki.pl/schemas/catalogs.json", out["$id"])
	assert.Contains(t, out["$defs"], "DiffRequest")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Catalogs", title("catalogs"))
	assert.Equal(t, "Scheduled Changes", title("scheduled-changes"))
}
