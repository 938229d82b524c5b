package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSwaggerInfoMetadata verifies the API metadata registered with swag.
func TestSwaggerInfoMetadata(t *testing.T) {
	t.Run("title is set correctly", func(t *testing.T) {
		assert.Equal(t, "Pricelist Service API", SwaggerInfo.Title)
	})

	t.Run("version is set correctly", func(t *testing.T) {
		assert.Equal(t, "1.0", SwaggerInfo.Version)
	})

	t.Run("basePath is set correctly", func(t *testing.T) {
		assert.Equal(t, "/api", SwaggerInfo.BasePath)
	})

	t.Run("instance name is swagger", func(t *testing.T) {
		assert.Equal(t, "swagger", SwaggerInfo.InfoInstanceName)
	})
}

func readDoc(t *testing.T) map[string]interface{} {
	t.Helper()
	doc := SwaggerInfo.ReadDoc()
	require.NotEmpty(t, doc, "ReadDoc should return non-empty string")

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed), "ReadDoc should return valid JSON")
	return parsed
}

// TestSwaggerInfoReadDoc verifies that ReadDoc renders valid JSON.
func TestSwaggerInfoReadDoc(t *testing.T) {
	parsed := readDoc(t)

	info, ok := parsed["info"].(map[string]interface{})
	require.True(t, ok, "JSON should have info section")
	assert.Equal(t, "Pricelist Service API", info["title"])
	assert.Equal(t, "1.0", info["version"])

	assert.Equal(t, "/api", parsed["basePath"])
	assert.Equal(t, "2.0", parsed["swagger"])
}

// TestSwaggerInfoHasEndpoints verifies that every API route is documented.
func TestSwaggerInfoHasEndpoints(t *testing.T) {
	paths, ok := readDoc(t)["paths"].(map[string]interface{})
	require.True(t, ok, "JSON should have paths section")

	expected := map[string][]string{
		"/scheduled-changes":             {"get", "post", "patch", "delete"},
		"/scheduled-changes/apply":       {"get", "post"},
		"/scheduled-changes/{id}/export": {"get"},
		"/diff":                          {"post"},
		"/producers":                     {"get"},
		"/producers/{slug}/catalog":      {"get", "put"},
		"/producers/{slug}/import":       {"post"},
		"/producers/{slug}/imports":      {"get", "delete"},
	}

	for path, methods := range expected {
		ops, exists := paths[path].(map[string]interface{})
		if !assert.True(t, exists, "Path %s should exist in swagger spec", path) {
			continue
		}
		for _, m := range methods {
			assert.Contains(t, ops, m, "%s %s should be documented", m, path)
		}
	}
}

// TestSwaggerInfoHasDefinitions verifies the request/response definitions.
func TestSwaggerInfoHasDefinitions(t *testing.T) {
	definitions, ok := readDoc(t)["definitions"].(map[string]interface{})
	require.True(t, ok, "JSON should have definitions section")

	for _, name := range []string{
		"handlers.CreateScheduledChangeRequest",
		"handlers.ListScheduledChangesResponse",
		"handlers.DiffResponse",
		"handlers.ImportResponse",
		"changeset.ChangeSet",
		"pricediff.AtomicChange",
	} {
		_, exists := definitions[name]
		assert.True(t, exists, "Type %s should exist in swagger definitions", name)
	}
}
