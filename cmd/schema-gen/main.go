// Schema Generator
//
// Generates JSON Schema files from the API request and response types so that
// clients can validate payloads without reading the Go sources.
//
// Usage:
//
//	go run ./cmd/schema-gen [-out schemas]
//
// Output:
//
//	schemas/scheduled-changes.json
//	schemas/catalogs.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/handlers"
	"github.com/cenniki/pricelist-service/internal/pricediff"
	"github.com/cenniki/pricelist-service/internal/reconcile"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

var groups = []SchemaGroup{
	{
		Name: "scheduled-changes",
		Types: []any{
			// Request types
			handlers.CreateScheduledChangeRequest{},
			handlers.ListScheduledChangesRequest{},
			handlers.PatchScheduledChangeRequest{},
			// Response types
			handlers.CreateScheduledChangeResponse{},
			handlers.ListScheduledChangesResponse{},
			handlers.PatchScheduledChangeResponse{},
			handlers.SuccessResponse{},
			handlers.ApplyDueResponse{},
			handlers.DueStatusResponse{},
			handlers.ErrorResponse{},
			changeset.ChangeSet{},
			reconcile.Report{},
		},
		Output: "scheduled-changes.json",
	},
	{
		Name: "catalogs",
		Types: []any{
			handlers.DiffRequest{},
			handlers.DiffResponse{},
			handlers.ProducerInfo{},
			handlers.ListProducersResponse{},
			handlers.PutCatalogResponse{},
			handlers.ImportResponse{},
			handlers.ListImportsResponse{},
			handlers.PruneImportsResponse{},
			pricediff.AtomicChange{},
			pricediff.Summary{},
		},
		Output: "catalogs.json",
	},
}

func main() {
	outputDir := flag.String("out", "schemas", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range groups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(*outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}
}

// generateGroupSchema merges the definitions of every type in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://cenniki.pl/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", title(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// title turns "scheduled-changes" into "Scheduled Changes"
func title(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
