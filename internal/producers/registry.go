// Package producers holds producer configuration and their catalog documents.
package producers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cenniki/pricelist-service/internal/catalog"
)

var (
	ErrUnknownProducer = errors.New("unknown producer")
	ErrCatalogNotFound = errors.New("producer catalog not found")
	// ErrConflict is returned when a catalog changed since it was read
	ErrConflict = errors.New("catalog was modified concurrently")
)

// Producer is a manufacturer with one catalog document
type Producer struct {
	Slug       string         `json:"slug"`
	Name       string         `json:"name"`
	Layout     catalog.Layout `json:"layout"`
	Recipients []string       `json:"recipients,omitempty"`
	// RowPriceColumns overrides the default price columns of row-table catalogs
	RowPriceColumns []string `json:"rowPriceColumns,omitempty"`
}

// DecodeOptions returns the catalog decode options for this producer
func (p Producer) DecodeOptions() []catalog.Option {
	if len(p.RowPriceColumns) == 0 {
		return nil
	}
	return []catalog.Option{catalog.WithRowPriceColumns(p.RowPriceColumns)}
}

// Registry is the immutable set of configured producers
type Registry struct {
	bySlug map[string]Producer
	sorted []Producer
}

// NewRegistry validates producers and indexes them by slug. Missing slugs are derived
// from names; layout names may use aliases.
func NewRegistry(list []Producer) (*Registry, error) {
	r := &Registry{bySlug: make(map[string]Producer, len(list))}
	for i, p := range list {
		p.Name = strings.TrimSpace(p.Name)
		if p.Slug == "" {
			p.Slug = Slugify(p.Name)
		}
		if p.Slug == "" {
			return nil, fmt.Errorf("producer %d: slug or name is required", i)
		}
		if p.Slug != Slugify(p.Slug) {
			return nil, fmt.Errorf("producer %d: slug %q is not normalised", i, p.Slug)
		}
		if p.Name == "" {
			p.Name = p.Slug
		}
		layout, err := catalog.ParseLayout(string(p.Layout))
		if err != nil {
			return nil, fmt.Errorf("producer %s: %w", p.Slug, err)
		}
		p.Layout = layout
		if _, dup := r.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("producer %s: duplicate slug", p.Slug)
		}
		r.bySlug[p.Slug] = p
		r.sorted = append(r.sorted, p)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// Get returns the producer with the given slug
func (r *Registry) Get(slug string) (Producer, error) {
	p, ok := r.bySlug[slug]
	if !ok {
		return Producer{}, fmt.Errorf("%w: %s", ErrUnknownProducer, slug)
	}
	return p, nil
}

// List returns every producer ordered by name
func (r *Registry) List() []Producer {
	out := make([]Producer, len(r.sorted))
	copy(out, r.sorted)
	return out
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL-safe slug: "Meble Łódź" -> "meble-lodz"
func Slugify(s string) string {
	// ł has no decomposition
	s = strings.NewReplacer("ł", "l", "Ł", "L").Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	s = slugSeparators.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
