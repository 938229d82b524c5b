// Package pricediff computes price-cell changes between two versions of a catalog.
package pricediff

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AtomicChange is one modified price cell
type AtomicChange struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Category string `json:"category,omitempty"`
	Element  string `json:"element,omitempty"`
	// PriceGroup is the price-group key or, for row tables, the price column
	PriceGroup string `json:"priceGroup,omitempty"`
	// PriceClass is the class letter inside a price group (elements layout)
	PriceClass    string  `json:"priceClass,omitempty"`
	Dimension     string  `json:"dimension,omitempty"`
	OldPrice      float64 `json:"oldPrice"`
	NewPrice      float64 `json:"newPrice"`
	PercentChange float64 `json:"percentChange"`
}

// Summary aggregates a list of changes
type Summary struct {
	TotalChanges     int     `json:"totalChanges"`
	Increased        int     `json:"increased"`
	Decreased        int     `json:"decreased"`
	AvgChangePercent float64 `json:"avgChangePercent"`
}

// ChangeID derives the identifier of a change from its discriminators only
func ChangeID(c AtomicChange) string {
	segments := make([]string, 0, 6)
	add := func(tag, value string) {
		if value != "" {
			segments = append(segments, tag+":"+value)
		}
	}
	add("cat", c.Category)
	add("prod", c.Product)
	add("el", c.Element)
	add("grp", c.PriceGroup)
	add("cls", c.PriceClass)
	add("dim", c.Dimension)
	return strings.Join(segments, "/")
}

// PercentChange returns (new-old)/old*100 rounded half away from zero to one decimal.
// A zero old price yields 0.
func PercentChange(oldPrice, newPrice float64) float64 {
	if oldPrice == 0 {
		return 0
	}
	o := decimal.NewFromFloat(oldPrice)
	n := decimal.NewFromFloat(newPrice)
	return n.Sub(o).Div(o).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// NewChange fills in ID and PercentChange
func NewChange(c AtomicChange) AtomicChange {
	c.ID = ChangeID(c)
	c.PercentChange = PercentChange(c.OldPrice, c.NewPrice)
	return c
}

// Summarize computes the summary of a change list. The average is taken over the
// already-rounded per-change percentages and rounded again.
func Summarize(changes []AtomicChange) Summary {
	s := Summary{TotalChanges: len(changes)}
	if len(changes) == 0 {
		return s
	}

	sum := decimal.Zero
	for _, c := range changes {
		switch {
		case c.NewPrice > c.OldPrice:
			s.Increased++
		case c.NewPrice < c.OldPrice:
			s.Decreased++
		}
		sum = sum.Add(decimal.NewFromFloat(c.PercentChange))
	}
	s.AvgChangePercent = sum.Div(decimal.NewFromInt(int64(len(changes)))).Round(1).InexactFloat64()
	return s
}

// FromChanges normalises an externally computed change list (spreadsheet or AI import):
// ids and percentages are recomputed from the discriminators and prices, and later
// duplicates of the same cell replace earlier ones in place.
func FromChanges(changes []AtomicChange) []AtomicChange {
	out := make([]AtomicChange, 0, len(changes))
	seen := make(map[string]int, len(changes))
	for _, c := range changes {
		c.Product = strings.TrimSpace(c.Product)
		if c.Product == "" {
			continue
		}
		c = NewChange(c)
		if i, ok := seen[c.ID]; ok {
			out[i] = c
			continue
		}
		seen[c.ID] = len(out)
		out = append(out, c)
	}
	return out
}

var combinedLabel = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)$`)

// SplitElementLabel splits "<element> (<group>)" into its parts. ok is false when the
// label has no trailing group.
func SplitElementLabel(label string) (element, group string, ok bool) {
	m := combinedLabel.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return label, "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}
