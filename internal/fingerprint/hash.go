// Package fingerprint computes deterministic hashes of change lists.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Version is the current version of the fingerprint algorithm
const Version = 1

// Entry is one price cell transition
type Entry struct {
	ChangeID string
	OldPrice float64
	NewPrice float64
}

// Compute hashes a scope (producer, activation day...) and a set of entries.
// The result is independent of entry order; any price or id difference changes it.
// Change ids are compared case-insensitively.
func Compute(scope string, entries []Entry) string {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	// Duplicates are possible in imported lists, so every field takes part in the order.
	sort.Slice(sorted, func(i, j int) bool {
		idI := strings.ToLower(sorted[i].ChangeID)
		idJ := strings.ToLower(sorted[j].ChangeID)
		if idI != idJ {
			return idI < idJ
		}
		if sorted[i].OldPrice != sorted[j].OldPrice {
			return sorted[i].OldPrice < sorted[j].OldPrice
		}
		return sorted[i].NewPrice < sorted[j].NewPrice
	})

	// Canonical form: "v<version>\n<scope>\n" then "id:old:new\n" per entry
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "v%d\n%s\n", Version, scope)
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s:%s:%s\n",
			strings.ToLower(e.ChangeID),
			strconv.FormatFloat(e.OldPrice, 'f', -1, 64),
			strconv.FormatFloat(e.NewPrice, 'f', -1, 64),
		)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}
