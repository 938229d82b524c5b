// Package changeset persists scheduled price change-sets and drives their lifecycle.
package changeset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenniki/pricelist-service/internal/pricediff"
)

// Status is the lifecycle state of a change-set
type Status string

const (
	StatusPending Status = "pending"
	// StatusApplying marks a set claimed by an apply run
	StatusApplying  Status = "applying"
	StatusApplied   Status = "applied"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound   = errors.New("change-set not found")
	ErrImmutable  = errors.New("change-set is no longer pending")
	ErrDuplicate  = errors.New("an identical change-set is already pending")
	ErrValidation = errors.New("invalid change-set")
)

// ParseStatusFilter parses a list filter. "all" and "" match every status.
func ParseStatusFilter(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusApplied):
		return StatusApplied, nil
	case string(StatusCancelled):
		return StatusCancelled, nil
	case string(StatusApplying):
		return StatusApplying, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
}

// ApplyReport records what happened to each change when the set was applied
type ApplyReport struct {
	Applied     int      `json:"applied"`
	Unchanged   int      `json:"unchanged"`
	Skipped     int      `json:"skipped"`
	Conflicts   int      `json:"conflicts"`
	SkippedIDs  []string `json:"skippedIds,omitempty"`
	ConflictIDs []string `json:"conflictIds,omitempty"`
}

// ChangeSet is a dated bundle of price changes for one producer. It never carries the
// catalog it was computed against.
type ChangeSet struct {
	ID            string                   `json:"id"`
	ProducerSlug  string                   `json:"producerSlug"`
	ProducerName  string                   `json:"producerName"`
	ScheduledDate time.Time                `json:"scheduledDate"`
	CreatedAt     time.Time                `json:"createdAt"`
	Changes       []pricediff.AtomicChange `json:"changes"`
	Summary       pricediff.Summary        `json:"summary"`
	Status        Status                   `json:"status"`
	Fingerprint   string                   `json:"fingerprint"`
	AppliedAt     *time.Time               `json:"appliedAt,omitempty"`
	ClaimedAt     *time.Time               `json:"claimedAt,omitempty"`
	Report        *ApplyReport             `json:"report,omitempty"`
	LastError     string                   `json:"lastError,omitempty"`
}

// Day truncates t to midnight of its calendar day in loc
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsDue reports whether the set is pending and its calendar day is not after now's
func (cs *ChangeSet) IsDue(now time.Time, loc *time.Location) bool {
	if cs.Status != StatusPending {
		return false
	}
	return !Day(cs.ScheduledDate, loc).After(Day(now, loc))
}

// Mutable reports whether the set can still be rescheduled or deleted
func (cs *ChangeSet) Mutable() bool {
	return cs.Status == StatusPending
}

// sortChangeSets orders by scheduled date, then creation time, then id
func sortChangeSets(sets []*ChangeSet) {
	sort.SliceStable(sets, func(i, j int) bool {
		a, b := sets[i], sets[j]
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
