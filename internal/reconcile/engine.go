// Package reconcile replays change-sets against the live catalog of a producer.
package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/pricediff"
)

// Policy decides what happens when the live value differs from a change's old price
type Policy string

const (
	// PolicyOverwrite always writes the new price
	PolicyOverwrite Policy = "overwrite"
	// PolicyVerify writes only when the live value still equals the old price
	PolicyVerify Policy = "verify"
)

// ErrUnknownPolicy is returned by ParsePolicy
var ErrUnknownPolicy = errors.New("unknown reconcile policy")

// ParsePolicy parses a policy name; empty means overwrite
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyVerify:
		return PolicyVerify, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// OutcomeStatus is what happened to one change
type OutcomeStatus string

const (
	OutcomeApplied         OutcomeStatus = "applied"
	OutcomeUnchanged       OutcomeStatus = "unchanged"
	OutcomeSkippedNotFound OutcomeStatus = "skipped_not_found"
	OutcomeConflict        OutcomeStatus = "conflict"
)

// Outcome of one change
type Outcome struct {
	ChangeID string        `json:"changeId"`
	Status   OutcomeStatus `json:"status"`
	// Current is the live value found in the document, when located
	Current *float64 `json:"current,omitempty"`
}

// Report collects the outcomes of one apply
type Report struct {
	Outcomes  []Outcome `json:"outcomes"`
	Applied   int       `json:"applied"`
	Unchanged int       `json:"unchanged"`
	Skipped   int       `json:"skipped"`
	Conflicts int       `json:"conflicts"`
}

func (r *Report) add(id string, status OutcomeStatus, current *float64) {
	r.Outcomes = append(r.Outcomes, Outcome{ChangeID: id, Status: status, Current: current})
	switch status {
	case OutcomeApplied:
		r.Applied++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkippedNotFound:
		r.Skipped++
	case OutcomeConflict:
		r.Conflicts++
	}
}

// Stored condenses the report for persistence on the change-set
func (r Report) Stored() changeset.ApplyReport {
	out := changeset.ApplyReport{
		Applied:   r.Applied,
		Unchanged: r.Unchanged,
		Skipped:   r.Skipped,
		Conflicts: r.Conflicts,
	}
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeSkippedNotFound:
			out.SkippedIDs = append(out.SkippedIDs, o.ChangeID)
		case OutcomeConflict:
			out.ConflictIDs = append(out.ConflictIDs, o.ChangeID)
		}
	}
	return out
}

// Engine applies change lists to catalog documents
type Engine struct {
	policy Policy
	logger *zerolog.Logger
}

// NewEngine creates an Engine. An empty policy means overwrite.
func NewEngine(policy Policy, logger *zerolog.Logger) *Engine {
	if policy == "" {
		policy = PolicyOverwrite
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Engine{policy: policy, logger: logger}
}

// Policy returns the engine's conflict policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// Apply replays a change-set on the current document and returns the updated copy.
// Changes whose target cannot be located are skipped; the input is never modified.
func (e *Engine) Apply(cs *changeset.ChangeSet, current *catalog.Document) (*catalog.Document, Report, error) {
	if cs == nil {
		return nil, Report{}, errors.New("nil change-set")
	}
	doc, report, err := e.ApplyChanges(cs.Changes, current)
	if err != nil {
		return nil, report, fmt.Errorf("change-set %s: %w", cs.ID, err)
	}
	if report.Skipped > 0 || report.Conflicts > 0 {
		e.logger.Warn().
			Str("change_set", cs.ID).
			Str("producer", cs.ProducerSlug).
			Int("skipped", report.Skipped).
			Int("conflicts", report.Conflicts).
			Msg("Change-set applied partially")
	}
	return doc, report, nil
}

// ApplyChanges replays a change list on the current document
func (e *Engine) ApplyChanges(changes []pricediff.AtomicChange, current *catalog.Document) (*catalog.Document, Report, error) {
	report := Report{Outcomes: make([]Outcome, 0, len(changes))}
	if current == nil {
		return nil, report, errors.New("nil document")
	}

	writes := make([]catalog.Write, 0, len(changes))
	for _, change := range changes {
		id := change.ID
		if id == "" {
			id = pricediff.ChangeID(change)
		}

		target, ok := locate(current, change)
		if !ok {
			if split, isLabel := splitLabel(change); isLabel {
				target, ok = locate(current, split)
			}
		}
		if !ok {
			e.logger.Debug().Str("change", id).Msg("Target cell not found, skipping")
			report.add(id, OutcomeSkippedNotFound, nil)
			continue
		}
		value := target.value

		switch {
		case value == change.NewPrice:
			report.add(id, OutcomeUnchanged, &value)
		case e.policy == PolicyVerify && value != change.OldPrice:
			e.logger.Debug().Str("change", id).Float64("current", value).Float64("expected", change.OldPrice).Msg("Price conflict")
			report.add(id, OutcomeConflict, &value)
		default:
			writes = append(writes, catalog.Write{Path: target.path, Value: change.NewPrice})
			report.add(id, OutcomeApplied, &value)
		}
	}

	doc, err := current.WithPrices(writes)
	if err != nil {
		return nil, report, err
	}
	return doc, report, nil
}

// splitLabel reads an "<element> (<group>)" label that arrived without a price group.
// It is only consulted when the literal element code is not in the document, since
// flat-list codes may end in parentheses themselves.
func splitLabel(c pricediff.AtomicChange) (pricediff.AtomicChange, bool) {
	if c.Element == "" || c.PriceGroup != "" {
		return c, false
	}
	element, group, ok := pricediff.SplitElementLabel(c.Element)
	if !ok {
		return c, false
	}
	c.Element = element
	c.PriceGroup = group
	return c, true
}
