package changeset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/fingerprint"
	"github.com/cenniki/pricelist-service/internal/pkg/cuid2"
	"github.com/cenniki/pricelist-service/internal/pricediff"
)

// IDPrefix prefixes every change-set id
const IDPrefix = "chg"

// Producer identifies the owner of a change-set
type Producer struct {
	Slug string
	Name string
}

// CreateInput is the payload of Service.Create. A nil Summary is computed from Changes.
type CreateInput struct {
	Producer      Producer
	ScheduledDate time.Time
	Changes       []pricediff.AtomicChange
	Summary       *pricediff.Summary
}

// Options configures a Service
type Options struct {
	// RetainCancelled keeps deleted sets as "cancelled" instead of removing them
	RetainCancelled bool
	Location        *time.Location
	Now             func() time.Time
}

// Service implements change-set lifecycle rules on top of a Store
type Service struct {
	store  Store
	opts   Options
	ids    *cuid2.Generator
	logger *zerolog.Logger

	// createMu serialises the duplicate check with the insert
	createMu sync.Mutex
}

// NewService creates a Service
func NewService(store Store, opts Options, logger *zerolog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:  store,
		opts:   opts,
		ids:    cuid2.NewGenerator(opts.Now),
		logger: logger,
	}
}

// Store returns the underlying store
func (s *Service) Store() Store {
	return s.store
}

// Location is the zone used for calendar-day comparisons
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

// Fingerprint hashes a producer, activation day and change list
func Fingerprint(producerSlug string, day time.Time, changes []pricediff.AtomicChange) string {
	entries := make([]fingerprint.Entry, len(changes))
	for i, c := range changes {
		entries[i] = fingerprint.Entry{ChangeID: c.ID, OldPrice: c.OldPrice, NewPrice: c.NewPrice}
	}
	return fingerprint.Compute(producerSlug+"|"+day.Format("2006-01-02"), entries)
}

// Create validates and stores a new pending change-set
func (s *Service) Create(ctx context.Context, in CreateInput) (*ChangeSet, error) {
	slug := strings.TrimSpace(in.Producer.Slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: producerSlug is required", ErrValidation)
	}
	if in.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduledDate is required", ErrValidation)
	}
	changes := pricediff.FromChanges(in.Changes)
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: at least one change is required", ErrValidation)
	}

	summary := pricediff.Summarize(changes)
	if in.Summary != nil {
		summary = *in.Summary
	}
	name := strings.TrimSpace(in.Producer.Name)
	if name == "" {
		name = slug
	}

	now := s.opts.Now()
	cs := &ChangeSet{
		ID:            s.ids.New(IDPrefix),
		ProducerSlug:  slug,
		ProducerName:  name,
		ScheduledDate: in.ScheduledDate,
		CreatedAt:     now,
		Changes:       changes,
		Summary:       summary,
		Status:        StatusPending,
		Fingerprint:   Fingerprint(slug, Day(in.ScheduledDate, s.opts.Location), changes),
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	pending, err := s.store.List(ctx, Filter{Status: StatusPending, ProducerSlug: slug})
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if p.Fingerprint == cs.Fingerprint {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
		}
	}

	if err := s.store.Create(ctx, cs); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", cs.ID).
		Str("producer", slug).
		Time("scheduled_date", cs.ScheduledDate).
		Int("changes", len(changes)).
		Msg("Change-set scheduled")
	return cs, nil
}

// Get returns one change-set
func (s *Service) Get(ctx context.Context, id string) (*ChangeSet, error) {
	return s.store.Get(ctx, id)
}

// List returns change-sets with the given status; "" lists all
func (s *Service) List(ctx context.Context, status Status) ([]*ChangeSet, error) {
	return s.store.List(ctx, Filter{Status: status})
}

// Due returns the pending sets whose calendar day has been reached
func (s *Service) Due(ctx context.Context) ([]*ChangeSet, error) {
	pending, err := s.store.List(ctx, Filter{Status: StatusPending})
	if err != nil {
		return nil, err
	}
	now := s.opts.Now()
	due := make([]*ChangeSet, 0, len(pending))
	for _, cs := range pending {
		if cs.IsDue(now, s.opts.Location) {
			due = append(due, cs)
		}
	}
	return due, nil
}

func requirePending(cs *ChangeSet) error {
	if !cs.Mutable() {
		return fmt.Errorf("%w: %s is %s", ErrImmutable, cs.ID, cs.Status)
	}
	return nil
}

// Reschedule moves a pending set to a new activation date
func (s *Service) Reschedule(ctx context.Context, id string, date time.Time) (*ChangeSet, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: scheduledDate is required", ErrValidation)
	}
	return s.store.Update(ctx, id, func(cs *ChangeSet) error {
		if err := requirePending(cs); err != nil {
			return err
		}
		cs.ScheduledDate = date
		cs.Fingerprint = Fingerprint(cs.ProducerSlug, Day(date, s.opts.Location), cs.Changes)
		return nil
	})
}

// Delete removes a pending set, or marks it cancelled when cancelled sets are retained
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.opts.RetainCancelled {
		_, err := s.store.Update(ctx, id, func(cs *ChangeSet) error {
			if err := requirePending(cs); err != nil {
				return err
			}
			cs.Status = StatusCancelled
			return nil
		})
		return err
	}

	return s.store.Delete(ctx, id, requirePending)
}

// Claim moves a pending set to applying. Only one caller can claim a set.
func (s *Service) Claim(ctx context.Context, id string) (*ChangeSet, error) {
	return s.store.Update(ctx, id, func(cs *ChangeSet) error {
		if cs.Status != StatusPending {
			return fmt.Errorf("%w: %s is %s", ErrImmutable, cs.ID, cs.Status)
		}
		at := s.opts.Now()
		cs.Status = StatusApplying
		cs.ClaimedAt = &at
		return nil
	})
}

// Release returns a claimed set to pending, recording why the attempt failed
func (s *Service) Release(ctx context.Context, id string, cause error) error {
	_, err := s.store.Update(ctx, id, func(cs *ChangeSet) error {
		if cs.Status != StatusApplying {
			return nil
		}
		cs.Status = StatusPending
		cs.ClaimedAt = nil
		if cause != nil {
			cs.LastError = cause.Error()
		}
		return nil
	})
	return err
}

// MarkApplied finalises a claimed set
func (s *Service) MarkApplied(ctx context.Context, id string, report ApplyReport) (*ChangeSet, error) {
	return s.store.Update(ctx, id, func(cs *ChangeSet) error {
		if cs.Status != StatusApplying && cs.Status != StatusPending {
			return fmt.Errorf("%w: %s is %s", ErrImmutable, cs.ID, cs.Status)
		}
		at := s.opts.Now()
		cs.Status = StatusApplied
		cs.AppliedAt = &at
		cs.ClaimedAt = nil
		cs.Report = &report
		cs.LastError = ""
		return nil
	})
}

var errClaimLive = errors.New("claim is still live")

// RecoverStale releases sets left in applying by a crashed run. Only claims at least
// olderThan old are released, so a run in progress in another process keeps its claim.
// Claims without a timestamp are always stale.
func (s *Service) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stuck, err := s.store.List(ctx, Filter{Status: StatusApplying})
	if err != nil {
		return 0, err
	}
	cutoff := s.opts.Now().Add(-olderThan)

	recovered := 0
	for _, cs := range stuck {
		_, err := s.store.Update(ctx, cs.ID, func(cs *ChangeSet) error {
			if cs.Status != StatusApplying {
				return errClaimLive
			}
			if cs.ClaimedAt != nil && cs.ClaimedAt.After(cutoff) {
				return errClaimLive
			}
			cs.Status = StatusPending
			cs.ClaimedAt = nil
			cs.LastError = "apply interrupted"
			return nil
		})
		switch {
		case errors.Is(err, errClaimLive), errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			return recovered, err
		}
		recovered++
	}
	if recovered > 0 {
		s.logger.Warn().Int("count", recovered).Msg("Released change-sets left in applying state")
	}
	return recovered, nil
}
