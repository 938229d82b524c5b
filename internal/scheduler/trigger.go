// Package scheduler applies due change-sets to producer catalogs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/changeset"
	"github.com/cenniki/pricelist-service/internal/metrics"
	"github.com/cenniki/pricelist-service/internal/notify"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/reconcile"
	"github.com/cenniki/pricelist-service/internal/telemetry"
)

// Result is the outcome of a RunDue call. One summary line per applied set, one message
// per failed set.
type Result struct {
	Applied []string `json:"applied"`
	Errors  []string `json:"errors"`
}

// Options configures a Trigger
type Options struct {
	// NotifyTimeout bounds each fire-and-forget notification
	NotifyTimeout time.Duration
	// Source labels metrics of runs started by this trigger
	Source string
}

// Trigger runs due change-sets through the reconcile engine
type Trigger struct {
	changes  *changeset.Service
	catalogs *producers.Repository
	engine   *reconcile.Engine
	notifier notify.Notifier
	metrics  *metrics.Recorder
	logger   *zerolog.Logger
	tracer   trace.Tracer
	cells    metric.Int64Counter
	opts     Options

	group    singleflight.Group
	inflight sync.WaitGroup
}

// NewTrigger creates a Trigger. notifier may be nil.
func NewTrigger(
	changes *changeset.Service,
	catalogs *producers.Repository,
	engine *reconcile.Engine,
	notifier notify.Notifier,
	logger *zerolog.Logger,
	opts Options,
) *Trigger {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	if opts.Source == "" {
		opts.Source = "api"
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cells, err := telemetry.Meter("scheduler").Int64Counter("pricelist.apply.cells",
		metric.WithDescription("Price cells processed by applied change-sets, by outcome"))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create apply counter")
	}
	return &Trigger{
		changes:  changes,
		catalogs: catalogs,
		engine:   engine,
		notifier: notifier,
		metrics:  metrics.NewRecorder(),
		logger:   logger,
		tracer:   telemetry.Tracer("scheduler"),
		cells:    cells,
		opts:     opts,
	}
}

// DueCount reports how many pending sets are due now without applying them
func (t *Trigger) DueCount(ctx context.Context) (int, error) {
	due, err := t.changes.Due(ctx)
	if err != nil {
		return 0, err
	}
	t.metrics.SetDue(len(due))
	return len(due), nil
}

// RunDue applies every pending set whose activation day has been reached. A failing set
// is released back to pending and reported in Errors; the batch continues. Concurrent
// calls share one run.
func (t *Trigger) RunDue(ctx context.Context) (*Result, error) {
	v, err, shared := t.group.Do("run-due", func() (interface{}, error) {
		return t.runDue(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		t.logger.Debug().Msg("Joined in-flight due run")
	}
	return v.(*Result), nil
}

func (t *Trigger) runDue(ctx context.Context) (*Result, error) {
	ctx, span := t.tracer.Start(ctx, "scheduler.RunDue")
	defer span.End()
	t.metrics.RecordRun(t.opts.Source)

	due, err := t.changes.Due(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list due change-sets: %w", err)
	}
	span.SetAttributes(attribute.Int("changesets.due", len(due)))

	result := &Result{Applied: []string{}, Errors: []string{}}
	for _, cs := range due {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", cs.ID, err))
			continue
		}
		applied, report, err := t.apply(ctx, cs.ID)
		if errors.Is(err, changeset.ErrImmutable) {
			// claimed by a concurrent run
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", cs.ProducerSlug, cs.ID, err))
			continue
		}
		result.Applied = append(result.Applied, summaryLine(applied, report))
	}

	remaining, err := t.changes.Due(ctx)
	if err == nil {
		t.metrics.SetDue(len(remaining))
	}

	t.logger.Info().
		Int("due", len(due)).
		Int("applied", len(result.Applied)).
		Int("errors", len(result.Errors)).
		Msg("Due change-sets processed")
	return result, nil
}

// ApplyNow applies one pending set regardless of its activation date
func (t *Trigger) ApplyNow(ctx context.Context, id string) (*changeset.ChangeSet, reconcile.Report, error) {
	return t.apply(ctx, id)
}

func (t *Trigger) apply(ctx context.Context, id string) (*changeset.ChangeSet, reconcile.Report, error) {
	ctx, span := t.tracer.Start(ctx, "scheduler.Apply", trace.WithAttributes(attribute.String("changeset.id", id)))
	defer span.End()
	start := time.Now()

	claimed, err := t.changes.Claim(ctx, id)
	if err != nil {
		return nil, reconcile.Report{}, err
	}
	span.SetAttributes(attribute.String("producer", claimed.ProducerSlug))

	var report reconcile.Report
	_, err = t.catalogs.Update(ctx, claimed.ProducerSlug, func(snap *producers.Snapshot) (*catalog.Document, error) {
		doc, r, err := t.engine.Apply(claimed, snap.Document)
		report = r
		return doc, err
	})
	if err != nil {
		if errors.Is(err, producers.ErrConflict) {
			t.metrics.RecordConflict(claimed.ProducerSlug)
		}
		t.fail(ctx, span, claimed, start, err)
		return nil, report, err
	}

	applied, err := t.changes.MarkApplied(ctx, claimed.ID, report.Stored())
	if err != nil {
		// the catalog is written; replaying the set later is idempotent
		t.fail(ctx, span, claimed, start, err)
		return nil, report, fmt.Errorf("catalog updated but change-set not marked applied: %w", err)
	}

	t.metrics.RecordChangeSet(time.Since(start), true)
	t.metrics.RecordOutcome(string(reconcile.OutcomeApplied), report.Applied)
	t.metrics.RecordOutcome(string(reconcile.OutcomeUnchanged), report.Unchanged)
	t.metrics.RecordOutcome(string(reconcile.OutcomeSkippedNotFound), report.Skipped)
	t.metrics.RecordOutcome(string(reconcile.OutcomeConflict), report.Conflicts)
	t.countCells(ctx, applied.ProducerSlug, report)

	t.logger.Info().
		Str("change_set", applied.ID).
		Str("producer", applied.ProducerSlug).
		Int("applied", report.Applied).
		Int("unchanged", report.Unchanged).
		Int("skipped", report.Skipped).
		Int("conflicts", report.Conflicts).
		Msg("Change-set applied")

	t.notify(applied)
	return applied, report, nil
}

func (t *Trigger) countCells(ctx context.Context, producer string, report reconcile.Report) {
	if t.cells == nil {
		return
	}
	for outcome, n := range map[reconcile.OutcomeStatus]int{
		reconcile.OutcomeApplied:         report.Applied,
		reconcile.OutcomeUnchanged:       report.Unchanged,
		reconcile.OutcomeSkippedNotFound: report.Skipped,
		reconcile.OutcomeConflict:        report.Conflicts,
	} {
		if n > 0 {
			t.cells.Add(ctx, int64(n), metric.WithAttributes(
				attribute.String("producer", producer),
				attribute.String("outcome", string(outcome)),
			))
		}
	}
}

func (t *Trigger) fail(ctx context.Context, span trace.Span, cs *changeset.ChangeSet, start time.Time, cause error) {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	t.metrics.RecordChangeSet(time.Since(start), false)

	if err := t.changes.Release(context.WithoutCancel(ctx), cs.ID, cause); err != nil {
		t.logger.Error().Err(err).Str("change_set", cs.ID).Msg("Failed to release change-set")
	}
	t.logger.Error().Err(cause).Str("change_set", cs.ID).Str("producer", cs.ProducerSlug).Msg("Change-set apply failed")
}

// notify delivers the notification in the background; failures are only logged
func (t *Trigger) notify(cs *changeset.ChangeSet) {
	if t.notifier == nil {
		return
	}
	n := notify.Notification{
		ProducerSlug: cs.ProducerSlug,
		ProducerName: cs.ProducerName,
		ChangeSetID:  cs.ID,
		Summary:      cs.Summary,
		Models:       notify.SummarizeModels(cs.Changes),
	}
	if p, err := t.catalogs.Registry().Get(cs.ProducerSlug); err == nil {
		n.Recipients = p.Recipients
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.opts.NotifyTimeout)
		defer cancel()
		if err := t.notifier.Notify(ctx, n); err != nil {
			t.metrics.RecordNotificationFailure()
			t.logger.Warn().Err(err).Str("change_set", cs.ID).Msg("Notification failed")
		}
	}()
}

// Wait blocks until background notifications have finished
func (t *Trigger) Wait() {
	t.inflight.Wait()
}

func summaryLine(cs *changeset.ChangeSet, r reconcile.Report) string {
	name := cs.ProducerName
	if name == "" {
		name = cs.ProducerSlug
	}
	return fmt.Sprintf("%s: %d changes applied (%d unchanged, %d skipped, %d conflicts) [%s]",
		name, r.Applied, r.Unchanged, r.Skipped, r.Conflicts, cs.ID)
}
