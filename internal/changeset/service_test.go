package changeset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cenniki/pricelist-service/internal/pricediff"
)

var testNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newTestService(retain bool) *Service {
	return NewService(NewMemoryStore(), Options{
		RetainCancelled: retain,
		Location:        time.UTC,
		Now:             func() time.Time { return testNow },
	}, nil)
}

func createInput(day time.Time, newPrice float64) CreateInput {
	return CreateInput{
		Producer:      Producer{Slug: "meble-a", Name: "Meble A"},
		ScheduledDate: day,
		Changes: []pricediff.AtomicChange{
			{Category: "krzesła", Product: "X", PriceGroup: "grupa I", OldPrice: 100, NewPrice: newPrice},
		},
	}
}

func TestServiceCreate(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	cs, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)

	assert.Regexp(t, `^chg_[0-9A-Za-z]{24}$`, cs.ID)
	assert.Equal(t, StatusPending, cs.Status)
	assert.Equal(t, testNow, cs.CreatedAt)
	assert.Equal(t, "cat:krzesła/prod:X/grp:grupa I", cs.Changes[0].ID, "ids are recomputed")
	assert.Equal(t, 10.0, cs.Changes[0].PercentChange)
	assert.Equal(t, 1, cs.Summary.TotalChanges)
	assert.Len(t, cs.Fingerprint, 64)
}

func TestServiceCreateKeepsSuppliedSummary(t *testing.T) {
	svc := newTestService(false)
	in := createInput(testNow, 110)
	in.Summary = &pricediff.Summary{TotalChanges: 1, Increased: 1, AvgChangePercent: 10}

	cs, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, *in.Summary, cs.Summary)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"no producer", CreateInput{ScheduledDate: testNow, Changes: createInput(testNow, 1).Changes}},
		{"no date", CreateInput{Producer: Producer{Slug: "a"}, Changes: createInput(testNow, 1).Changes}},
		{"no changes", CreateInput{Producer: Producer{Slug: "a"}, ScheduledDate: testNow}},
		{"only blank products", CreateInput{Producer: Producer{Slug: "a"}, ScheduledDate: testNow,
			Changes: []pricediff.AtomicChange{{Product: " ", OldPrice: 1, NewPrice: 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestServiceCreateDuplicate(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)

	// same day, later hour: same calendar day, same fingerprint
	_, err = svc.Create(ctx, createInput(testNow.Add(3*time.Hour), 110))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(ctx, createInput(testNow, 120))
	assert.NoError(t, err, "different prices are a different set")

	_, err = svc.Create(ctx, createInput(testNow.AddDate(0, 0, 1), 110))
	assert.NoError(t, err, "different day is a different set")
}

func TestServiceCreateConcurrentDuplicates(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, createInput(testNow, 110)); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestServiceReschedule(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	cs, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)

	next := testNow.AddDate(0, 1, 0)
	updated, err := svc.Reschedule(ctx, cs.ID, next)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
	assert.True(t, updated.ScheduledDate.Equal(next))
	assert.NotEqual(t, cs.Fingerprint, updated.Fingerprint)

	_, err = svc.Reschedule(ctx, cs.ID, time.Time{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Reschedule(ctx, "chg_missing", next)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes by default", func(t *testing.T) {
		svc := newTestService(false)
		cs, err := svc.Create(ctx, createInput(testNow, 110))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, cs.ID))
		_, err = svc.Get(ctx, cs.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("retains cancelled", func(t *testing.T) {
		svc := newTestService(true)
		cs, err := svc.Create(ctx, createInput(testNow, 110))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, cs.ID))
		got, err := svc.Get(ctx, cs.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)

		cancelled, err := svc.List(ctx, StatusCancelled)
		require.NoError(t, err)
		assert.Len(t, cancelled, 1)

		assert.ErrorIs(t, svc.Delete(ctx, cs.ID), ErrImmutable)
		_, err = svc.Reschedule(ctx, cs.ID, testNow)
		assert.ErrorIs(t, err, ErrImmutable)
	})
}

func TestServiceLifecycle(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	cs, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)

	claimed, err := svc.Claim(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApplying, claimed.Status)

	_, err = svc.Claim(ctx, cs.ID)
	assert.ErrorIs(t, err, ErrImmutable, "a set can be claimed once")

	require.NoError(t, svc.Release(ctx, cs.ID, errors.New("catalog missing")))
	released, err := svc.Get(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, released.Status)
	assert.Equal(t, "catalog missing", released.LastError)

	_, err = svc.Claim(ctx, cs.ID)
	require.NoError(t, err)
	applied, err := svc.MarkApplied(ctx, cs.ID, ApplyReport{Applied: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedAt)
	assert.Equal(t, testNow, *applied.AppliedAt)
	assert.Empty(t, applied.LastError)

	assert.ErrorIs(t, svc.Delete(ctx, cs.ID), ErrImmutable)
	_, err = svc.MarkApplied(ctx, cs.ID, ApplyReport{})
	assert.ErrorIs(t, err, ErrImmutable, "no transition leaves applied")
}

func TestServiceDue(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	today, err := svc.Create(ctx, createInput(testNow.Add(8*time.Hour), 110))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createInput(testNow.AddDate(0, 0, 1), 110))
	require.NoError(t, err)

	due, err := svc.Due(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, today.ID, due[0].ID)
}

func TestServiceRecoverStale(t *testing.T) {
	ctx := context.Background()
	now := testNow
	svc := NewService(NewMemoryStore(), Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}, nil)

	cs, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)
	claimed, err := svc.Claim(ctx, cs.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.ClaimedAt)
	assert.Equal(t, testNow, *claimed.ClaimedAt)

	// another process starting up while the run is still going
	now = testNow.Add(5 * time.Minute)
	n, err := svc.RecoverStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, err = svc.Claim(ctx, cs.ID)
	assert.ErrorIs(t, err, ErrImmutable, "a live claim is kept")

	now = testNow.Add(time.Hour)
	n, err = svc.RecoverStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.ClaimedAt)
	assert.Equal(t, "apply interrupted", got.LastError)
}

func TestServiceRecoverStaleWithoutTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, Options{Location: time.UTC, Now: func() time.Time { return testNow }}, nil)

	legacy := sampleSet("chg_legacy", "a", 1)
	legacy.Status = StatusApplying
	require.NoError(t, store.Create(ctx, legacy))

	n, err := svc.RecoverStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// claimingStore lets an apply run claim the set right before a delete reaches the store
type claimingStore struct {
	Store
	svc *Service
}

func (s *claimingStore) Delete(ctx context.Context, id string, check func(*ChangeSet) error) error {
	if _, err := s.svc.Claim(ctx, id); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id, check)
}

func TestServiceDeleteLosesToClaim(t *testing.T) {
	ctx := context.Background()
	store := &claimingStore{Store: NewMemoryStore()}
	svc := NewService(store, Options{Location: time.UTC, Now: func() time.Time { return testNow }}, nil)
	store.svc = svc

	cs, err := svc.Create(ctx, createInput(testNow, 110))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, cs.ID), ErrImmutable)

	applied, err := svc.MarkApplied(ctx, cs.ID, ApplyReport{Applied: 1})
	require.NoError(t, err, "the claimed set survives the delete")
	assert.Equal(t, StatusApplied, applied.Status)
}
