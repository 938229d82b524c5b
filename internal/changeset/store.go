package changeset

import (
	"context"
)

// Filter selects change-sets. Empty fields match everything.
type Filter struct {
	Status       Status
	ProducerSlug string
}

func (f Filter) match(cs *ChangeSet) bool {
	if f.Status != "" && cs.Status != f.Status {
		return false
	}
	if f.ProducerSlug != "" && cs.ProducerSlug != f.ProducerSlug {
		return false
	}
	return true
}

// Store persists change-sets. Every call is atomic with respect to other calls on the
// same store; Update runs mutate inside that critical section and discards the change
// when mutate returns an error. Delete runs check the same way and keeps the set when
// check fails; a nil check deletes unconditionally.
type Store interface {
	Create(ctx context.Context, cs *ChangeSet) error
	Get(ctx context.Context, id string) (*ChangeSet, error)
	// List returns matching sets ordered by scheduled date, then creation time
	List(ctx context.Context, filter Filter) ([]*ChangeSet, error)
	Update(ctx context.Context, id string, mutate func(*ChangeSet) error) (*ChangeSet, error)
	Delete(ctx context.Context, id string, check func(*ChangeSet) error) error
}
