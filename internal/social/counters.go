package social

import (
	"context"

	"github.com/pulse-social/backend/internal/errors"
	"github.com/pulse-social/backend/internal/store"
)

// Counters performs read-modify-write reconciliation of denormalized
// counter fields (likes, comments, follower counts). The record store has
// no atomic increment and no compare-and-swap, so two concurrent
// adjustments of the same field can lose one update (last-write-wins on
// the read value). That race is an accepted limitation of the store, not
// something this code tries to hide.
type Counters struct {
	store *store.Store
}

// NewCounters creates a counter reconciler over the record store.
func NewCounters(st *store.Store) *Counters {
	return &Counters{store: st}
}

// Adjust applies delta to the named counter field of the record with the
// given id, flooring the result at zero. Returns the written value.
// Fails with NotFound when the record does not exist.
func (c *Counters) Adjust(ctx context.Context, model interface{}, id int64, field string, delta int) (int, error) {
	current, err := c.readCounter(ctx, model, id, field)
	if err != nil {
		return 0, err
	}

	newValue := current + delta
	if newValue < 0 {
		newValue = 0
	}

	if err := c.store.Update(ctx, model, id, map[string]interface{}{field: newValue}); err != nil {
		return 0, err
	}
	return newValue, nil
}

func (c *Counters) readCounter(ctx context.Context, model interface{}, id int64, field string) (int, error) {
	fields, err := c.store.GetFields(ctx, model, id, field)
	if err != nil {
		return 0, err
	}
	val, ok := fields[field]
	if !ok {
		return 0, errors.InternalError("counter field missing from record")
	}
	return asInt(val), nil
}

// asInt normalizes the numeric types different drivers hand back.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
