package scanner

import (
	"context"
	"fmt"
	"time"

	"orion-bot/model"
	"orion-bot/tasks/delivery"
)

// LockSource lists locks whose expiry has passed.
type LockSource interface {
	Due(ctx context.Context, now time.Time) ([]model.LockRecord, error)
}

// LockResolver releases one expired lock.
type LockResolver interface {
	Resolve(ctx context.Context, rec model.LockRecord) error
}

// NewLockSweep sweeps expired channel locks.
func NewLockSweep(src LockSource, resolver LockResolver, timeout time.Duration) *Sweep[model.LockRecord] {
	return &Sweep[model.LockRecord]{
		Name:          "locks",
		Due:           src.Due,
		Resolve:       resolver.Resolve,
		RecordTimeout: timeout,
		Describe: func(rec model.LockRecord) string {
			return fmt.Sprintf("lock %d (channel %s)", rec.ID, rec.ChannelID)
		},
	}
}

// NewDeliverySweep is the backstop for a delivery engine: anything whose
// timer was lost (restart, clock jump) is delivered through the same claim path.
func NewDeliverySweep[T delivery.Record](name string, engine *delivery.Engine[T], timeout time.Duration) *Sweep[T] {
	return &Sweep[T]{
		Name:          name,
		Due:           engine.Due,
		Resolve:       engine.Resolve,
		RecordTimeout: timeout,
		Describe: func(rec T) string {
			return fmt.Sprintf("%s %d", name, rec.RecordID())
		},
	}
}
