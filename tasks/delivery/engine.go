// Package delivery delivers one-shot notifications (reminders, schedule
// announcements) at most once.
//
// Each record can be found by two paths: an in-process timer armed when the
// record is created or when the process starts, and the periodic sweep that
// backs it up across restarts. Both paths go through Deliver, which claims
// the record by deleting it before sending. Whoever claims it sends it; the
// other path finds nothing. A failed send is not retried.
package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"orion-bot/metrics"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/rs/zerolog"
)

// Record is a deliverable row.
type Record interface {
	RecordID() int64
	DueAt() time.Time
}

// Store is the persistence an engine needs. Claim must be atomic: only one
// caller may receive a given record, the rest get database.ErrNotFound.
type Store[T Record] interface {
	Claim(ctx context.Context, id int64) (*T, error)
	Due(ctx context.Context, now time.Time) ([]T, error)
	Pending(ctx context.Context) ([]T, error)
}

// SendFunc performs the actual notification.
type SendFunc[T Record] func(ctx context.Context, rec T) error

const (
	PathTimer = "timer"
	PathSweep = "sweep"
)

type Engine[T Record] struct {
	kind        string
	store       Store[T]
	send        SendFunc[T]
	sendTimeout time.Duration
	now         func() time.Time
	log         zerolog.Logger

	mu      sync.Mutex
	timers  map[int64]*time.Timer
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates an engine for one record kind. sendTimeout bounds each timer
// delivery; sweep deliveries use the sweeper's per-record context.
func New[T Record](kind string, store Store[T], send SendFunc[T], sendTimeout time.Duration) *Engine[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine[T]{
		kind:        kind,
		store:       store,
		send:        send,
		sendTimeout: sendTimeout,
		now:         time.Now,
		log:         utils.Module("delivery").With().Str("kind", kind).Logger(),
		timers:      make(map[int64]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Schedule arms an in-process timer for rec. Records already due fire
// immediately. Scheduling the same id twice replaces the earlier timer.
func (e *Engine[T]) Schedule(rec T) {
	id := rec.RecordID()
	delay := rec.DueAt().Sub(e.now())
	if delay < 0 {
		delay = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if old, ok := e.timers[id]; ok {
		old.Stop()
	}
	e.timers[id] = time.AfterFunc(delay, func() { e.fire(id) })
	metrics.PendingTimers.WithLabelValues(e.kind).Set(float64(len(e.timers)))
}

func (e *Engine[T]) fire(id int64) {
	ctx := e.ctx
	if e.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.sendTimeout)
		defer cancel()
	}
	if _, err := e.deliver(ctx, id, PathTimer); err != nil {
		e.log.Warn().Err(err).Int64("id", id).Msg("Timer delivery failed")
	}
}

// Deliver claims the record and sends it. delivered is false when another
// path already claimed it. A send error is returned after the record has
// been removed, so it will not be attempted again.
func (e *Engine[T]) Deliver(ctx context.Context, id int64) (delivered bool, err error) {
	return e.deliver(ctx, id, PathSweep)
}

func (e *Engine[T]) deliver(ctx context.Context, id int64, path string) (bool, error) {
	e.cancelTimer(id)

	rec, err := e.store.Claim(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		metrics.DeliveriesTotal.WithLabelValues(e.kind, path, "already_claimed").Inc()
		return false, nil
	}
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(e.kind, path, "claim_error").Inc()
		return false, err
	}

	if err := e.send(ctx, *rec); err != nil {
		metrics.DeliveriesTotal.WithLabelValues(e.kind, path, "send_error").Inc()
		return true, err
	}
	metrics.DeliveriesTotal.WithLabelValues(e.kind, path, "delivered").Inc()
	e.log.Debug().Int64("id", id).Str("path", path).Msg("Delivered")
	return true, nil
}

// Due lists records whose delivery time has passed.
func (e *Engine[T]) Due(ctx context.Context, now time.Time) ([]T, error) {
	return e.store.Due(ctx, now)
}

// Resolve delivers a due record found by the sweep.
func (e *Engine[T]) Resolve(ctx context.Context, rec T) error {
	_, err := e.Deliver(ctx, rec.RecordID())
	return err
}

// SweepDue delivers every due record once and returns how many were sent.
// Errors for individual records are joined and returned after all were tried.
func (e *Engine[T]) SweepDue(ctx context.Context, now time.Time) (int, error) {
	due, err := e.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	var errs []error
	sent := 0
	for _, rec := range due {
		delivered, err := e.Deliver(ctx, rec.RecordID())
		if err != nil {
			errs = append(errs, err)
		}
		if delivered && err == nil {
			sent++
		}
	}
	return sent, errors.Join(errs...)
}

// Rearm schedules timers for every pending record, used at startup.
func (e *Engine[T]) Rearm(ctx context.Context) (int, error) {
	pending, err := e.store.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range pending {
		e.Schedule(rec)
	}
	return len(pending), nil
}

// Pending returns the number of armed timers.
func (e *Engine[T]) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Stop cancels all timers without delivering them and aborts in-flight timer
// sends. Undelivered records stay in the store for the sweep after restart.
func (e *Engine[T]) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.cancel()
	metrics.PendingTimers.WithLabelValues(e.kind).Set(0)
}

func (e *Engine[T]) cancelTimer(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
		metrics.PendingTimers.WithLabelValues(e.kind).Set(float64(len(e.timers)))
	}
}
