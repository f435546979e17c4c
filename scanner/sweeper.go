package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orion-bot/metrics"
	"orion-bot/utils"

	"github.com/rs/zerolog"
)

const (
	DefaultInterval      = 30 * time.Second
	MinInterval          = 5 * time.Second
	MaxInterval          = 60 * time.Second
	DefaultRecordTimeout = 15 * time.Second
)

// ErrRecordTimeout is reported when one record's resolution outlives its budget.
var ErrRecordTimeout = errors.New("record resolution timed out")

// ClampInterval keeps a configured sweep interval within [MinInterval, MaxInterval].
// Zero selects DefaultInterval.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

// Sweep periodically resolves due records of one resource type. Each record
// gets its own timeout and panic guard, so a slow or poisoned record never
// stops the rest of the tick.
type Sweep[T any] struct {
	Name          string
	Due           func(ctx context.Context, now time.Time) ([]T, error)
	Resolve       func(ctx context.Context, rec T) error
	Describe      func(rec T) string
	RecordTimeout time.Duration

	now func() time.Time
}

// TickResult summarises one pass.
type TickResult struct {
	Due      int
	Resolved int
	Failed   int
	// Err is set when the due query failed and the tick was skipped.
	Err error
}

// Tick runs one pass over the records due at now.
func (s *Sweep[T]) Tick(ctx context.Context, now time.Time) TickResult {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues(s.Name).Observe(time.Since(start).Seconds())
	}()
	logger := s.logger()

	due, err := s.Due(ctx, now)
	if err != nil {
		metrics.SweepTicksTotal.WithLabelValues(s.Name, "skipped").Inc()
		logger.Error().Err(err).Msg("Due query failed, skipping tick")
		return TickResult{Err: err}
	}

	res := TickResult{Due: len(due)}
	for _, rec := range due {
		if ctx.Err() != nil {
			break
		}
		if err := s.resolveOne(ctx, rec); err != nil {
			res.Failed++
			metrics.SweepRecordsTotal.WithLabelValues(s.Name, "error").Inc()
			logger.Warn().Err(err).Str("record", s.describe(rec)).Msg("Failed to resolve due record")
			continue
		}
		res.Resolved++
		metrics.SweepRecordsTotal.WithLabelValues(s.Name, "ok").Inc()
	}

	metrics.SweepTicksTotal.WithLabelValues(s.Name, "ok").Inc()
	if res.Due > 0 {
		logger.Info().Int("due", res.Due).Int("resolved", res.Resolved).Int("failed", res.Failed).Msg("Sweep tick finished")
	}
	return res
}

// resolveOne runs Resolve in its own goroutine so that work which ignores
// its context still cannot hold up the next record past the timeout.
func (s *Sweep[T]) resolveOne(ctx context.Context, rec T) error {
	timeout := s.RecordTimeout
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}
	recCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic resolving record: %v", r)
			}
		}()
		done <- s.Resolve(recCtx, rec)
	}()

	select {
	case err := <-done:
		return err
	case <-recCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRecordTimeout
	}
}

// Run ticks every interval until ctx is cancelled. The first tick runs
// immediately so records that came due while the process was down are
// picked up at startup.
func (s *Sweep[T]) Run(ctx context.Context, interval time.Duration) {
	interval = ClampInterval(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger().Info().Dur("interval", interval).Msg("Sweeper started")
	s.Tick(ctx, s.clock())
	for {
		select {
		case <-ticker.C:
			s.Tick(ctx, s.clock())
		case <-ctx.Done():
			s.logger().Info().Msg("Sweeper stopped")
			return
		}
	}
}

func (s *Sweep[T]) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Sweep[T]) logger() *zerolog.Logger {
	l := utils.Module("sweeper").With().Str("resource", s.Name).Logger()
	return &l
}

func (s *Sweep[T]) describe(rec T) string {
	if s.Describe != nil {
		return s.Describe(rec)
	}
	return fmt.Sprintf("%v", rec)
}
