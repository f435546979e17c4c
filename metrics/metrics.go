package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Sweeper metrics
var (
	SweepTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orion_sweep_ticks_total",
		Help: "Total number of expiry sweep ticks by resource and outcome",
	}, []string{"resource", "outcome"})

	SweepRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orion_sweep_records_total",
		Help: "Total number of due records resolved by the sweeper",
	}, []string{"resource", "outcome"})

	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orion_sweep_duration_seconds",
		Help:    "Duration of one sweep tick",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
	}, []string{"resource"})
)

// Delivery metrics
var (
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orion_deliveries_total",
		Help: "Total number of deferred deliveries by kind, path and outcome",
	}, []string{"kind", "path", "outcome"})

	PendingTimers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orion_pending_timers",
		Help: "Number of armed in-process delivery timers",
	}, []string{"kind"})
)

// Moderation metrics
var (
	LockActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orion_lock_actions_total",
		Help: "Total number of channel lock actions",
	}, []string{"action", "outcome"})

	OverwriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orion_overwrite_failures_total",
		Help: "Total number of per-role permission edits the platform rejected",
	})
)

// Command metrics
var (
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orion_commands_total",
		Help: "Total number of slash commands handled",
	}, []string{"command", "outcome"})
)

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr disables it.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Outcome maps an error to a metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
