// ============================================================================
// Simulation Metrics - Prometheus collector
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Function: Exposes per-algorithm statistics of finished simulation runs
//
// Metrics:
//
//   1. Counters (cumulative):
//      - schedsim_runs_total{algorithm,outcome}   finished runs, outcome ok|error
//      - schedsim_segments_total{algorithm}       emitted timeline segments
//      - schedsim_preemptions_total{algorithm}    segments ending before completion
//
//   2. Histograms:
//      - schedsim_makespan_units{algorithm}       simulated makespan in clock units
//      - schedsim_run_duration_seconds{algorithm} wall-clock time of one run
//
//   3. Gauges (last observed run):
//      - schedsim_cpu_utilization_percent{algorithm}
//      - schedsim_avg_waiting_time_units{algorithm}
//
// Example queries:
//
//   # runs per minute by algorithm
//   sum by (algorithm) (rate(schedsim_runs_total[1m]))
//
//   # 95th percentile run duration
//   histogram_quantile(0.95, sum by (le) (rate(schedsim_run_duration_seconds_bucket[5m])))
//
// HTTP:
//   StartServer serves /metrics for a gatherer; the fiber API mounts the same
//   handler under its own /metrics route.
//
// ============================================================================

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

const namespace = "schedsim"

// Run outcomes used as the outcome label value.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector records simulation runs
type Collector struct {
	runs        *prometheus.CounterVec
	segments    *prometheus.CounterVec
	preemptions *prometheus.CounterVec

	makespan    *prometheus.HistogramVec
	runDuration *prometheus.HistogramVec

	utilization *prometheus.GaugeVec
	avgWaiting  *prometheus.GaugeVec
}

// NewCollector creates the collector and registers it with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of finished simulation runs",
		}, []string{"algorithm", "outcome"}),
		segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Total number of CPU segments emitted",
		}, []string{"algorithm"}),
		preemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preemptions_total",
			Help:      "Total number of segments that ended before their process completed",
		}, []string{"algorithm"}),
		makespan: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "makespan_units",
			Help:      "Simulated makespan in clock units",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one simulation run",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"algorithm"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_utilization_percent",
			Help:      "CPU utilization of the last run",
		}, []string{"algorithm"}),
		avgWaiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "avg_waiting_time_units",
			Help:      "Average waiting time of the last run",
		}, []string{"algorithm"}),
	}

	reg.MustRegister(c.runs, c.segments, c.preemptions, c.makespan, c.runDuration, c.utilization, c.avgWaiting)
	return c
}

// ObserveRun records a successful run
func (c *Collector) ObserveRun(run types.RunResult, elapsed time.Duration) {
	alg := string(run.Algorithm)
	c.runs.WithLabelValues(alg, OutcomeOK).Inc()
	c.segments.WithLabelValues(alg).Add(float64(len(run.Schedule)))
	c.preemptions.WithLabelValues(alg).Add(float64(run.Preemptions))
	c.makespan.WithLabelValues(alg).Observe(float64(run.Makespan))
	c.runDuration.WithLabelValues(alg).Observe(elapsed.Seconds())
	c.utilization.WithLabelValues(alg).Set(run.Metrics.CPUUtilization)
	c.avgWaiting.WithLabelValues(alg).Set(run.Metrics.AvgWaitingTime)
}

// ObserveFailure records a run that returned an error
func (c *Collector) ObserveFailure(alg types.Algorithm, elapsed time.Duration) {
	c.runs.WithLabelValues(string(alg), OutcomeError).Inc()
	c.runDuration.WithLabelValues(string(alg)).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus exposition handler for g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on port until ctx is cancelled
func StartServer(ctx context.Context, port int, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
