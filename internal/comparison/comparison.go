// ============================================================================
// Comparison Harness
// ============================================================================
//
// Package: internal/comparison
// Purpose: Run several scheduling algorithms against one workload and rank
//          them per metric.
//
// Flow:
//   1. Validate the selection and the shared engine.Config
//   2. Submit one worker.Task per algorithm, each with its own workload copy
//   3. Collect results back into selection order
//   4. Rank the successful runs (Rank)
//
// A failed run (engine error or recovered panic) is kept as an Outcome with
// Err set. It is excluded from the rankings and never affects other runs.
//
// ============================================================================

package comparison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/worker"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

var log = slog.Default()

var (
	// ErrNoAlgorithms indicates an empty selection
	ErrNoAlgorithms = errors.New("comparison: no algorithms selected")
	// ErrDuplicateAlgorithm indicates the same algorithm was selected twice
	ErrDuplicateAlgorithm = errors.New("comparison: algorithm selected twice")
)

// Observer receives every finished run. *metrics.Collector satisfies it.
type Observer interface {
	ObserveRun(run types.RunResult, elapsed time.Duration)
	ObserveFailure(alg types.Algorithm, elapsed time.Duration)
}

// Options tunes how the harness executes runs
type Options struct {
	Workers  int      // pool size, defaults to runtime.NumCPU()
	Observer Observer // optional
}

// Outcome is one algorithm's run inside a comparison
type Outcome struct {
	Algorithm types.Algorithm `json:"algorithm"`
	Run       types.RunResult `json:"run"`
	Err       error           `json:"-"`
	Elapsed   time.Duration   `json:"-"`
}

// OK reports whether the run succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report is the result of one comparison
type Report struct {
	Outcomes []Outcome `json:"outcomes"` // selection order
	Rankings []Ranking `json:"rankings"` // types.RankedMetrics order
	Workers  int       `json:"workers"`  // pool size the runs executed on, 0 when rebuilt from an export
}

// Succeeded returns the outcomes without an error, in selection order
func (r *Report) Succeeded() []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome for alg
func (r *Report) Outcome(alg types.Algorithm) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Algorithm == alg {
			return o, true
		}
	}
	return Outcome{}, false
}

// Ranking returns the ranking for metric
func (r *Report) Ranking(metric types.MetricName) (Ranking, bool) {
	for _, rk := range r.Rankings {
		if rk.Metric == metric {
			return rk, true
		}
	}
	return Ranking{}, false
}

func validateSelection(algs []types.Algorithm, cfg engine.Config) error {
	if len(algs) == 0 {
		return ErrNoAlgorithms
	}
	seen := make(map[types.Algorithm]struct{}, len(algs))
	for _, alg := range algs {
		if _, err := types.ParseAlgorithm(string(alg)); err != nil {
			return fmt.Errorf("%w: %q", engine.ErrUnknownAlgorithm, alg)
		}
		if _, dup := seen[alg]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAlgorithm, alg)
		}
		seen[alg] = struct{}{}
		if err := cfg.Validate(alg); err != nil {
			return err
		}
	}
	return nil
}

// Compare runs every algorithm in algs against its own copy of procs.
// The caller's slice is never written.
func Compare(ctx context.Context, procs []types.Process, algs []types.Algorithm, cfg engine.Config, opts Options) (*Report, error) {
	if err := validateSelection(algs, cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(algs))

	pool := worker.NewPool(len(algs))
	if err := pool.Start(workers); err != nil {
		return nil, err
	}
	defer pool.Stop()

	for i, alg := range algs {
		task := worker.Task{
			Index:     i,
			Algorithm: alg,
			Processes: types.CloneProcesses(procs),
			Config:    cfg,
		}
		if err := pool.Submit(ctx, task); err != nil {
			return nil, fmt.Errorf("submit %s: %w", alg, err)
		}
	}

	outcomes := make([]Outcome, len(algs))
	for range algs {
		res, err := pool.ReceiveResult(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect results: %w", err)
		}
		outcomes[res.Index] = Outcome{
			Algorithm: res.Algorithm,
			Run:       res.Run,
			Err:       res.Error,
			Elapsed:   res.Duration,
		}
		observe(opts.Observer, outcomes[res.Index])
	}

	return &Report{
		Outcomes: outcomes,
		Rankings: Rank(outcomes),
		Workers:  pool.GetWorkerCount(),
	}, nil
}

func observe(obs Observer, o Outcome) {
	if !o.OK() {
		log.Warn("simulation failed", "algorithm", o.Algorithm, "error", o.Err)
		if obs != nil {
			obs.ObserveFailure(o.Algorithm, o.Elapsed)
		}
		return
	}

	log.Info("simulation finished",
		"algorithm", o.Algorithm,
		"processes", len(o.Run.Completed),
		"segments", len(o.Run.Schedule),
		"avg_waiting", o.Run.Metrics.AvgWaitingTime,
		"elapsed", o.Elapsed)
	if obs != nil {
		obs.ObserveRun(o.Run, o.Elapsed)
	}
}
