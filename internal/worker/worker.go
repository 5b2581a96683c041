// ============================================================================
// Worker - Simulation Execution Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Runs scheduling simulations, each Worker in its own goroutine
//
// How it works:
//   Each Worker loops until taskCh is closed:
//   1. Receive a task from taskCh
//   2. Run the engine on the task's private workload copy
//   3. Send the result to resultCh (or give up once the pool stops)
//
// Failure isolation:
//   A panic inside the engine is a logic defect. It is recovered and reported
//   as the task's error, so one broken run never takes down the other runs
//   sharing the pool.
//
// ============================================================================

package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

var log = slog.Default()

// runFunc executes one simulation; replaced in tests.
type runFunc func(alg types.Algorithm, procs []types.Process, cfg engine.Config) (types.RunResult, error)

// Worker represents a simulation execution unit
type Worker struct {
	id       int             // Worker identifier, used for logging
	taskCh   <-chan Task     // Task channel (read-only)
	resultCh chan<- Result   // Result channel (write-only)
	stopCh   <-chan struct{} // Closed when the pool stops
	run      runFunc         // Simulation entry point
}

// newWorker creates a new Worker instance
func newWorker(id int, taskCh <-chan Task, resultCh chan<- Result, stopCh <-chan struct{}, run runFunc) *Worker {
	return &Worker{
		id:       id,
		taskCh:   taskCh,
		resultCh: resultCh,
		stopCh:   stopCh,
		run:      run,
	}
}

// Run is the main loop of Worker
func (w *Worker) Run() {
	for task := range w.taskCh {
		start := time.Now()
		run, err := w.execute(task)

		result := Result{
			Index:     task.Index,
			Algorithm: task.Algorithm,
			Run:       run,
			Error:     err,
			Duration:  time.Since(start),
		}

		select {
		case w.resultCh <- result:
		case <-w.stopCh:
			return
		}
	}
}

// execute runs the simulation and converts a panic into an error
func (w *Worker) execute(task Task) (result types.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("simulation panicked", "worker", w.id, "algorithm", task.Algorithm, "panic", r)
			result, err = types.RunResult{}, fmt.Errorf("%s run aborted: %v", task.Algorithm, r)
		}
	}()
	return w.run(task.Algorithm, task.Processes, task.Config)
}
