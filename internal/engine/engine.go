// ============================================================================
// Scheduling Engine
// ============================================================================
//
// Package: internal/engine
// Purpose: Discrete-event simulation of six CPU scheduling disciplines.
//
// Algorithms:
//   fcfs                 arrival order, run to completion
//   sjf                  smallest burst among arrived, run to completion
//   priority             lowest priority value, FIFO inside a level, run to completion
//   priority-preemptive  as priority, strictly higher priority arrival preempts
//   rr                   single FIFO, quantum-bounded slices
//   priority-rr          FIFO per priority, quantum-bounded slices, no mid-slice preemption
//
// Ownership:
//   Every Schedule call copies its input. The caller's records are never
//   written, so one workload can be handed to several algorithms.
//
// Errors:
//   Invalid records fail fast with ErrInvalidProcess / ErrDuplicateProcess.
//   An empty workload is not an error: it yields an empty schedule and zero metrics.
//
// ============================================================================

package engine

import (
	"fmt"
	"log/slog"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

var log = slog.Default()

// Config is the explicit per-run configuration.
type Config struct {
	Quantum       int // slice length for rr and priority-rr
	ContextSwitch int // overhead added between slices for rr and priority-rr
}

// Validate checks the fields alg depends on.
func (c Config) Validate(alg types.Algorithm) error {
	if !alg.NeedsQuantum() {
		return nil
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantum, c.Quantum)
	}
	if c.ContextSwitch < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidContextSwitch, c.ContextSwitch)
	}
	return nil
}

// Scheduler runs one algorithm over a workload.
type Scheduler interface {
	Algorithm() types.Algorithm
	Schedule(procs []types.Process) (types.RunResult, error)
}

// New returns the scheduler for alg.
func New(alg types.Algorithm, cfg Config) (Scheduler, error) {
	if err := cfg.Validate(alg); err != nil {
		return nil, err
	}
	switch alg {
	case types.FCFS:
		return fcfs{}, nil
	case types.SJF:
		return sjf{}, nil
	case types.Priority:
		return priorityNonPreemptive{}, nil
	case types.PriorityPreemptive:
		return priorityPreemptive{}, nil
	case types.RoundRobin:
		return roundRobin{quantum: cfg.Quantum, contextSwitch: cfg.ContextSwitch}, nil
	case types.PriorityRoundRobin:
		return priorityRoundRobin{quantum: cfg.Quantum, contextSwitch: cfg.ContextSwitch}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}

// Run is a shorthand for New followed by Schedule.
func Run(alg types.Algorithm, procs []types.Process, cfg Config) (types.RunResult, error) {
	s, err := New(alg, cfg)
	if err != nil {
		return types.RunResult{}, err
	}
	return s.Schedule(procs)
}
