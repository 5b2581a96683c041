package engine

import "errors"

var (
	// ErrInvalidProcess is returned for a structurally invalid process record
	// (empty ID, negative arrival, burst or remaining time).
	ErrInvalidProcess = errors.New("engine: invalid process record")
	// ErrDuplicateProcess is returned when two records share one ID.
	ErrDuplicateProcess = errors.New("engine: duplicate process id")
	// ErrInvalidQuantum is returned when a quantum based algorithm gets quantum <= 0.
	ErrInvalidQuantum = errors.New("engine: quantum must be positive")
	// ErrInvalidContextSwitch is returned for a negative context switch cost.
	ErrInvalidContextSwitch = errors.New("engine: context switch must not be negative")
	// ErrUnknownAlgorithm is returned by New for an unsupported algorithm.
	ErrUnknownAlgorithm = errors.New("engine: unknown algorithm")
	// ErrInvariantViolated signals a logic defect detected after a run.
	ErrInvariantViolated = errors.New("engine: schedule invariant violated")
	// ErrStalled signals unfinished processes with nothing ready and nothing left to arrive.
	ErrStalled = errors.New("engine: simulation stalled")
)
