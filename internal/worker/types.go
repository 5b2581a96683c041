package worker

import (
	"time"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// Task is one algorithm run to execute
type Task struct {
	Index     int             // position of the algorithm in the caller's selection
	Algorithm types.Algorithm // algorithm to run
	Processes []types.Process // private workload copy, owned by this task
	Config    engine.Config   // quantum and context switch
}

// Result is the outcome of one Task
type Result struct {
	Index     int             // copied from Task.Index
	Algorithm types.Algorithm // copied from Task.Algorithm
	Run       types.RunResult // valid when Error is nil
	Error     error           // engine error or recovered panic
	Duration  time.Duration   // wall-clock time of the run
}
