package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// fcfs dispatches in arrival order; equal arrivals keep input order.
type fcfs struct{}

func (fcfs) Algorithm() types.Algorithm { return types.FCFS }

func (fcfs) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.FCFS, procs)
	if err != nil {
		return types.RunResult{}, err
	}

	ready := newFIFO()
	for s.unfinished() {
		s.admit(ready.pushBack)
		i, ok := ready.popFront()
		if !ok {
			if !s.idleUntilNextArrival() {
				return s.stalled()
			}
			continue
		}
		s.runToCompletion(i)
	}
	return s.result()
}
