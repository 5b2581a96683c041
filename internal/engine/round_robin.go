package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// roundRobin grants min(quantum, remaining) per dispatch from one FIFO queue.
type roundRobin struct {
	quantum       int
	contextSwitch int
}

func (roundRobin) Algorithm() types.Algorithm { return types.RoundRobin }

func (rr roundRobin) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.RoundRobin, procs)
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

		finished := s.runSlice(i, rr.quantum)
		s.contextSwitch(rr.contextSwitch)
		if !finished {
			// Arrivals during the slice (and the switch) queue ahead of i.
			s.admit(ready.pushBack)
			ready.pushBack(i)
		}
	}
	return s.result()
}
