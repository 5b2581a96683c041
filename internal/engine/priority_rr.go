package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// priorityRoundRobin keeps one FIFO per priority level and bounds every slice
// by the quantum. A higher priority arrival never interrupts a running slice:
// priorities are re-evaluated only at slice boundaries. This differs from
// priorityPreemptive on purpose.
type priorityRoundRobin struct {
	quantum       int
	contextSwitch int
}

func (priorityRoundRobin) Algorithm() types.Algorithm { return types.PriorityRoundRobin }

func (prr priorityRoundRobin) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.PriorityRoundRobin, procs)
	if err != nil {
		return types.RunResult{}, err
	}

	ready := newReadySet()
	enqueue := s.byPriority(ready)
	for s.unfinished() {
		s.admit(enqueue)
		i, ok := ready.popFront()
		if !ok {
			if !s.idleUntilNextArrival() {
				return s.stalled()
			}
			continue
		}

		finished := s.runSlice(i, prr.quantum)
		s.contextSwitch(prr.contextSwitch)
		if !finished {
			s.admit(enqueue)
			ready.pushBack(s.procs[i].Priority, i)
		}
	}
	return s.result()
}
