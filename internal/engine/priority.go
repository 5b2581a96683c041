package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// priorityNonPreemptive serves the lowest priority value first, FIFO inside a
// level. Burst time never breaks ties.
type priorityNonPreemptive struct{}

func (priorityNonPreemptive) Algorithm() types.Algorithm { return types.Priority }

func (priorityNonPreemptive) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.Priority, procs)
	if err != nil {
		return types.RunResult{}, err
	}

	ready := newReadySet()
	for s.unfinished() {
		s.admit(s.byPriority(ready))
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

// byPriority enqueues an admitted process at the tail of its priority level.
func (s *simulation) byPriority(ready *readySet) func(i int) {
	return func(i int) {
		ready.pushBack(s.procs[i].Priority, i)
	}
}
