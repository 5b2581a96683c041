package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// priorityPreemptive groups like priorityNonPreemptive, but an arrival with a
// strictly lower priority value takes the CPU at once. The preempted process
// goes back to the front of its own level, keeping seniority over later
// arrivals of equal priority.
type priorityPreemptive struct{}

func (priorityPreemptive) Algorithm() types.Algorithm { return types.PriorityPreemptive }

func (priorityPreemptive) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.PriorityPreemptive, procs)
	if err != nil {
		return types.RunResult{}, err
	}

	ready := newReadySet()
	running := -1
	sliceStart := 0

	for s.unfinished() {
		s.admit(func(i int) {
			ready.pushBack(s.procs[i].Priority, i)
			if running >= 0 && s.procs[i].Priority < s.procs[running].Priority {
				s.emit(running, sliceStart)
				ready.pushFront(s.procs[running].Priority, running)
				running = -1
			}
		})

		if running < 0 {
			i, ok := ready.popFront()
			if !ok {
				if !s.idleUntilNextArrival() {
					return s.stalled()
				}
				continue
			}
			running, sliceStart = i, s.clock
			s.dispatch(i)
		}

		// Run until the next arrival or completion, whichever is first.
		// On a tie the process completes before the arrival is admitted.
		finish := s.clock + s.procs[running].RemainingTime
		if s.pending() && s.nextArrival() < finish {
			s.execute(running, s.nextArrival()-s.clock)
			continue
		}
		s.execute(running, s.procs[running].RemainingTime)
		s.emit(running, sliceStart)
		s.complete(running)
		running = -1
	}
	return s.result()
}
