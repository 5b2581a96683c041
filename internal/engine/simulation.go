package engine

// ============================================================================
// Shared simulation clock and bookkeeping
// ============================================================================
//
// Every algorithm drives the same model: one CPU, a monotonic integer clock,
// a pool of not-yet-arrived processes ordered by arrival time (ties keep input
// order) and one or more ready containers owned by the algorithm itself.
//
// Per step exactly one productive action happens:
//   - the CPU executes the selected process for some duration, or
//   - the clock fast-forwards to the next arrival because nothing is ready.
//
// The clock only jumps to known event times (next arrival, end of slice,
// completion), so a run costs O(segments), not O(makespan).
//
// ============================================================================

import (
	"fmt"
	"sort"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

type simulation struct {
	algorithm types.Algorithm
	procs     []types.Process // private copy, input order
	arrival   []int           // indices into procs by arrival time
	next      int             // first entry of arrival not yet admitted
	started   []bool          // first dispatch seen

	clock       int
	idle        int
	switchTime  int
	preemptions int
	done        int

	schedule  []types.Segment
	completed []types.Process
}

func validateProcess(p types.Process) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidProcess)
	case p.ArrivalTime < 0:
		return fmt.Errorf("%w: %s has negative arrival time %d", ErrInvalidProcess, p.ID, p.ArrivalTime)
	case p.BurstTime < 0:
		return fmt.Errorf("%w: %s has negative burst time %d", ErrInvalidProcess, p.ID, p.BurstTime)
	case p.RemainingTime < 0:
		return fmt.Errorf("%w: %s has negative remaining time %d", ErrInvalidProcess, p.ID, p.RemainingTime)
	}
	return nil
}

// newSimulation takes a private copy of the workload; the caller's slice is never written.
func newSimulation(alg types.Algorithm, in []types.Process) (*simulation, error) {
	procs := make([]types.Process, len(in))
	seen := make(map[types.ProcessID]struct{}, len(in))
	for i, p := range in {
		if err := validateProcess(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProcess, p.ID)
		}
		seen[p.ID] = struct{}{}
		procs[i] = p.Reset()
	}

	arrival := make([]int, len(procs))
	for i := range arrival {
		arrival[i] = i
	}
	sort.SliceStable(arrival, func(a, b int) bool {
		return procs[arrival[a]].ArrivalTime < procs[arrival[b]].ArrivalTime
	})

	return &simulation{
		algorithm: alg,
		procs:     procs,
		arrival:   arrival,
		started:   make([]bool, len(procs)),
		schedule:  make([]types.Segment, 0, len(procs)),
		completed: make([]types.Process, 0, len(procs)),
	}, nil
}

func (s *simulation) unfinished() bool {
	return s.done < len(s.procs)
}

func (s *simulation) pending() bool {
	return s.next < len(s.arrival)
}

// nextArrival is only meaningful while pending() is true.
func (s *simulation) nextArrival() int {
	return s.procs[s.arrival[s.next]].ArrivalTime
}

// admit hands every process that has arrived by the current clock to enqueue,
// in arrival order.
func (s *simulation) admit(enqueue func(i int)) {
	for s.pending() && s.nextArrival() <= s.clock {
		i := s.arrival[s.next]
		s.next++
		enqueue(i)
	}
}

// idleUntilNextArrival fast-forwards an idle CPU. It returns false when
// nothing is left to arrive.
func (s *simulation) idleUntilNextArrival() bool {
	if !s.pending() {
		return false
	}
	if at := s.nextArrival(); at > s.clock {
		s.idle += at - s.clock
		s.clock = at
	}
	return true
}

func (s *simulation) stalled() (types.RunResult, error) {
	return types.RunResult{}, fmt.Errorf("%w: %s at t=%d with %d unfinished",
		ErrStalled, s.algorithm, s.clock, len(s.procs)-s.done)
}

// dispatch records the response time on the first dispatch only.
func (s *simulation) dispatch(i int) {
	if s.started[i] {
		return
	}
	s.started[i] = true
	s.procs[i].ResponseTime = s.clock - s.procs[i].ArrivalTime
	log.Debug("process dispatched", "algorithm", s.algorithm, "pid", s.procs[i].ID, "at", s.clock)
}

func (s *simulation) execute(i, d int) {
	s.procs[i].RemainingTime -= d
	s.clock += d
}

// emit closes the segment of i that began at start.
func (s *simulation) emit(i, start int) {
	s.schedule = append(s.schedule, types.Segment{PID: s.procs[i].ID, Start: start, Finish: s.clock})
	if s.procs[i].RemainingTime > 0 {
		s.preemptions++
		log.Debug("process preempted", "algorithm", s.algorithm, "pid", s.procs[i].ID, "at", s.clock,
			"remaining", s.procs[i].RemainingTime)
	}
}

// complete finalizes i. Completion fields are written exactly once, here.
func (s *simulation) complete(i int) {
	p := &s.procs[i]
	p.CompletionTime = s.clock
	p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.BurstTime
	s.completed = append(s.completed, *p)
	s.done++
	log.Debug("process completed", "algorithm", s.algorithm, "pid", p.ID, "at", s.clock)
}

// runToCompletion is the non-preemptive dispatch shared by FCFS, SJF and Priority.
func (s *simulation) runToCompletion(i int) {
	s.dispatch(i)
	start := s.clock
	s.execute(i, s.procs[i].RemainingTime)
	s.emit(i, start)
	s.complete(i)
}

// runSlice executes i for at most quantum and reports whether it finished.
func (s *simulation) runSlice(i, quantum int) bool {
	s.dispatch(i)
	start := s.clock
	s.execute(i, min(quantum, s.procs[i].RemainingTime))
	s.emit(i, start)
	if s.procs[i].RemainingTime == 0 {
		s.complete(i)
		return true
	}
	return false
}

// contextSwitch charges the switch overhead, but only while work remains.
func (s *simulation) contextSwitch(cost int) {
	if cost <= 0 || !s.unfinished() {
		return
	}
	s.clock += cost
	s.switchTime += cost
}

func (s *simulation) result() (types.RunResult, error) {
	if err := s.verify(); err != nil {
		return types.RunResult{}, err
	}

	makespan := 0
	for _, p := range s.completed {
		makespan = max(makespan, p.CompletionTime)
	}

	return types.RunResult{
		Algorithm:         s.algorithm,
		Completed:         s.completed,
		Schedule:          s.schedule,
		Metrics:           CalculateMetrics(s.completed, s.schedule),
		IdleTime:          s.idle,
		Makespan:          makespan,
		Preemptions:       s.preemptions,
		ContextSwitchTime: s.switchTime,
	}, nil
}

// verify checks the timeline against the completed records.
func (s *simulation) verify() error {
	owned := make(map[types.ProcessID]int, len(s.procs))
	last := 0
	for _, seg := range s.schedule {
		if seg.Finish < seg.Start || seg.Start < last {
			return fmt.Errorf("%w: %s segment %s [%d,%d] overlaps or runs backwards",
				ErrInvariantViolated, s.algorithm, seg.PID, seg.Start, seg.Finish)
		}
		last = seg.Finish
		owned[seg.PID] += seg.Duration()
	}

	for _, p := range s.completed {
		switch {
		case p.RemainingTime != 0:
			return fmt.Errorf("%w: %s completed with remaining time %d", ErrInvariantViolated, p.ID, p.RemainingTime)
		case owned[p.ID] != p.BurstTime:
			return fmt.Errorf("%w: %s owns %d units, burst is %d", ErrInvariantViolated, p.ID, owned[p.ID], p.BurstTime)
		case p.WaitingTime < 0 || p.ResponseTime < 0 || p.ResponseTime > p.WaitingTime:
			return fmt.Errorf("%w: %s waiting=%d response=%d", ErrInvariantViolated, p.ID, p.WaitingTime, p.ResponseTime)
		}
	}
	return nil
}
