package engine

import (
	"container/heap"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// shortestFirst orders arrived processes by burst, then arrival, then input order.
type shortestFirst struct {
	idx   []int
	procs []types.Process
}

func (h shortestFirst) Len() int { return len(h.idx) }

func (h shortestFirst) Less(a, b int) bool {
	pa, pb := h.procs[h.idx[a]], h.procs[h.idx[b]]
	if pa.BurstTime != pb.BurstTime {
		return pa.BurstTime < pb.BurstTime
	}
	if pa.ArrivalTime != pb.ArrivalTime {
		return pa.ArrivalTime < pb.ArrivalTime
	}
	return h.idx[a] < h.idx[b]
}

func (h shortestFirst) Swap(a, b int) { h.idx[a], h.idx[b] = h.idx[b], h.idx[a] }

func (h *shortestFirst) Push(x any) { h.idx = append(h.idx, x.(int)) }

func (h *shortestFirst) Pop() any {
	n := len(h.idx)
	i := h.idx[n-1]
	h.idx = h.idx[:n-1]
	return i
}

// sjf is non-preemptive: a dispatched job runs to completion even if a
// shorter one arrives meanwhile.
type sjf struct{}

func (sjf) Algorithm() types.Algorithm { return types.SJF }

func (sjf) Schedule(procs []types.Process) (types.RunResult, error) {
	s, err := newSimulation(types.SJF, procs)
	if err != nil {
		return types.RunResult{}, err
	}

	ready := &shortestFirst{procs: s.procs}
	for s.unfinished() {
		s.admit(func(i int) { heap.Push(ready, i) })
		if ready.Len() == 0 {
			if !s.idleUntilNextArrival() {
				return s.stalled()
			}
			continue
		}
		s.runToCompletion(heap.Pop(ready).(int))
	}
	return s.result()
}
