package engine

import "github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"

// CalculateMetrics derives the aggregate statistics of one run.
//
// Averages are taken over completed processes and are 0 for an empty set.
// CPU utilization comes from the timeline (busy time / last finish); without
// a timeline it falls back to total burst / last completion. The result is
// clamped to [0, 100] and is 0 whenever the elapsed time is 0.
func CalculateMetrics(completed []types.Process, schedule []types.Segment) types.Metrics {
	var m types.Metrics
	n := len(completed)
	if n == 0 {
		return m
	}

	var waiting, turnaround, response, burst, lastCompletion int
	for _, p := range completed {
		waiting += p.WaitingTime
		turnaround += p.TurnaroundTime
		response += p.ResponseTime
		burst += p.BurstTime
		lastCompletion = max(lastCompletion, p.CompletionTime)
	}
	m.AvgWaitingTime = float64(waiting) / float64(n)
	m.AvgTurnaroundTime = float64(turnaround) / float64(n)
	m.AvgResponseTime = float64(response) / float64(n)

	busy, elapsed := burst, lastCompletion
	if len(schedule) > 0 {
		busy, elapsed = 0, 0
		for _, seg := range schedule {
			busy += seg.Duration()
			elapsed = max(elapsed, seg.Finish)
		}
	}
	m.CPUUtilization = utilization(busy, elapsed)

	if elapsed > 0 {
		m.Throughput = float64(n) / float64(elapsed)
	}
	return m
}

func utilization(busy, elapsed int) float64 {
	if elapsed <= 0 {
		return 0
	}
	u := 100 * float64(busy) / float64(elapsed)
	return min(max(u, 0), 100)
}
