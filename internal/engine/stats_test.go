package engine

import (
	"testing"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
	"github.com/stretchr/testify/assert"
)

func finished(id string, arrival, burst, completion, response int) types.Process {
	p := types.NewProcess(types.ProcessID(id), arrival, burst, 0)
	p.RemainingTime = 0
	p.CompletionTime = completion
	p.TurnaroundTime = completion - arrival
	p.WaitingTime = p.TurnaroundTime - burst
	p.ResponseTime = response
	return p
}

func TestCalculateMetricsEmpty(t *testing.T) {
	assert.Equal(t, types.Metrics{}, CalculateMetrics(nil, nil))
	assert.Equal(t, types.Metrics{}, CalculateMetrics(nil, []types.Segment{seg("A", 0, 4)}))
}

func TestCalculateMetricsFromTimeline(t *testing.T) {
	completed := []types.Process{
		finished("A", 0, 4, 4, 0),
		finished("B", 6, 2, 8, 0),
	}
	schedule := []types.Segment{seg("A", 0, 4), seg("B", 6, 8)}

	m := CalculateMetrics(completed, schedule)

	assert.InDelta(t, 0.0, m.AvgWaitingTime, 1e-9)
	assert.InDelta(t, 3.0, m.AvgTurnaroundTime, 1e-9)
	assert.InDelta(t, 75.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 0.25, m.Throughput, 1e-9)
}

func TestCalculateMetricsFallsBackToBursts(t *testing.T) {
	completed := []types.Process{
		finished("A", 0, 3, 3, 0),
		finished("B", 0, 3, 10, 7),
	}

	m := CalculateMetrics(completed, nil)

	assert.InDelta(t, 60.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 3.5, m.AvgResponseTime, 1e-9)
}

func TestCalculateMetricsClampsUtilization(t *testing.T) {
	// Inconsistent records can not push utilization past 100.
	completed := []types.Process{finished("A", 0, 10, 5, 0)}

	m := CalculateMetrics(completed, nil)

	assert.Equal(t, 100.0, m.CPUUtilization)
}

func TestCalculateMetricsZeroElapsed(t *testing.T) {
	completed := []types.Process{finished("Z", 0, 0, 0, 0)}

	m := CalculateMetrics(completed, []types.Segment{seg("Z", 0, 0)})

	assert.Zero(t, m.CPUUtilization)
	assert.Zero(t, m.Throughput)
}
