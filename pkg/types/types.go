// Package types defines the core domain model shared by the scheduling engine,
// the comparison harness and every I/O adapter.
package types

import "fmt"

// ProcessID uniquely identifies a process within one workload.
// The same ID names the same logical process across all algorithms.
type ProcessID string

// Algorithm names one of the supported scheduling disciplines.
type Algorithm string

// Supported scheduling algorithms.
const (
	FCFS               Algorithm = "fcfs"                // First-Come-First-Served
	SJF                Algorithm = "sjf"                 // Shortest-Job-First, non-preemptive
	Priority           Algorithm = "priority"            // Priority, non-preemptive
	PriorityPreemptive Algorithm = "priority-preemptive" // Priority, preempts on strictly higher priority arrival
	RoundRobin         Algorithm = "rr"                  // Round-Robin with a fixed quantum
	PriorityRoundRobin Algorithm = "priority-rr"         // Multilevel priority queues, quantum-bounded slices
)

// Algorithms lists every algorithm in menu order.
var Algorithms = []Algorithm{FCFS, Priority, PriorityPreemptive, SJF, RoundRobin, PriorityRoundRobin}

var algorithmNames = map[Algorithm]string{
	FCFS:               "FCFS",
	SJF:                "SJF",
	Priority:           "Priority (non-preemptive)",
	PriorityPreemptive: "Priority (preemptive)",
	RoundRobin:         "Round-Robin",
	PriorityRoundRobin: "Priority + Round-Robin",
}

// ParseAlgorithm validates a user supplied algorithm key.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(s)
	if _, ok := algorithmNames[a]; !ok {
		return "", fmt.Errorf("unknown algorithm %q", s)
	}
	return a, nil
}

// DisplayName returns the human readable algorithm name.
func (a Algorithm) DisplayName() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return string(a)
}

// NeedsQuantum reports whether the algorithm bounds slices by a time quantum.
func (a Algorithm) NeedsQuantum() bool {
	return a == RoundRobin || a == PriorityRoundRobin
}

// NeedsPriority reports whether the algorithm reads Process.Priority.
func (a Algorithm) NeedsPriority() bool {
	return a == Priority || a == PriorityPreemptive || a == PriorityRoundRobin
}

// Process is one schedulable job: immutable input plus run state.
// Lower Priority values mean higher scheduling priority.
type Process struct {
	// Input
	ID          ProcessID `json:"pid"`
	ArrivalTime int       `json:"arrival_time"`
	BurstTime   int       `json:"burst_time"`
	Priority    int       `json:"priority"`

	// Run state, written by the engine
	RemainingTime  int `json:"remaining_time"`
	CompletionTime int `json:"completion_time"`
	TurnaroundTime int `json:"turnaround_time"`
	WaitingTime    int `json:"waiting_time"`
	ResponseTime   int `json:"response_time"`
}

// NewProcess creates a process ready to be scheduled.
func NewProcess(id ProcessID, arrival, burst, priority int) Process {
	return Process{
		ID:            id,
		ArrivalTime:   arrival,
		BurstTime:     burst,
		Priority:      priority,
		RemainingTime: burst,
	}
}

// Reset returns a copy of p with all run state cleared.
func (p Process) Reset() Process {
	return NewProcess(p.ID, p.ArrivalTime, p.BurstTime, p.Priority)
}

// CloneProcesses returns an independent copy of a workload with run state reset.
// Process holds no reference types, so a value copy never aliases the input.
func CloneProcesses(in []Process) []Process {
	if in == nil {
		return nil
	}
	out := make([]Process, len(in))
	for i, p := range in {
		out[i] = p.Reset()
	}
	return out
}

// Segment is one contiguous slice of CPU time owned by a process.
type Segment struct {
	PID    ProcessID `json:"pid"`
	Start  int       `json:"start"`
	Finish int       `json:"finish"`
}

// Duration returns Finish - Start.
func (s Segment) Duration() int {
	return s.Finish - s.Start
}

// MetricName identifies one rankable aggregate metric.
type MetricName string

// Rankable metrics.
const (
	MetricAvgWaiting     MetricName = "avg_waiting_time"
	MetricAvgTurnaround  MetricName = "avg_turnaround_time"
	MetricAvgResponse    MetricName = "avg_response_time"
	MetricCPUUtilization MetricName = "cpu_utilization"
)

// RankedMetrics lists the metrics compared by the harness, in report order.
var RankedMetrics = []MetricName{MetricAvgWaiting, MetricAvgTurnaround, MetricAvgResponse, MetricCPUUtilization}

var metricLabels = map[MetricName]string{
	MetricAvgWaiting:     "Avg. Waiting Time",
	MetricAvgTurnaround:  "Avg. Turnaround Time",
	MetricAvgResponse:    "Avg. Response Time",
	MetricCPUUtilization: "CPU Utilization %",
}

// Label returns the display label of the metric.
func (m MetricName) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// HigherIsBetter reports the ranking direction of the metric.
func (m MetricName) HigherIsBetter() bool {
	return m == MetricCPUUtilization
}

// Metrics are the aggregate statistics of one algorithm run.
type Metrics struct {
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	CPUUtilization    float64 `json:"cpu_utilization"`
	Throughput        float64 `json:"throughput"`
}

// Value returns the metric selected by name.
func (m Metrics) Value(name MetricName) float64 {
	switch name {
	case MetricAvgWaiting:
		return m.AvgWaitingTime
	case MetricAvgTurnaround:
		return m.AvgTurnaroundTime
	case MetricAvgResponse:
		return m.AvgResponseTime
	case MetricCPUUtilization:
		return m.CPUUtilization
	}
	return 0
}

// RunResult is the output of one algorithm run against one workload.
type RunResult struct {
	Algorithm         Algorithm `json:"algorithm"`
	Completed         []Process `json:"completed"` // in completion order
	Schedule          []Segment `json:"schedule"`
	Metrics           Metrics   `json:"metrics"`
	IdleTime          int       `json:"idle_time"`
	Makespan          int       `json:"makespan"`
	Preemptions       int       `json:"preemptions"`
	ContextSwitchTime int       `json:"context_switch_time"`
}

// SegmentsFor returns the schedule entries owned by pid, in time order.
func (r RunResult) SegmentsFor(pid ProcessID) []Segment {
	var out []Segment
	for _, s := range r.Schedule {
		if s.PID == pid {
			out = append(out, s)
		}
	}
	return out
}
