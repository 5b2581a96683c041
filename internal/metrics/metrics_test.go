package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

func sampleRun(alg types.Algorithm) types.RunResult {
	return types.RunResult{
		Algorithm: alg,
		Schedule: []types.Segment{
			{PID: "A", Start: 0, Finish: 4},
			{PID: "B", Start: 4, Finish: 8},
			{PID: "A", Start: 8, Finish: 9},
		},
		Metrics:     types.Metrics{AvgWaitingTime: 3.5, CPUUtilization: 100},
		Makespan:    9,
		Preemptions: 1,
	}
}

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	assert.NotNil(t, c.runs)
	assert.NotNil(t, c.segments)
	assert.NotNil(t, c.preemptions)
	assert.NotNil(t, c.makespan)
	assert.NotNil(t, c.runDuration)
	assert.NotNil(t, c.utilization)
	assert.NotNil(t, c.avgWaiting)
}

func TestNewCollectorDefaultRegisterer(t *testing.T) {
	// Reset Prometheus registry to avoid duplicate registration
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		NewCollector(nil)
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() {
		NewCollector(reg)
	})
}

func TestObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRun(sampleRun(types.RoundRobin), 2*time.Millisecond)
	c.ObserveRun(sampleRun(types.RoundRobin), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runs.WithLabelValues("rr", OutcomeOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.runs.WithLabelValues("rr", OutcomeError)))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.segments.WithLabelValues("rr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.preemptions.WithLabelValues("rr")))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.utilization.WithLabelValues("rr")))
	assert.Equal(t, 3.5, testutil.ToFloat64(c.avgWaiting.WithLabelValues("rr")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.makespan))
}

func TestObserveFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveFailure(types.SJF, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("sjf", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.runDuration))
	assert.Equal(t, 0, testutil.CollectAndCount(c.segments))
}

func TestLabelsSeparateAlgorithms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRun(sampleRun(types.FCFS), 0)
	c.ObserveRun(sampleRun(types.SJF), 0)
	c.ObserveFailure(types.SJF, 0)

	expected := `
# HELP schedsim_runs_total Total number of finished simulation runs
# TYPE schedsim_runs_total counter
schedsim_runs_total{algorithm="fcfs",outcome="ok"} 1
schedsim_runs_total{algorithm="sjf",outcome="error"} 1
schedsim_runs_total{algorithm="sjf",outcome="ok"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c.runs, strings.NewReader(expected)))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveRun(sampleRun(types.FCFS), time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `schedsim_runs_total{algorithm="fcfs",outcome="ok"} 1`)
}

func TestStartServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	reg := prometheus.NewRegistry()
	NewCollector(reg).ObserveRun(sampleRun(types.Priority), 0)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- StartServer(ctx, port, reg) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "schedsim_makespan_units")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
