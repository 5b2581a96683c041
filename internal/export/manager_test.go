package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

func workload() []types.Process {
	return []types.Process{
		types.NewProcess("A", 0, 8, 2),
		types.NewProcess("B", 1, 4, 1),
		types.NewProcess("C", 2, 2, 3),
	}
}

func compareAll(t *testing.T) *comparison.Report {
	t.Helper()
	r, err := comparison.Compare(context.Background(), workload(), types.Algorithms, engine.Config{Quantum: 2, ContextSwitch: 1}, comparison.Options{})
	require.NoError(t, err)
	return r
}

func fixedClock(m *Manager) time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return at }
	return at
}

func TestNewManager(t *testing.T) {
	m := NewManager("/tmp/out.json")
	assert.Equal(t, "/tmp/out.json", m.Path())
}

func TestWriteAndLoadComparison(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.json")
	m := NewManager(path)
	at := fixedClock(m)

	report := compareAll(t)
	cfg := engine.Config{Quantum: 2, ContextSwitch: 1}
	written := FromReport(workload(), report, cfg)
	require.NoError(t, m.Write(written))
	assert.True(t, m.Exists())

	doc, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, written.ID, doc.ID)
	assert.True(t, at.Equal(doc.GeneratedAt))
	assert.Equal(t, cfg, doc.EngineConfig())
	assert.Equal(t, workload(), doc.Workload)
	require.Len(t, doc.Runs, len(types.Algorithms))
	for i, rec := range doc.Runs {
		assert.Equal(t, types.Algorithms[i], rec.Algorithm)
		require.NotNil(t, rec.Result)
		assert.Equal(t, report.Outcomes[i].Run, *rec.Result)
	}
	assert.Equal(t, report.Rankings, doc.Rankings)

	rebuilt := doc.Report()
	assert.Equal(t, report.Rankings, rebuilt.Rankings)
}

func TestWriteAndLoadSingleRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	m := NewManager(path)

	run, err := engine.Run(types.SJF, workload(), engine.Config{})
	require.NoError(t, err)
	require.NoError(t, m.Write(FromRun(workload(), run, engine.Config{})))

	doc, err := m.Load()
	require.NoError(t, err)
	require.Len(t, doc.Runs, 1)
	assert.Equal(t, run, *doc.Runs[0].Result)
	assert.Empty(t, doc.Rankings)
}

func TestFromReportKeepsFailures(t *testing.T) {
	report := &comparison.Report{Outcomes: []comparison.Outcome{
		{Algorithm: types.FCFS, Run: types.RunResult{Algorithm: types.FCFS}},
		{Algorithm: types.SJF, Err: fmt.Errorf("sjf exploded")},
	}}

	doc := FromReport(workload(), report, engine.Config{})
	require.Len(t, doc.Runs, 2)
	assert.NotNil(t, doc.Runs[0].Result)
	assert.Equal(t, "sjf exploded", doc.Runs[1].Error)
	assert.Nil(t, doc.Runs[1].Result)

	rebuilt := doc.Report()
	assert.True(t, rebuilt.Outcomes[0].OK())
	assert.EqualError(t, rebuilt.Outcomes[1].Err, "sjf exploded")
}

func TestWorkloadIsCleared(t *testing.T) {
	procs := workload()
	procs[0].RemainingTime = 0
	procs[0].CompletionTime = 99

	doc := FromRun(procs, types.RunResult{Algorithm: types.FCFS}, engine.Config{})
	assert.Equal(t, workload()[0], doc.Workload[0])
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	m := NewManager(path)

	oldDoc := FromRun(workload(), types.RunResult{Algorithm: types.FCFS}, engine.Config{})
	require.NoError(t, m.Write(oldDoc))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Write(FromRun(workload(), types.RunResult{Algorithm: types.SJF}, engine.Config{})))
	}()

	var loaded Document
	go func() {
		defer wg.Done()
		doc, err := m.Load()
		assert.NoError(t, err)
		loaded = doc
	}()
	wg.Wait()

	require.Len(t, loaded.Runs, 1)
	alg := loaded.Runs[0].Algorithm
	assert.True(t, alg == types.FCFS || alg == types.SJF, "got %s", alg)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not exist after write")
}

func TestLoadMissing(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, m.Exists())

	_, err := m.Load()
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 99, "runs": []}`), 0o644))

	_, err := NewManager(path).Load()
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestCorrupted(t *testing.T) {
	tests := map[string]string{
		"truncated":    `{"schema_version": 1, "runs": [`,
		"no algorithm": `{"schema_version": 1, "runs": [{"error": "x"}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := NewManager(path).Load()
			assert.ErrorIs(t, err, ErrCorruptedExport)
		})
	}
}

func TestWriteFailure(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "no-such-dir", "out.json"))
	err := m.Write(Document{})
	assert.Error(t, err)
	assert.False(t, m.Exists())
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.txt")
	m := NewManager(path)

	require.NoError(t, m.WriteText(func(w io.Writer) {
		_, _ = io.WriteString(w, "COMPARISON RESULTS\n")
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "COMPARISON RESULTS\n", string(data))
}

func TestConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	m := NewManager(path)

	var wg sync.WaitGroup
	for _, alg := range types.Algorithms {
		wg.Add(1)
		go func(alg types.Algorithm) {
			defer wg.Done()
			assert.NoError(t, m.Write(FromRun(workload(), types.RunResult{Algorithm: alg}, engine.Config{})))
		}(alg)
	}
	wg.Wait()

	doc, err := m.Load()
	require.NoError(t, err)
	assert.Contains(t, types.Algorithms, doc.Runs[0].Algorithm)
}

func BenchmarkWrite(b *testing.B) {
	m := NewManager(filepath.Join(b.TempDir(), "bench.json"))
	doc := FromRun(workload(), types.RunResult{Algorithm: types.FCFS}, engine.Config{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Write(doc)
	}
}
