package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

func BenchmarkCompareAll(b *testing.B) {
	procs := generateWorkload(1000, 1)
	cfg := engine.Config{Quantum: 4, ContextSwitch: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := comparison.Compare(context.Background(), procs, types.Algorithms, cfg, comparison.Options{})
		require.NoError(b, err)
	}
}

// TestLargeWorkload runs every algorithm over a large generated workload and
// checks the results stay consistent with each other.
func TestLargeWorkload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large workload in short mode")
	}

	procs := generateWorkload(5000, 99)
	cfg := engine.Config{Quantum: 5}

	start := time.Now()
	r, err := comparison.Compare(context.Background(), procs, types.Algorithms, cfg, comparison.Options{Workers: 3})
	require.NoError(t, err)
	t.Logf("compared %d algorithms over %d processes in %s", len(types.Algorithms), len(procs), time.Since(start))

	require.Len(t, r.Succeeded(), len(types.Algorithms))

	totalBurst := 0
	for _, p := range procs {
		totalBurst += p.BurstTime
	}
	for _, o := range r.Outcomes {
		assert.Len(t, o.Run.Completed, len(procs), o.Algorithm)
		// no context switch cost, so busy time plus idle time covers the makespan
		assert.Equal(t, o.Run.Makespan, totalBurst+o.Run.IdleTime, o.Algorithm)
	}

	require.Len(t, r.Rankings, len(types.RankedMetrics))
}
