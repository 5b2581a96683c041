package worker

// ============================================================================
// Worker Pool Test File
// Purpose: Verify concurrent runs, panic isolation, graceful shutdown
// ============================================================================

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkload() []types.Process {
	return []types.Process{
		types.NewProcess("P1", 0, 5, 2),
		types.NewProcess("P2", 1, 3, 1),
		types.NewProcess("P3", 2, 1, 3),
	}
}

func task(i int, alg types.Algorithm) Task {
	return Task{
		Index:     i,
		Algorithm: alg,
		Processes: types.CloneProcesses(sampleWorkload()),
		Config:    engine.Config{Quantum: 2},
	}
}

func receive(t *testing.T, pool *Pool) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := pool.ReceiveResult(ctx)
	require.NoError(t, err)
	return result
}

// ============================================================================
// Basic Functionality Tests
// ============================================================================

func TestNewPool(t *testing.T) {
	pool := NewPool(10)
	assert.NotNil(t, pool)
	assert.Equal(t, 0, pool.GetWorkerCount())
}

func TestPoolStart(t *testing.T) {
	pool := NewPool(10)

	require.NoError(t, pool.Start(4))
	assert.Equal(t, 4, pool.GetWorkerCount())

	assert.ErrorIs(t, pool.Start(2), ErrPoolStarted)

	pool.Stop()
}

func TestPoolStartClampsWorkerCount(t *testing.T) {
	pool := NewPool(1)
	require.NoError(t, pool.Start(0))
	assert.Equal(t, 1, pool.GetWorkerCount())
	pool.Stop()
}

func TestWorkerExecution(t *testing.T) {
	pool := NewPool(10)
	require.NoError(t, pool.Start(1))
	defer pool.Stop()

	for i, alg := range types.Algorithms {
		require.NoError(t, pool.Submit(context.Background(), task(i, alg)))
	}

	results := make(map[int]Result)
	for range types.Algorithms {
		r := receive(t, pool)
		results[r.Index] = r
	}

	require.Len(t, results, len(types.Algorithms))
	for i, alg := range types.Algorithms {
		r := results[i]
		assert.Equal(t, alg, r.Algorithm)
		assert.NoError(t, r.Error)
		assert.Equal(t, alg, r.Run.Algorithm)
		assert.Len(t, r.Run.Completed, 3)
	}
}

func TestWorkerReportsEngineError(t *testing.T) {
	pool := NewPool(1)
	require.NoError(t, pool.Start(1))
	defer pool.Stop()

	bad := task(0, types.RoundRobin)
	bad.Config.Quantum = 0
	require.NoError(t, pool.Submit(context.Background(), bad))

	r := receive(t, pool)
	assert.ErrorIs(t, r.Error, engine.ErrInvalidQuantum)
}

// ============================================================================
// Failure Isolation Tests
// ============================================================================

func TestWorkerRecoversPanic(t *testing.T) {
	pool := NewPool(4)
	pool.run = func(alg types.Algorithm, procs []types.Process, cfg engine.Config) (types.RunResult, error) {
		if alg == types.SJF {
			panic("broken scheduler")
		}
		return engine.Run(alg, procs, cfg)
	}
	require.NoError(t, pool.Start(2))
	defer pool.Stop()

	require.NoError(t, pool.Submit(context.Background(), task(0, types.SJF)))
	require.NoError(t, pool.Submit(context.Background(), task(1, types.FCFS)))

	results := map[int]Result{}
	for i := 0; i < 2; i++ {
		r := receive(t, pool)
		results[r.Index] = r
	}

	require.Error(t, results[0].Error)
	assert.Contains(t, results[0].Error.Error(), "broken scheduler")
	assert.NoError(t, results[1].Error)
	assert.Len(t, results[1].Run.Completed, 3)
}

func TestTasksDoNotShareState(t *testing.T) {
	pool := NewPool(len(types.Algorithms))
	require.NoError(t, pool.Start(len(types.Algorithms)))
	defer pool.Stop()

	shared := sampleWorkload()
	for i, alg := range types.Algorithms {
		require.NoError(t, pool.Submit(context.Background(), Task{
			Index:     i,
			Algorithm: alg,
			Processes: types.CloneProcesses(shared),
			Config:    engine.Config{Quantum: 1},
		}))
	}
	for range types.Algorithms {
		assert.NoError(t, receive(t, pool).Error)
	}

	assert.Equal(t, sampleWorkload(), shared)
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestConcurrentSubmit(t *testing.T) {
	pool := NewPool(100)
	require.NoError(t, pool.Start(4))
	defer pool.Stop()

	taskCount := 50
	var wg sync.WaitGroup
	wg.Add(taskCount)
	for i := 0; i < taskCount; i++ {
		go func(index int) {
			defer wg.Done()
			alg := types.Algorithms[index%len(types.Algorithms)]
			assert.NoError(t, pool.Submit(context.Background(), task(index, alg)))
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < taskCount; i++ {
		r := receive(t, pool)
		assert.NoError(t, r.Error)
		seen[r.Index] = true
	}
	assert.Len(t, seen, taskCount)
}

func TestChannelBuffer(t *testing.T) {
	bufferSize := 2
	pool := NewPool(bufferSize)
	require.NoError(t, pool.Start(1))
	defer pool.Stop()

	taskCount := bufferSize + 3
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < taskCount; i++ {
			assert.NoError(t, pool.Submit(context.Background(), task(i, types.FCFS)))
		}
	}()

	for i := 0; i < taskCount; i++ {
		receive(t, pool)
	}
	<-done
}

// ============================================================================
// Graceful Shutdown Tests
// ============================================================================

func TestGracefulShutdown(t *testing.T) {
	pool := NewPool(50)
	require.NoError(t, pool.Start(4))

	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(context.Background(), task(i, types.RoundRobin)))
	}
	for i := 0; i < 10; i++ {
		receive(t, pool)
	}

	goroutinesBefore := runtime.NumGoroutine()

	// Nobody reads the remaining results; Stop must still return.
	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, runtime.NumGoroutine(), goroutinesBefore)
}

func TestStopBeforeStart(t *testing.T) {
	pool := NewPool(10)
	assert.NotPanics(t, func() {
		pool.Stop()
	})
}

func TestStopTwice(t *testing.T) {
	pool := NewPool(10)
	require.NoError(t, pool.Start(2))
	pool.Stop()
	assert.NotPanics(t, func() {
		pool.Stop()
	})
}

func TestSubmitBlockedUntilStop(t *testing.T) {
	pool := NewPool(0)
	pool.run = func(types.Algorithm, []types.Process, engine.Config) (types.RunResult, error) {
		time.Sleep(50 * time.Millisecond)
		return types.RunResult{}, nil
	}
	require.NoError(t, pool.Start(1))

	errCh := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func(i int) {
			errCh <- pool.Submit(context.Background(), task(i, types.FCFS))
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	pool.Stop()

	closed := 0
	for i := 0; i < 3; i++ {
		if err := <-errCh; err != nil {
			assert.ErrorIs(t, err, ErrPoolClosed)
			closed++
		}
	}
	assert.GreaterOrEqual(t, closed, 1)
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestSubmitBeforeStart(t *testing.T) {
	pool := NewPool(10)
	err := pool.Submit(context.Background(), task(0, types.FCFS))
	assert.ErrorIs(t, err, ErrPoolNotStarted)
}

func TestSubmitAfterStop(t *testing.T) {
	pool := NewPool(10)
	require.NoError(t, pool.Start(2))
	pool.Stop()

	err := pool.Submit(context.Background(), task(0, types.FCFS))
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmitHonoursContext(t *testing.T) {
	pool := NewPool(0)
	block := make(chan struct{})
	pool.run = func(types.Algorithm, []types.Process, engine.Config) (types.RunResult, error) {
		<-block
		return types.RunResult{}, nil
	}
	require.NoError(t, pool.Start(1))
	defer pool.Stop()
	defer close(block)

	// First task occupies the only worker.
	require.NoError(t, pool.Submit(context.Background(), task(0, types.FCFS)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, task(1, types.FCFS))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReceiveResultAfterStop(t *testing.T) {
	pool := NewPool(10)
	require.NoError(t, pool.Start(2))
	pool.Stop()

	_, err := pool.ReceiveResult(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestReceiveResultHonoursContext(t *testing.T) {
	pool := NewPool(1)
	require.NoError(t, pool.Start(1))
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.ReceiveResult(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// Benchmark Tests
// ============================================================================

func BenchmarkPoolThroughput(b *testing.B) {
	pool := NewPool(1000)
	_ = pool.Start(runtime.NumCPU())
	defer pool.Stop()

	go func() {
		for {
			if _, err := pool.ReceiveResult(context.Background()); err != nil {
				return
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		alg := types.Algorithms[i%len(types.Algorithms)]
		_ = pool.Submit(context.Background(), Task{
			Index:     i,
			Algorithm: alg,
			Processes: types.CloneProcesses(sampleWorkload()),
			Config:    engine.Config{Quantum: 2},
		})
	}
}

func ExamplePool() {
	pool := NewPool(1)
	_ = pool.Start(1)
	defer pool.Stop()

	_ = pool.Submit(context.Background(), Task{Algorithm: types.FCFS, Processes: sampleWorkload()})
	r, _ := pool.ReceiveResult(context.Background())
	fmt.Printf("%.2f\n", r.Run.Metrics.AvgWaitingTime)
	// Output: 3.33
}
