// ============================================================================
// Worker Pool - Concurrent Simulation Runner
// ============================================================================
//
// Package: internal/worker
// File: worker_pool.go
// Function: Manages the lifecycle of Worker goroutines and distributes runs
//
// Architecture:
//   ┌─────────────┐
//   │ Comparison  │ --Submit()--> taskCh
//   └─────────────┘
//         ↑
//   ReceiveResult()
//         ↑
//   ┌─────────────┐
//   │   Pool      │
//   │  ┌────────┐ │
//   │  │Worker 1│←── taskCh
//   │  │Worker 2│←── taskCh   ──→ resultCh
//   │  │Worker 3│←── taskCh
//   │  └────────┘ │
//   └─────────────┘
//
// Lifecycle:
//   1. NewPool()        - create the pool and its channels
//   2. Start(n)         - launch n Worker goroutines
//   3. Submit(task)     - enqueue a run
//   4. ReceiveResult()  - read one finished run
//   5. Stop()           - close taskCh and wait for every Worker
//
// Concurrency control:
//   - stopCh is closed before taskCh, so a Submit blocked on a full taskCh
//     returns ErrPoolClosed instead of sending on a closed channel
//   - sendMu is held for reading while sending and for writing while closing
//     taskCh
//
// ============================================================================

package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
)

var (
	// ErrPoolClosed indicates the pool was stopped
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolNotStarted indicates Submit was called before Start
	ErrPoolNotStarted = errors.New("worker pool not started")
	// ErrPoolStarted indicates Start was called twice
	ErrPoolStarted = errors.New("worker pool already started")
)

// Pool runs simulations on a fixed set of Worker goroutines
type Pool struct {
	workers  []*Worker      // Started workers
	taskCh   chan Task      // Distributes tasks to workers
	resultCh chan Result    // Collects results from workers
	stopCh   chan struct{}  // Closed by Stop
	run      runFunc        // Simulation entry point handed to every worker
	wg       sync.WaitGroup // Tracks running workers
	sendMu   sync.RWMutex   // Orders Submit sends against close(taskCh)
	started  bool
	stopped  bool
	mu       sync.Mutex // Protects started and stopped
}

// NewPool creates a pool whose task and result channels hold bufferSize entries
func NewPool(bufferSize int) *Pool {
	return &Pool{
		workers:  make([]*Worker, 0),
		taskCh:   make(chan Task, bufferSize),
		resultCh: make(chan Result, bufferSize),
		stopCh:   make(chan struct{}),
		run:      engine.Run,
	}
}

// Start launches workerCount workers
func (p *Pool) Start(workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPoolStarted
	}
	if workerCount < 1 {
		workerCount = 1
	}

	for i := 0; i < workerCount; i++ {
		w := newWorker(i, p.taskCh, p.resultCh, p.stopCh, p.run)
		p.workers = append(p.workers, w)

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(w)
	}

	p.started = true
	log.Debug("worker pool started", "workers", workerCount)
	return nil
}

// Submit enqueues a task. It blocks while taskCh is full.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrPoolNotStarted
	}
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	select {
	case <-p.stopCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.taskCh <- task:
		return nil
	case <-p.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiveResult returns the next finished run. Results still buffered when
// the pool stops remain readable; after that ErrPoolClosed is returned.
func (p *Pool) ReceiveResult(ctx context.Context) (Result, error) {
	select {
	case result, ok := <-p.resultCh:
		if !ok {
			return Result{}, ErrPoolClosed
		}
		return result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Stop closes the pool and waits for running workers to return
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)

	p.sendMu.Lock()
	close(p.taskCh)
	p.sendMu.Unlock()

	p.wg.Wait()
	close(p.resultCh)
	log.Debug("worker pool stopped", "workers", len(p.workers))
}

// GetWorkerCount returns the number of started workers
func (p *Pool) GetWorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

