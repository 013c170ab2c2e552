package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_ProcessesAllJobs(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(2, 10, func(ctx context.Context, job int) {
		processed.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestPool_BoundedParallelism(t *testing.T) {
	var inFlight, peak atomic.Int64
	pool := NewPool(3, 50, func(ctx context.Context, job int) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 30; i++ {
		pool.Submit(i)
	}
	pool.Stop()

	if got := peak.Load(); got > 3 {
		t.Errorf("expected at most 3 concurrent jobs, saw %d", got)
	}
}

func TestPool_DrainThenWait(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(2, 20, func(ctx context.Context, job int) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(i)
	}
	pool.Drain()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Wait() timed out")
	}
	if processed.Load() != 20 {
		t.Errorf("expected 20 jobs processed, got %d", processed.Load())
	}
}

func TestPool_ContextCancellation(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(1, 1, func(ctx context.Context, job int) {
		processed.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	// Workers racing ctx.Done may or may not pick up a late submit; the
	// pool must still tear down cleanly.
	pool.Drain()
	pool.Wait()
}
