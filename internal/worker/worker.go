// Package worker provides a bounded pool of goroutines draining a typed job
// channel. Each dispatch batch owns its own pool instance.
package worker

import (
	"context"
	"sync"
)

type ProcessFunc[T any] func(ctx context.Context, job T)

type Pool[T any] struct {
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup
}

func NewPool[T any](numWorkers, bufferSize int, processor ProcessFunc[T]) *Pool[T] {
	return &Pool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

func (p *Pool[T]) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processor(ctx, job)
		}
	}
}

func (p *Pool[T]) Submit(job T) {
	p.jobs <- job
}

// Drain closes the job channel; workers exit once the remaining jobs are
// processed. Safe to call exactly once, after the final Submit.
func (p *Pool[T]) Drain() {
	close(p.jobs)
}

// Wait blocks until every worker has exited.
func (p *Pool[T]) Wait() {
	p.wg.Wait()
}

// Stop drains and waits.
func (p *Pool[T]) Stop() {
	p.Drain()
	p.Wait()
}
