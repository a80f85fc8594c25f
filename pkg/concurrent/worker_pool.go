package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(ctx context.Context, job T) G

// WorkerPool runs jobFunc on numWorkers goroutines. Results arrive in completion order.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(ctx context.Context, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(ctx, job)
	}
}

func (wp *WorkerPool[T, G]) Start(ctx context.Context, jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, jobFunc)
	}
}

// Wait blocks until every worker returned, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Close stops accepting jobs. Workers drain what is queued.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

type indexed[T any] struct {
	pos int
	val T
}

// Map applies fn to every job on a pool of numWorkers and returns the results in job order,
// whatever order the workers finish in.
func Map[T any, G any](ctx context.Context, numWorkers int, jobs []T, fn JobFunc[T, G]) []G {
	out := make([]G, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	wp := NewWorkerPool[indexed[T], indexed[G]](numWorkers, len(jobs))
	wp.Start(ctx, func(ctx context.Context, job indexed[T]) indexed[G] {
		return indexed[G]{pos: job.pos, val: fn(ctx, job.val)}
	})

	for i, j := range jobs {
		wp.AddJob(indexed[T]{pos: i, val: j})
	}
	wp.Close()
	wp.Wait()

	for res := range wp.CollectResults() {
		out[res.pos] = res.val
	}
	return out
}
