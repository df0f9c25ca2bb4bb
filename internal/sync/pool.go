package sync

// pool.go implements the bounded worker pool used for parallel delivery.
//
// A fixed set of workers claims task indices from a shared channel; each
// worker runs one task to completion before claiming the next, so at most
// `concurrency` tasks are in flight. Completion order is unordered but the
// result slice is aligned to input order by index.

import (
	"context"
	"sync"
)

// Task is one unit of asynchronous work executed by the pool.
type Task[T any] func(ctx context.Context) (T, error)

// TaskResult pairs a task's outcome with its original input index.
type TaskResult[T any] struct {
	Index int
	Value T
	Err   error
}

// RunAll executes tasks with at most `concurrency` in flight and returns
// results aligned to input order. A task's failure is captured in its
// result and never aborts sibling tasks or the pool. Concurrency is capped
// at the number of tasks so no idle workers are provisioned.
func RunAll[T any](ctx context.Context, tasks []Task[T], concurrency int) []TaskResult[T] {
	n := len(tasks)
	if n == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}

	results := make([]TaskResult[T], n)
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				v, err := tasks[i](ctx)
				results[i] = TaskResult[T]{Index: i, Value: v, Err: err}
			}
		}()
	}

	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}
