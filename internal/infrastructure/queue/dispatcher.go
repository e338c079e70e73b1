package queue

import (
	"context"
	"hash/fnv"
	"sync"
)

const defaultWorkers = 8

// Dispatcher fans a batch of jobs out to a fixed set of workers using
// consistent hashing on a job key. Jobs that share a key run on the same
// worker, in submission order.
type Dispatcher struct {
	workers int
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{workers: numWorkers}
}

// Run calls fn(ctx, i) for every i in [0, n) and waits for all calls to
// return. key(i) picks the worker. Once ctx is cancelled the remaining jobs
// are dropped and ctx.Err() is returned.
func (d *Dispatcher) Run(ctx context.Context, n int, key func(i int) string, fn func(ctx context.Context, i int)) error {
	if n == 0 {
		return ctx.Err()
	}

	workers := min(d.workers, n)
	queues := make([]chan int, workers)
	var wg sync.WaitGroup
	for w := range queues {
		queues[w] = make(chan int, n)
		wg.Add(1)
		go func(ch <-chan int) {
			defer wg.Done()
			for i := range ch {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, i)
			}
		}(queues[w])
	}

	for i := 0; i < n; i++ {
		queues[shardIndex(key(i), workers)] <- i
	}
	for _, ch := range queues {
		close(ch)
	}
	wg.Wait()
	return ctx.Err()
}

// shardIndex maps a key deterministically to a worker index.
func shardIndex(key string, workers int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(workers))
}
