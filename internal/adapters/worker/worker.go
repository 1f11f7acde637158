// Package worker runs keyed jobs on a bounded set of goroutines and joins
// them once every job has settled.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/idpscout/pkg/logger"
	"github.com/okian/idpscout/pkg/metrics"
)

const defaultConcurrency = 8

// Outcome is the settled result of one job.
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

// Pool holds the fan-out settings shared by Settle calls.
type Pool struct {
	name        string
	concurrency int
	logger      logger.Logger
}

// NewPool creates a pool with configuration options.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		name:        "pool",
		concurrency: defaultConcurrency,
		logger:      logger.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Concurrency returns the worker bound.
func (p *Pool) Concurrency() int { return p.concurrency }

// Settle runs fn once per key with at most p.Concurrency() calls in flight
// and returns one Outcome per key, in key order. A failing job never stops
// the others. Jobs not started before ctx is done settle with ctx's error.
func Settle[T any](ctx context.Context, p *Pool, keys []string, fn func(ctx context.Context, key string) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], len(keys))
	if len(keys) == 0 {
		return out
	}

	workers := min(p.concurrency, len(keys))
	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = run(ctx, keys[i], fn)
			}
		}()
	}

feed:
	for i := range keys {
		select {
		case <-ctx.Done():
			for j := i; j < len(keys); j++ {
				out[j] = Outcome[T]{Key: keys[j], Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, o := range out {
		if o.Err != nil {
			failed++
		}
	}
	p.logger.Debug(ctx, "pool settled",
		logger.Int("jobs", len(keys)),
		logger.Int("failed", failed),
		logger.Int("workers", workers),
		logger.Duration("took", time.Since(start)),
	)
	return out
}

func run[T any](ctx context.Context, key string, fn func(context.Context, string) (T, error)) (o Outcome[T]) {
	metrics.AddWorkersInFlight(1)
	defer metrics.AddWorkersInFlight(-1)

	o.Key = key
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("job %s panicked: %v", key, r)
		}
	}()
	o.Value, o.Err = fn(ctx, key)
	return o
}
