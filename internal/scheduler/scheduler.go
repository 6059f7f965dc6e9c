package scheduler

import (
	"context"
	"sync"

	"github.com/vk/matrixci/internal/ctxlog"
	"github.com/vk/matrixci/internal/matrix"
	"github.com/vk/matrixci/internal/metrics"
	"github.com/vk/matrixci/internal/pipeline"
)

// DefaultWorkers is the pool size used when neither the document nor the
// command line specifies one.
const DefaultWorkers = 4

// Scheduler runs a fixed pool of workers over the set of combinations.
type Scheduler struct {
	runner  *pipeline.Runner
	workers int
}

// New builds a Scheduler. A non-positive worker count falls back to
// DefaultWorkers.
func New(runner *pipeline.Runner, workers int) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{runner: runner, workers: workers}
}

// RunAll executes the pipeline for every combination and returns one
// result per combination, in the same order the expander enumerated them.
// Results are written into disjoint slots of a pre-sized slice, so the
// workers share no mutable state beyond the job channel.
//
// When ctx is cancelled, combinations not yet started are finalized as
// Cancelled without running anything; in-flight runners observe the same
// cancellation themselves.
func (s *Scheduler) RunAll(ctx context.Context, combos []matrix.Combination) []*pipeline.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Dispatching combinations.", "combinations", len(combos), "workers", s.workers)

	results := make([]*pipeline.Result, len(combos))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("worker", workerID)
			for idx := range jobs {
				c := combos[idx]
				if ctx.Err() != nil {
					workerLogger.Warn("Run cancelled, combination not started.", "combination", c.Key())
					results[idx] = pipeline.CancelledResult(c)
					metrics.ObserveResult(results[idx])
					continue
				}

				workerLogger.Debug("Worker picked up combination.", "combination", c.Key())
				metrics.CombinationsInFlight.Inc()
				results[idx] = s.runner.Run(ctx, c)
				metrics.CombinationsInFlight.Dec()
				metrics.ObserveResult(results[idx])
			}
		}(w)
	}

	for i := range combos {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Info("🏁 All combinations finished.")
	return results
}
