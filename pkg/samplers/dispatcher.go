package samplers

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/haldane-labs/mcmc-go/pkg/core"
)

// Evaluator executes the target log-density over a batch of proposed points,
// one per chain, and returns the results in submission order. Failures come
// back as invalid evaluations, never as errors: a bad point is the sampler's
// problem (an automatic reject), not the dispatcher's.
type Evaluator interface {
	EvaluateBatch(ctx context.Context, target core.LogPDF, points [][]float64) []core.Evaluation
}

// evaluateOne runs a single evaluation, converting errors, panics and
// non-finite garbage from user code into the invalid marker.
func evaluateOne(ctx context.Context, target core.LogPDF, x []float64) (ev core.Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			ev = core.InvalidEvaluation()
		}
	}()

	v, err := target.Evaluate(ctx, x)
	if err != nil {
		return core.InvalidEvaluation()
	}
	return core.ValidEvaluation(v)
}

// SequentialEvaluator evaluates the batch one point at a time on the calling
// goroutine.
type SequentialEvaluator struct{}

func (SequentialEvaluator) EvaluateBatch(ctx context.Context, target core.LogPDF, points [][]float64) []core.Evaluation {
	results := make([]core.Evaluation, len(points))
	for i, x := range points {
		results[i] = evaluateOne(ctx, target, x)
	}
	return results
}

// ParallelEvaluator fans the batch out over a bounded pool of goroutines.
// Each result is written into the slot of its submitted point, so completion
// order never affects how results rejoin their chains. The target must be
// safe for concurrent Evaluate calls.
type ParallelEvaluator struct {
	// Workers bounds concurrent evaluations. Zero or negative selects
	// GOMAXPROCS.
	Workers int
}

func (pe ParallelEvaluator) EvaluateBatch(ctx context.Context, target core.LogPDF, points [][]float64) []core.Evaluation {
	workers := pe.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]core.Evaluation, len(points))

	p := pool.New().WithMaxGoroutines(workers)
	for i, x := range points {
		i, x := i, x
		p.Go(func() {
			results[i] = evaluateOne(ctx, target, x)
		})
	}
	p.Wait()

	return results
}
