// Package testutil provides shared targets and mocks for sampler tests.
package testutil

import (
	"context"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/haldane-labs/mcmc-go/pkg/core"
	"github.com/haldane-labs/mcmc-go/pkg/errors"
)

// GaussianTarget is a multivariate normal log-density.
type GaussianTarget struct {
	normal *distmv.Normal
	dim    int
}

// NewGaussianTarget builds a Gaussian target with the given mean and
// covariance. Panics on a non-positive-definite covariance; tests construct
// these from literals.
func NewGaussianTarget(mean []float64, cov *mat.SymDense) *GaussianTarget {
	normal, ok := distmv.NewNormal(mean, cov, nil)
	if !ok {
		panic("testutil: covariance not positive definite")
	}
	return &GaussianTarget{normal: normal, dim: len(mean)}
}

// NewStandardGaussianTarget builds a unit-covariance Gaussian centered at
// the origin.
func NewStandardGaussianTarget(dim int) *GaussianTarget {
	mean := make([]float64, dim)
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, 1)
	}
	return NewGaussianTarget(mean, cov)
}

func (g *GaussianTarget) Dim() int { return g.dim }

func (g *GaussianTarget) Evaluate(_ context.Context, x []float64) (float64, error) {
	return g.normal.LogProb(x), nil
}

// FailingTarget always reports evaluation failure, simulating a forward
// model that diverges everywhere.
type FailingTarget struct {
	D int
}

func (f FailingTarget) Dim() int { return f.D }

func (f FailingTarget) Evaluate(_ context.Context, _ []float64) (float64, error) {
	return 0, errors.New(errors.EvaluationFailed, "simulation diverged")
}

// FlakyTarget wraps another target and fails on calls where the wrapped
// predicate returns true. Used to exercise invalid-evaluation recovery.
type FlakyTarget struct {
	Target core.LogPDF
	Fail   func(x []float64) bool
}

func (f FlakyTarget) Dim() int { return f.Target.Dim() }

func (f FlakyTarget) Evaluate(ctx context.Context, x []float64) (float64, error) {
	if f.Fail(x) {
		return 0, errors.New(errors.EvaluationFailed, "simulation diverged")
	}
	return f.Target.Evaluate(ctx, x)
}

// NaNTarget returns NaN everywhere, exercising non-finite normalization.
type NaNTarget struct {
	D int
}

func (n NaNTarget) Dim() int { return n.D }

func (n NaNTarget) Evaluate(_ context.Context, _ []float64) (float64, error) {
	return math.NaN(), nil
}

// PanickingTarget panics on evaluation, exercising dispatcher recovery.
type PanickingTarget struct {
	D int
}

func (p PanickingTarget) Dim() int { return p.D }

func (p PanickingTarget) Evaluate(_ context.Context, _ []float64) (float64, error) {
	panic("target exploded")
}

// CountingTarget wraps a target and counts evaluations and the peak number
// of concurrent evaluations, for dispatcher tests.
type CountingTarget struct {
	Target core.LogPDF

	calls      atomic.Int64
	inFlight   atomic.Int64
	peakInFlgt atomic.Int64
}

func (c *CountingTarget) Dim() int { return c.Target.Dim() }

func (c *CountingTarget) Evaluate(ctx context.Context, x []float64) (float64, error) {
	c.calls.Add(1)
	n := c.inFlight.Add(1)
	for {
		peak := c.peakInFlgt.Load()
		if n <= peak || c.peakInFlgt.CompareAndSwap(peak, n) {
			break
		}
	}
	defer c.inFlight.Add(-1)
	return c.Target.Evaluate(ctx, x)
}

func (c *CountingTarget) Calls() int64 { return c.calls.Load() }

func (c *CountingTarget) PeakConcurrency() int64 { return c.peakInFlgt.Load() }
