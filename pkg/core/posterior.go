package core

import (
	"context"
	"math"
)

// Posterior composes a log-likelihood and a prior into the unnormalized
// log-posterior a sampler targets. When the prior assigns zero probability
// the likelihood is skipped entirely: the point is a certain reject and the
// forward model (often the expensive part) need not run.
type Posterior struct {
	Likelihood LogPDF
	Prior      Prior
}

// NewPosterior wires a likelihood and a prior of matching dimension.
func NewPosterior(likelihood LogPDF, prior Prior) *Posterior {
	if likelihood.Dim() != prior.Dim() {
		panic("core: likelihood and prior dimension mismatch")
	}
	return &Posterior{Likelihood: likelihood, Prior: prior}
}

func (p *Posterior) Dim() int { return p.Likelihood.Dim() }

func (p *Posterior) Evaluate(ctx context.Context, x []float64) (float64, error) {
	lp := p.Prior.LogProb(x)
	if math.IsInf(lp, -1) {
		return lp, nil
	}
	ll, err := p.Likelihood.Evaluate(ctx, x)
	if err != nil {
		return 0, err
	}
	return lp + ll, nil
}
