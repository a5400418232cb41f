package core

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Prior is the capability the controller needs from a prior distribution:
// density evaluation and drawing fresh parameter vectors to seed chains.
type Prior interface {
	Dim() int
	LogProb(x []float64) float64
	Sample(rng *rand.Rand) []float64
}

// UniformBoxPrior is a uniform distribution over an axis-aligned box.
type UniformBoxPrior struct {
	Lower, Upper []float64
	logVolume    float64
}

// NewUniformBoxPrior constructs a uniform prior over [lower, upper].
// Panics if the bounds disagree in length or are inverted; priors are
// built from literals at setup time, so this is a programmer error.
func NewUniformBoxPrior(lower, upper []float64) *UniformBoxPrior {
	if len(lower) != len(upper) {
		panic("core: prior bounds length mismatch")
	}
	logVol := 0.0
	for i := range lower {
		if upper[i] <= lower[i] {
			panic("core: prior upper bound not above lower bound")
		}
		logVol += math.Log(upper[i] - lower[i])
	}
	return &UniformBoxPrior{Lower: lower, Upper: upper, logVolume: logVol}
}

func (p *UniformBoxPrior) Dim() int { return len(p.Lower) }

// Contains reports whether x lies inside the box.
func (p *UniformBoxPrior) Contains(x []float64) bool {
	if len(x) != len(p.Lower) {
		return false
	}
	for i, v := range x {
		if v < p.Lower[i] || v > p.Upper[i] {
			return false
		}
	}
	return true
}

func (p *UniformBoxPrior) LogProb(x []float64) float64 {
	if !p.Contains(x) {
		return math.Inf(-1)
	}
	return -p.logVolume
}

func (p *UniformBoxPrior) Sample(rng *rand.Rand) []float64 {
	x := make([]float64, len(p.Lower))
	for i := range x {
		x[i] = p.Lower[i] + rng.Float64()*(p.Upper[i]-p.Lower[i])
	}
	return x
}

// GaussianPrior is a multivariate normal prior backed by gonum's distmv.
type GaussianPrior struct {
	normal *distmv.Normal
	mean   []float64
	chol   mat.Cholesky
}

// NewGaussianPrior constructs a Gaussian prior with the given mean and
// covariance. Returns false if the covariance is not positive definite.
func NewGaussianPrior(mean []float64, cov *mat.SymDense) (*GaussianPrior, bool) {
	normal, ok := distmv.NewNormal(mean, cov, nil)
	if !ok {
		return nil, false
	}
	p := &GaussianPrior{normal: normal, mean: append([]float64(nil), mean...)}
	if ok := p.chol.Factorize(cov); !ok {
		return nil, false
	}
	return p, true
}

func (p *GaussianPrior) Dim() int { return len(p.mean) }

func (p *GaussianPrior) LogProb(x []float64) float64 {
	return p.normal.LogProb(x)
}

func (p *GaussianPrior) Sample(rng *rand.Rand) []float64 {
	return distmv.NormalRand(nil, p.mean, &p.chol, rng)
}
