package samplers

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/haldane-labs/mcmc-go/pkg/core"
)

// Chain is the mutable per-chain state every sampler operates on: the current
// position and log-density, the adaptation statistics (running mean, running
// covariance, proposal scale) and the iteration/acceptance counters. Exactly
// one sampler owns one chain; chains are never shared.
type Chain struct {
	dim        int
	position   []float64
	logDensity float64

	mean  []float64
	cov   *mat.SymDense
	scale float64

	iteration int
	accepted  int
	invalid   int

	rng *rand.Rand
}

// newSeedRNG builds a deterministic random source from a seed.
func newSeedRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// newChain creates a chain at the given start position with its own
// deterministically seeded random source. The covariance estimate starts as
// the identity and the log-density as -Inf until the controller installs the
// evaluated starting density.
func newChain(position []float64, seed uint64) *Chain {
	d := len(position)
	cov := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		cov.SetSym(i, i, 1)
	}
	return &Chain{
		dim:        d,
		position:   append([]float64(nil), position...),
		logDensity: math.Inf(-1),
		mean:       append([]float64(nil), position...),
		cov:        cov,
		scale:      1,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (c *Chain) Dim() int { return c.dim }

// Position returns a copy of the current position.
func (c *Chain) Position() []float64 {
	return append([]float64(nil), c.position...)
}

func (c *Chain) LogDensity() float64 { return c.logDensity }

func (c *Chain) Iteration() int { return c.iteration }

// AcceptanceRate is the fraction of completed iterations that accepted.
func (c *Chain) AcceptanceRate() float64 {
	if c.iteration == 0 {
		return 0
	}
	return float64(c.accepted) / float64(c.iteration)
}

// InvalidEvaluations counts proposals whose evaluation failed.
func (c *Chain) InvalidEvaluations() int { return c.invalid }

// Scale returns the current proposal scale.
func (c *Chain) Scale() float64 { return c.scale }

// Covariance returns a copy of the current covariance estimate.
func (c *Chain) Covariance() *mat.SymDense {
	out := mat.NewSymDense(c.dim, nil)
	out.CopySym(c.cov)
	return out
}

// setStart installs the evaluated log-density of the starting position.
func (c *Chain) setStart(logDensity float64) {
	c.logDensity = logDensity
}

// standardNormals fills dst with independent standard-normal draws.
func (c *Chain) standardNormals(dst []float64) {
	for i := range dst {
		dst[i] = c.rng.NormFloat64()
	}
}

// metropolisAccept runs the Metropolis test for a proposed point against the
// current position, in log space. Exactly one uniform variate is consumed per
// call so a chain's random stream stays aligned across accept, reject and
// invalid outcomes. On accept the chain moves to the proposal. The iteration
// counter always advances: every call corresponds to one recorded sample.
func (c *Chain) metropolisAccept(proposal []float64, e core.Evaluation) bool {
	logU := math.Log(c.rng.Float64())

	accepted := false
	if e.OK {
		logRatio := e.LogDensity - c.logDensity
		if logRatio >= 0 || logU < logRatio {
			accepted = true
		}
	} else {
		c.invalid++
	}

	if accepted {
		copy(c.position, proposal)
		c.logDensity = e.LogDensity
		c.accepted++
	}
	c.iteration++
	return accepted
}
