package samplers

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haldane-labs/mcmc-go/pkg/core"
	"github.com/haldane-labs/mcmc-go/pkg/logging"
)

// Defaults for the adaptation schedule. The 0.234 target is the classic
// optimal acceptance rate for random-walk Metropolis in high dimension; the
// decay exponent keeps adaptation diminishing so the chain stays valid.
const (
	DefaultTargetAcceptance = 0.234
	DefaultDecayExponent    = 0.6
)

type phase int

const (
	phaseInitial phase = iota
	phaseAdapting
	phaseFrozen
)

// AdaptiveConfig tunes the adaptive-covariance sampler.
type AdaptiveConfig struct {
	// AdaptationEnd is the iteration at which adaptation freezes.
	// Zero means adapt for the whole run.
	AdaptationEnd int
	// TargetAcceptance is the acceptance rate the scale is steered toward.
	TargetAcceptance float64
	// DecayExponent is κ in the γ_t = (t+1)^-κ adaptation weight, in (0, 1].
	DecayExponent float64
}

func (cfg *AdaptiveConfig) setDefaults() {
	if cfg.TargetAcceptance <= 0 || cfg.TargetAcceptance >= 1 {
		cfg.TargetAcceptance = DefaultTargetAcceptance
	}
	if cfg.DecayExponent <= 0 || cfg.DecayExponent > 1 {
		cfg.DecayExponent = DefaultDecayExponent
	}
}

// AdaptiveCovariance is the flagship sampler: random-walk Metropolis whose
// proposal covariance tracks the chain's sample covariance and whose scale is
// steered toward a target acceptance rate with a Robbins-Monro update.
type AdaptiveCovariance struct {
	chain *Chain
	cfg   AdaptiveConfig

	phase    phase
	logScale float64

	chol  mat.Cholesky
	lower *mat.TriDense

	proposal      []float64
	proposalReady bool

	z               []float64 // scratch for standard-normal draws
	regularizations int
	logger          *logging.Logger
}

// NewAdaptiveCovariance builds the sampler around a chain. The initial
// proposal scale is 2.38/√d, the usual starting point for adaptive
// Metropolis.
func NewAdaptiveCovariance(chain *Chain, cfg AdaptiveConfig) *AdaptiveCovariance {
	cfg.setDefaults()

	d := chain.Dim()
	s := &AdaptiveCovariance{
		chain:    chain,
		cfg:      cfg,
		phase:    phaseInitial,
		logScale: math.Log(2.38 / math.Sqrt(float64(d))),
		lower:    mat.NewTriDense(d, mat.Lower, nil),
		proposal: make([]float64, d),
		z:        make([]float64, d),
		logger:   logging.GetLogger(),
	}
	s.chain.scale = math.Exp(s.logScale)

	// The chain starts with an identity covariance, which always factors.
	s.chol.Factorize(chain.cov)
	s.chol.LTo(s.lower)
	return s
}

func (s *AdaptiveCovariance) Name() string { return "adaptive_covariance" }

// Ask proposes x' = x + scale·L·z. The proposal is cached so repeated calls
// before Tell return the same point without touching the random stream again.
func (s *AdaptiveCovariance) Ask() []float64 {
	if !s.proposalReady {
		if s.phase == phaseInitial {
			s.phase = phaseAdapting
		}
		s.chain.standardNormals(s.z)
		scale := math.Exp(s.logScale)
		for i := 0; i < s.chain.dim; i++ {
			step := 0.0
			for j := 0; j <= i; j++ {
				step += s.lower.At(i, j) * s.z[j]
			}
			s.proposal[i] = s.chain.position[i] + scale*step
		}
		s.proposalReady = true
	}
	return append([]float64(nil), s.proposal...)
}

// Tell completes the iteration: Metropolis accept/reject on the evaluated
// candidate, then, while adapting, the diminishing-weight updates to the
// running mean, covariance and scale.
func (s *AdaptiveCovariance) Tell(e core.Evaluation) bool {
	s.proposalReady = false
	accepted := s.chain.metropolisAccept(s.proposal, e)

	if s.phase == phaseAdapting && s.cfg.AdaptationEnd > 0 && s.chain.iteration > s.cfg.AdaptationEnd {
		s.phase = phaseFrozen
	}
	if s.phase != phaseAdapting {
		return accepted
	}

	c := s.chain
	gamma := math.Pow(float64(c.iteration)+1, -s.cfg.DecayExponent)

	// mean ← mean + γ(x − mean); cov ← cov + γ((x−mean)(x−mean)ᵀ − cov)
	for i := 0; i < c.dim; i++ {
		c.mean[i] += gamma * (c.position[i] - c.mean[i])
	}
	for i := 0; i < c.dim; i++ {
		di := c.position[i] - c.mean[i]
		for j := i; j < c.dim; j++ {
			dj := c.position[j] - c.mean[j]
			c.cov.SetSym(i, j, (1-gamma)*c.cov.At(i, j)+gamma*di*dj)
		}
	}

	// Robbins-Monro steering of the scale toward the target acceptance rate:
	// up on accept, down on reject, with the same vanishing step.
	outcome := 0.0
	if accepted {
		outcome = 1.0
	}
	s.logScale += gamma * (outcome - s.cfg.TargetAcceptance)
	c.scale = math.Exp(s.logScale)

	s.refactorize()
	return accepted
}

// refactorize updates the cached Cholesky factor after a covariance update,
// regularizing with escalating multiples of the identity if numerical drift
// has cost the estimate its positive definiteness.
func (s *AdaptiveCovariance) refactorize() {
	c := s.chain
	if s.chol.Factorize(c.cov) {
		s.chol.LTo(s.lower)
		return
	}

	maxDiag := 0.0
	for i := 0; i < c.dim; i++ {
		if v := math.Abs(c.cov.At(i, i)); v > maxDiag {
			maxDiag = v
		}
	}
	if maxDiag == 0 {
		maxDiag = 1
	}

	eps := 1e-10 * maxDiag
	for {
		for i := 0; i < c.dim; i++ {
			c.cov.SetSym(i, i, c.cov.At(i, i)+eps)
		}
		s.regularizations++
		if s.chol.Factorize(c.cov) {
			break
		}
		eps *= 10
	}
	s.chol.LTo(s.lower)
	s.logger.Warn(context.Background(),
		"covariance estimate lost positive definiteness at iteration %d, regularized (event %d)",
		c.iteration, s.regularizations)
}

// Regularizations counts how often the covariance needed regularizing.
func (s *AdaptiveCovariance) Regularizations() int { return s.regularizations }

// Adapting reports whether adaptation is still active.
func (s *AdaptiveCovariance) Adapting() bool { return s.phase == phaseAdapting }

func (s *AdaptiveCovariance) Position() []float64    { return s.chain.Position() }
func (s *AdaptiveCovariance) LogDensity() float64    { return s.chain.LogDensity() }
func (s *AdaptiveCovariance) AcceptanceRate() float64 { return s.chain.AcceptanceRate() }

func (s *AdaptiveCovariance) Scale() float64            { return s.chain.Scale() }
func (s *AdaptiveCovariance) Covariance() *mat.SymDense { return s.chain.Covariance() }
