package samplers

import (
	"math"

	"github.com/haldane-labs/mcmc-go/pkg/core"
)

// DifferentialEvolutionConfig tunes the DE-MC sampler.
type DifferentialEvolutionConfig struct {
	// Gamma scales the difference vector. Zero selects 2.38/√(2d).
	Gamma float64
	// JitterSigma is the standard deviation of the small Gaussian jitter
	// added to every proposal. Zero selects 1e-4.
	JitterSigma float64
	// JumpInterval makes every n-th proposal use γ = 1, which lets chains
	// jump between modes. Zero selects 10; negative disables jumps.
	JumpInterval int
}

func (cfg *DifferentialEvolutionConfig) setDefaults(dim int) {
	if cfg.Gamma <= 0 {
		cfg.Gamma = 2.38 / math.Sqrt(2*float64(dim))
	}
	if cfg.JitterSigma <= 0 {
		cfg.JitterSigma = 1e-4
	}
	if cfg.JumpInterval == 0 {
		cfg.JumpInterval = 10
	}
}

// DifferentialEvolution implements DE-MC: the proposal for chain i is
// x_i + γ(x_a − x_b) + ε, with a and b two distinct other population
// members. It needs at least three chains; the controller enforces that and
// feeds the population snapshot each iteration via SetPopulation.
type DifferentialEvolution struct {
	chain *Chain
	cfg   DifferentialEvolutionConfig
	index int

	population [][]float64

	proposal      []float64
	proposalReady bool
	asks          int
}

func NewDifferentialEvolution(chain *Chain, index int, cfg DifferentialEvolutionConfig) *DifferentialEvolution {
	cfg.setDefaults(chain.Dim())
	return &DifferentialEvolution{
		chain:    chain,
		cfg:      cfg,
		index:    index,
		proposal: make([]float64, chain.Dim()),
	}
}

func (s *DifferentialEvolution) Name() string { return "differential_evolution" }

// SetPopulation installs the current positions of all chains. The slice is
// the controller's snapshot for this iteration; it is not retained past the
// next Ask.
func (s *DifferentialEvolution) SetPopulation(positions [][]float64) {
	s.population = positions
}

func (s *DifferentialEvolution) Ask() []float64 {
	if !s.proposalReady {
		if len(s.population) < 3 {
			panic("samplers: differential evolution needs a population of at least 3 chains")
		}
		a := s.pickOther(s.index, -1)
		b := s.pickOther(s.index, a)

		gamma := s.cfg.Gamma
		s.asks++
		if s.cfg.JumpInterval > 0 && s.asks%s.cfg.JumpInterval == 0 {
			gamma = 1
		}

		xa, xb := s.population[a], s.population[b]
		for i := range s.proposal {
			jitter := s.cfg.JitterSigma * s.chain.rng.NormFloat64()
			s.proposal[i] = s.chain.position[i] + gamma*(xa[i]-xb[i]) + jitter
		}
		s.proposalReady = true
	}
	return append([]float64(nil), s.proposal...)
}

// pickOther draws a population index distinct from self and exclude.
func (s *DifferentialEvolution) pickOther(self, exclude int) int {
	for {
		i := s.chain.rng.Intn(len(s.population))
		if i != self && i != exclude {
			return i
		}
	}
}

func (s *DifferentialEvolution) Tell(e core.Evaluation) bool {
	s.proposalReady = false
	return s.chain.metropolisAccept(s.proposal, e)
}

func (s *DifferentialEvolution) Position() []float64     { return s.chain.Position() }
func (s *DifferentialEvolution) LogDensity() float64     { return s.chain.LogDensity() }
func (s *DifferentialEvolution) AcceptanceRate() float64 { return s.chain.AcceptanceRate() }
