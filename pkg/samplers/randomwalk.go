package samplers

import (
	"github.com/haldane-labs/mcmc-go/pkg/core"
)

// RandomWalk is plain Metropolis with a fixed isotropic Gaussian proposal.
// No adaptation: useful as a baseline and for targets where tuning is done
// by hand.
type RandomWalk struct {
	chain *Chain
	sigma float64

	proposal      []float64
	proposalReady bool
	z             []float64
}

// NewRandomWalk builds the sampler with proposal standard deviation sigma
// per dimension. sigma <= 0 selects 1.
func NewRandomWalk(chain *Chain, sigma float64) *RandomWalk {
	if sigma <= 0 {
		sigma = 1
	}
	chain.scale = sigma
	return &RandomWalk{
		chain:    chain,
		sigma:    sigma,
		proposal: make([]float64, chain.Dim()),
		z:        make([]float64, chain.Dim()),
	}
}

func (s *RandomWalk) Name() string { return "random_walk" }

func (s *RandomWalk) Ask() []float64 {
	if !s.proposalReady {
		s.chain.standardNormals(s.z)
		for i := range s.proposal {
			s.proposal[i] = s.chain.position[i] + s.sigma*s.z[i]
		}
		s.proposalReady = true
	}
	return append([]float64(nil), s.proposal...)
}

func (s *RandomWalk) Tell(e core.Evaluation) bool {
	s.proposalReady = false
	return s.chain.metropolisAccept(s.proposal, e)
}

func (s *RandomWalk) Position() []float64     { return s.chain.Position() }
func (s *RandomWalk) LogDensity() float64     { return s.chain.LogDensity() }
func (s *RandomWalk) AcceptanceRate() float64 { return s.chain.AcceptanceRate() }
