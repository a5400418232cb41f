// Package samplers implements the sampling controller and its MCMC methods.
//
// A Sampler advances one Markov chain through an ask/tell cycle: Ask proposes
// a candidate point, the controller has the target evaluated there (possibly
// batched with other chains), and Tell feeds the evaluation back so the
// sampler can run its accept/reject test and update any adaptation state.
// Splitting proposal from evaluation is what lets the controller parallelize
// the expensive part across chains without any sampler mutating state before
// the whole batch is collected.
package samplers

import (
	"gonum.org/v1/gonum/mat"

	"github.com/haldane-labs/mcmc-go/pkg/core"
	"github.com/haldane-labs/mcmc-go/pkg/errors"
)

// Sampler is the per-chain strategy contract.
//
// Ask must be repeatable: calling it again before the matching Tell returns
// the same proposal and performs no further state changes. Tell must treat an
// invalid evaluation as an automatic reject, never as a fatal condition.
type Sampler interface {
	// Name identifies the method, e.g. "adaptive_covariance".
	Name() string
	// Ask returns the candidate point for the current iteration.
	Ask() []float64
	// Tell completes the iteration with the candidate's evaluation and
	// reports whether the candidate was accepted.
	Tell(e core.Evaluation) bool
	// Position returns the chain's current position. After Tell this is the
	// iteration's sample, whether or not the candidate was accepted.
	Position() []float64
	// LogDensity returns the log-density at the current position.
	LogDensity() float64
	// AcceptanceRate returns the fraction of accepted proposals so far.
	AcceptanceRate() float64
}

// PopulationAware is implemented by samplers whose proposals depend on the
// other chains' positions. The controller feeds a fresh snapshot before each
// iteration's Ask calls; index i is chain i's current position.
type PopulationAware interface {
	SetPopulation(positions [][]float64)
}

// Tunable is implemented by samplers that carry an adapted proposal scale and
// covariance estimate, so the controller can report them in chain summaries.
type Tunable interface {
	Scale() float64
	Covariance() *mat.SymDense
}

// Method names accepted by the controller configuration.
const (
	MethodAdaptive              = "adaptive"
	MethodRandomWalk            = "random_walk"
	MethodDifferentialEvolution = "differential_evolution"
)

// newSampler builds one sampler of the configured method around a chain.
func newSampler(method string, chain *Chain, cfg ControllerConfig, chainIndex int) (Sampler, error) {
	switch method {
	case MethodAdaptive, "":
		return NewAdaptiveCovariance(chain, AdaptiveConfig{
			AdaptationEnd:    cfg.AdaptationEnd,
			TargetAcceptance: cfg.TargetAcceptance,
			DecayExponent:    cfg.DecayExponent,
		}), nil
	case MethodRandomWalk:
		return NewRandomWalk(chain, 0), nil
	case MethodDifferentialEvolution:
		return NewDifferentialEvolution(chain, chainIndex, DifferentialEvolutionConfig{}), nil
	default:
		return nil, errors.Newf(errors.InvalidConfig, "unknown sampling method %q", method)
	}
}
