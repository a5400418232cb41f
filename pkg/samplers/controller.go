package samplers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/haldane-labs/mcmc-go/pkg/core"
	"github.com/haldane-labs/mcmc-go/pkg/errors"
	"github.com/haldane-labs/mcmc-go/pkg/logging"
)

// ControllerConfig configures a sampling run. The yaml tags allow loading it
// from a config file via pkg/config.
type ControllerConfig struct {
	// Chains is the number of Markov chains run in lockstep.
	Chains int `yaml:"chains" validate:"required,min=1"`
	// MaxIterations bounds the run; every chain produces exactly this many
	// samples unless a stopping rule ends the run earlier.
	MaxIterations int `yaml:"max_iterations" validate:"required,min=1"`
	// Method selects the sampler: adaptive (default), random_walk or
	// differential_evolution.
	Method string `yaml:"method" validate:"omitempty,oneof=adaptive random_walk differential_evolution"`
	// AdaptationEnd freezes adaptation at this iteration; 0 adapts throughout.
	AdaptationEnd int `yaml:"adaptation_end" validate:"min=0"`
	// TargetAcceptance steers the adaptive scale; 0 selects the 0.234 default.
	TargetAcceptance float64 `yaml:"target_acceptance" validate:"omitempty,gt=0,lt=1"`
	// DecayExponent is the adaptation decay κ; 0 selects the 0.6 default.
	DecayExponent float64 `yaml:"decay_exponent" validate:"omitempty,gt=0,lte=1"`
	// Seed makes the run reproducible; 0 derives a seed from the clock.
	Seed int64 `yaml:"seed"`
	// Parallel evaluates each iteration's proposals concurrently.
	Parallel bool `yaml:"parallel"`
	// Workers bounds parallel evaluation goroutines; 0 selects GOMAXPROCS.
	Workers int `yaml:"workers" validate:"min=0"`
	// LogToScreen enables periodic progress reporting.
	LogToScreen bool `yaml:"log_to_screen"`
	// LogInterval is the iteration spacing of progress reports; 0 selects 500.
	LogInterval int `yaml:"log_interval" validate:"min=0"`
}

// DefaultControllerConfig returns a single-chain adaptive configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Chains:           1,
		MaxIterations:    10000,
		Method:           MethodAdaptive,
		AdaptationEnd:    2000,
		TargetAcceptance: DefaultTargetAcceptance,
		DecayExponent:    DefaultDecayExponent,
		LogInterval:      500,
	}
}

var validate = validator.New()

// Validate checks the configuration, including cross-field constraints the
// struct tags cannot express.
func (cfg ControllerConfig) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, errors.InvalidConfig, "invalid controller configuration")
	}
	if cfg.Method == MethodDifferentialEvolution && cfg.Chains < 3 {
		return errors.Newf(errors.InvalidConfig,
			"differential evolution needs at least 3 chains, got %d", cfg.Chains)
	}
	return nil
}

// ChainSummary reports one chain's final diagnostic state.
type ChainSummary struct {
	Method             string
	AcceptanceRate     float64
	FinalScale         float64
	FinalCovariance    *mat.SymDense
	InvalidEvaluations int
}

// Result is the durable output of a run: the sample store plus per-chain
// summaries and run metadata.
type Result struct {
	RunID      string
	Seed       uint64
	Iterations int
	Store      *Store
	Summaries  []ChainSummary
}

// Controller drives N chains in lockstep: per iteration it collects every
// chain's proposal, has the batch evaluated, feeds results back in chain
// order, records one sample per chain and checks the stopping rule. All
// chain-state mutation happens on the controller's goroutine; only target
// evaluation is ever concurrent.
type Controller struct {
	target    core.LogPDF
	cfg       ControllerConfig
	initial   [][]float64
	evaluator Evaluator
	prior     core.Prior
	stopping  StoppingRule
	logger    *logging.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithEvaluator replaces the evaluation dispatcher.
func WithEvaluator(e Evaluator) Option {
	return func(c *Controller) { c.evaluator = e }
}

// WithPrior supplies a prior used to seed chains that were not given an
// explicit initial position.
func WithPrior(p core.Prior) Option {
	return func(c *Controller) { c.prior = p }
}

// WithStoppingRule installs an early-termination rule, checked once per
// iteration boundary.
func WithStoppingRule(r StoppingRule) Option {
	return func(c *Controller) { c.stopping = r }
}

// WithLogger replaces the logger used for progress and diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController validates the configuration and initial positions, failing
// fast before any evaluation budget is spent.
func NewController(target core.LogPDF, initial [][]float64, cfg ControllerConfig, opts ...Option) (*Controller, error) {
	if target == nil {
		return nil, errors.New(errors.InvalidConfig, "target log-pdf is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		target:  target,
		cfg:     cfg,
		initial: initial,
		logger:  logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.evaluator == nil {
		if cfg.Parallel {
			c.evaluator = ParallelEvaluator{Workers: cfg.Workers}
		} else {
			c.evaluator = SequentialEvaluator{}
		}
	}

	dim := target.Dim()
	if dim < 1 {
		return nil, errors.New(errors.InvalidConfig, "target dimension must be at least 1")
	}
	if len(initial) > cfg.Chains {
		return nil, errors.Newf(errors.InvalidConfig,
			"%d initial positions for %d chains", len(initial), cfg.Chains)
	}
	for i, x := range initial {
		if len(x) != dim {
			return nil, errors.WithFields(
				errors.Newf(errors.DimensionMismatch,
					"initial position has dimension %d, target expects %d", len(x), dim),
				errors.Fields{"chain": i})
		}
	}
	if len(initial) == 0 && c.prior == nil {
		return nil, errors.New(errors.InvalidConfig,
			"at least one initial position or a prior is required")
	}
	if c.prior != nil && c.prior.Dim() != dim {
		return nil, errors.Newf(errors.DimensionMismatch,
			"prior has dimension %d, target expects %d", c.prior.Dim(), dim)
	}

	return c, nil
}

// splitmix64 decorrelates per-chain seeds derived from the master seed.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// startPositions resolves one starting position per chain. Chains without an
// explicit position are seeded from the prior when one is configured, and
// otherwise by perturbing the last explicit position with a small Gaussian
// kick so replicated chains do not start identical.
func (c *Controller) startPositions(masterSeed uint64) [][]float64 {
	dim := c.target.Dim()
	rng := newSeedRNG(splitmix64(masterSeed))

	positions := make([][]float64, 0, c.cfg.Chains)
	for _, x := range c.initial {
		positions = append(positions, append([]float64(nil), x...))
	}
	for len(positions) < c.cfg.Chains {
		if c.prior != nil {
			positions = append(positions, c.prior.Sample(rng))
			continue
		}
		base := positions[len(positions)-1]
		x := make([]float64, dim)
		for i := range x {
			sigma := 1e-3 * (1 + abs(base[i]))
			x[i] = base[i] + sigma*rng.NormFloat64()
		}
		positions = append(positions, x)
	}
	return positions
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Run executes the sampling loop. It returns the complete result or a typed
// error; it never returns a silently truncated result. Cancellation is
// honored at iteration boundaries only, so an in-flight evaluation batch
// always completes.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()[:8]
	ctx = logging.WithRunID(ctx, runID)

	masterSeed := uint64(c.cfg.Seed)
	if c.cfg.Seed == 0 {
		masterSeed = uint64(time.Now().UnixNano())
	}

	positions := c.startPositions(masterSeed)

	// Evaluate every starting position up front. A chain cannot start from
	// an invalid point; if no chain can start, the run is unrecoverable.
	evals := c.evaluator.EvaluateBatch(ctx, c.target, positions)
	firstValid := -1
	for i, e := range evals {
		if e.OK {
			firstValid = i
			break
		}
	}
	if firstValid < 0 {
		return nil, errors.Newf(errors.InitFailed,
			"target log-density is invalid at all %d initial positions", len(positions))
	}
	for i, e := range evals {
		if !e.OK {
			c.logger.Warn(ctx,
				"chain %d initial position is invalid, restarting it from chain %d", i, firstValid)
			positions[i] = append([]float64(nil), positions[firstValid]...)
			evals[i] = evals[firstValid]
		}
	}

	// One sampler per chain, each owning its own deterministically seeded
	// chain state.
	chains := make([]*Chain, c.cfg.Chains)
	samplers := make([]Sampler, c.cfg.Chains)
	for i := range samplers {
		chains[i] = newChain(positions[i], splitmix64(masterSeed+uint64(i)+1))
		chains[i].setStart(evals[i].LogDensity)
		s, err := newSampler(c.cfg.Method, chains[i], c.cfg, i)
		if err != nil {
			return nil, err
		}
		samplers[i] = s
	}

	store := NewStore(c.cfg.Chains, c.target.Dim(), c.cfg.MaxIterations)

	logInterval := c.cfg.LogInterval
	if logInterval <= 0 {
		logInterval = 500
	}
	if c.cfg.LogToScreen {
		c.logger.Info(ctx, "starting %s run: %d chains, %d iterations, seed %d",
			samplers[0].Name(), c.cfg.Chains, c.cfg.MaxIterations, masterSeed)
	}

	proposals := make([][]float64, c.cfg.Chains)
	var population [][]float64

	iterations := 0
	for it := 0; it < c.cfg.MaxIterations; it++ {
		if err := errors.CheckContext(ctx, "sampling run"); err != nil {
			return nil, err
		}

		// Population-aware samplers see every chain's position as of the
		// start of this iteration.
		population = population[:0]
		for i := range samplers {
			population = append(population, chains[i].Position())
		}
		for i, s := range samplers {
			if pa, ok := s.(PopulationAware); ok {
				pa.SetPopulation(population)
			}
			proposals[i] = s.Ask()
		}

		evals := c.evaluator.EvaluateBatch(ctx, c.target, proposals)

		// Results rejoin their chains in chain order; no chain state mutates
		// until the whole batch is in.
		for i, s := range samplers {
			s.Tell(evals[i])
			store.Append(i, s.Position())
		}
		iterations++

		if c.cfg.LogToScreen && (it+1)%logInterval == 0 {
			for i, s := range samplers {
				c.logger.Progress(ctx, i, it+1, s.LogDensity(), s.AcceptanceRate())
			}
		}

		if c.stopping != nil && c.stopping.Done(store) {
			if c.cfg.LogToScreen {
				c.logger.Info(ctx, "stopping rule satisfied after %d iterations", iterations)
			}
			break
		}
	}

	summaries := make([]ChainSummary, c.cfg.Chains)
	for i, s := range samplers {
		summary := ChainSummary{
			Method:             s.Name(),
			AcceptanceRate:     s.AcceptanceRate(),
			InvalidEvaluations: chains[i].InvalidEvaluations(),
		}
		if tuned, ok := s.(Tunable); ok {
			summary.FinalScale = tuned.Scale()
			summary.FinalCovariance = tuned.Covariance()
		}
		summaries[i] = summary
	}

	return &Result{
		RunID:      runID,
		Seed:       masterSeed,
		Iterations: iterations,
		Store:      store,
		Summaries:  summaries,
	}, nil
}
