package samplers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haldane-labs/mcmc-go/pkg/core"
)

func TestNewChainState(t *testing.T) {
	c := newChain([]float64{1, 2, 3}, 42)

	assert.Equal(t, 3, c.Dim())
	assert.Equal(t, []float64{1, 2, 3}, c.Position())
	assert.True(t, math.IsInf(c.LogDensity(), -1))
	assert.Equal(t, 0, c.Iteration())
	assert.Equal(t, 0.0, c.AcceptanceRate())

	// The covariance estimate starts as the identity.
	cov := c.Covariance()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.Equal(t, want, cov.At(i, j))
		}
	}
}

func TestPositionReturnsCopy(t *testing.T) {
	c := newChain([]float64{1, 2}, 1)
	p := c.Position()
	p[0] = 99
	assert.Equal(t, []float64{1, 2}, c.Position())
}

func TestMetropolisAcceptImproving(t *testing.T) {
	c := newChain([]float64{0}, 7)
	c.setStart(-10)

	// A strictly better proposal is always accepted, whatever the uniform
	// draw was.
	accepted := c.metropolisAccept([]float64{1}, core.ValidEvaluation(-5))
	assert.True(t, accepted)
	assert.Equal(t, []float64{1}, c.Position())
	assert.Equal(t, -5.0, c.LogDensity())
	assert.Equal(t, 1, c.Iteration())
	assert.Equal(t, 1.0, c.AcceptanceRate())
}

func TestMetropolisAcceptInvalidIsReject(t *testing.T) {
	c := newChain([]float64{0}, 7)
	c.setStart(-1)

	for i := 0; i < 5; i++ {
		accepted := c.metropolisAccept([]float64{1}, core.InvalidEvaluation())
		assert.False(t, accepted)
	}
	assert.Equal(t, []float64{0}, c.Position(), "position must not move on invalid evaluations")
	assert.Equal(t, -1.0, c.LogDensity())
	assert.Equal(t, 5, c.Iteration())
	assert.Equal(t, 5, c.InvalidEvaluations())
}

func TestMetropolisAcceptDecisionReplay(t *testing.T) {
	// Two chains with the same seed see the same uniform stream, so the same
	// sequence of (current, proposed) log-densities yields identical
	// decisions.
	c1 := newChain([]float64{0}, 123)
	c2 := newChain([]float64{0}, 123)
	c1.setStart(-2)
	c2.setStart(-2)

	proposals := []float64{-2.5, -1.0, -8.0, -2.1, -3.0, -2.0, -50.0, -1.5}
	for _, lp := range proposals {
		a1 := c1.metropolisAccept([]float64{1}, core.ValidEvaluation(lp))
		a2 := c2.metropolisAccept([]float64{1}, core.ValidEvaluation(lp))
		assert.Equal(t, a1, a2)
		assert.Equal(t, c1.LogDensity(), c2.LogDensity())
	}
}

func TestMetropolisAcceptMuchWorseRejected(t *testing.T) {
	c := newChain([]float64{0}, 99)
	c.setStart(0)

	// exp(-1000) is far below any uniform draw; always rejected.
	for i := 0; i < 50; i++ {
		assert.False(t, c.metropolisAccept([]float64{1}, core.ValidEvaluation(-1000)))
	}
	assert.Equal(t, 0.0, c.AcceptanceRate())
}

func TestUniformStreamAlignment(t *testing.T) {
	// Invalid evaluations must consume exactly one uniform draw, like any
	// other outcome, so later decisions do not depend on how many failures
	// came before.
	c1 := newChain([]float64{0}, 5)
	c2 := newChain([]float64{0}, 5)
	c1.setStart(-1)
	c2.setStart(-1)

	c1.metropolisAccept([]float64{1}, core.InvalidEvaluation())
	c2.metropolisAccept([]float64{1}, core.ValidEvaluation(-1000))

	// Both consumed one draw; the next borderline decision matches.
	for i := 0; i < 20; i++ {
		a1 := c1.metropolisAccept([]float64{1}, core.ValidEvaluation(-1.3))
		a2 := c2.metropolisAccept([]float64{1}, core.ValidEvaluation(-1.3))
		assert.Equal(t, a1, a2)
		if a1 {
			break
		}
	}
}
