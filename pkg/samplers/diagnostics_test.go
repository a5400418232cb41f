package samplers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func fillStore(numChains, n int, gen func(chain, i int) float64) *Store {
	s := NewStore(numChains, 1, n)
	for c := 0; c < numChains; c++ {
		for i := 0; i < n; i++ {
			s.Append(c, []float64{gen(c, i)})
		}
	}
	return s
}

func TestSplitRHatMixedChains(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := fillStore(3, 500, func(chain, i int) float64 {
		return rng.NormFloat64()
	})

	rhat := SplitRHat(s, 0)
	require.Len(t, rhat, 1)
	assert.InDelta(t, 1.0, rhat[0], 0.1, "independent draws from one distribution should look mixed")
}

func TestSplitRHatSeparatedChains(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s := fillStore(3, 500, func(chain, i int) float64 {
		return float64(chain)*50 + rng.NormFloat64()
	})

	rhat := SplitRHat(s, 0)
	require.Len(t, rhat, 1)
	assert.Greater(t, rhat[0], 2.0, "widely separated chains must show a large R-hat")
}

func TestSplitRHatTooFewSamples(t *testing.T) {
	s := fillStore(2, 3, func(chain, i int) float64 { return float64(i) })
	assert.Nil(t, SplitRHat(s, 0))
	assert.True(t, math.IsInf(MaxSplitRHat(s, 0), 1))
}

func TestMaxSplitRHat(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewStore(2, 2, 400)
	for c := 0; c < 2; c++ {
		for i := 0; i < 400; i++ {
			// First dimension mixed, second separated.
			s.Append(c, []float64{rng.NormFloat64(), float64(c)*100 + rng.NormFloat64()})
		}
	}

	rhat := SplitRHat(s, 0)
	require.Len(t, rhat, 2)
	assert.Equal(t, MaxSplitRHat(s, 0), math.Max(rhat[0], rhat[1]))
	assert.Greater(t, MaxSplitRHat(s, 0), 2.0)
}

func TestEffectiveSampleSizeIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	series := make([]float64, 2000)
	for i := range series {
		series[i] = rng.NormFloat64()
	}

	ess := EffectiveSampleSize(series)
	assert.Greater(t, ess, 1000.0, "independent draws should retain most of their sample size")
	assert.LessOrEqual(t, ess, 2000.0)
}

func TestEffectiveSampleSizeCorrelated(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	series := make([]float64, 2000)
	x := 0.0
	for i := range series {
		// AR(1) with strong positive autocorrelation.
		x = 0.95*x + rng.NormFloat64()
		series[i] = x
	}

	ess := EffectiveSampleSize(series)
	assert.Less(t, ess, 500.0, "strongly autocorrelated draws are worth far fewer samples")
}

func TestEffectiveSampleSizeDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, EffectiveSampleSize([]float64{1, 1, 1, 1, 1}))
	assert.Equal(t, 3.0, EffectiveSampleSize([]float64{1, 2, 3}))
}

func TestMaxRHatStoppingRule(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	rule := MaxRHat{Threshold: 1.1, MinIterations: 100}

	mixed := fillStore(3, 500, func(chain, i int) float64 { return rng.NormFloat64() })
	assert.True(t, rule.Done(mixed))

	separated := fillStore(3, 500, func(chain, i int) float64 { return float64(chain) * 50 })
	assert.False(t, rule.Done(separated))

	short := fillStore(3, 50, func(chain, i int) float64 { return rng.NormFloat64() })
	assert.False(t, rule.Done(short), "must not stop before MinIterations")

	single := fillStore(1, 500, func(chain, i int) float64 { return rng.NormFloat64() })
	assert.False(t, rule.Done(single), "split diagnostic needs at least two chains")
}
