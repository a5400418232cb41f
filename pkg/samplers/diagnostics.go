package samplers

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SplitRHat computes the split-chain potential scale reduction factor for
// each parameter dimension. Every chain's post-warm-up samples are split in
// half, and within-sequence variance is compared to between-sequence
// variance; values near 1 indicate the chains have mixed. Returns nil when
// there are not enough samples to form split sequences of length two.
func SplitRHat(store *Store, discard int) []float64 {
	var sequences [][]float64

	rhat := make([]float64, store.Dim())
	for d := 0; d < store.Dim(); d++ {
		sequences = sequences[:0]
		for c := 0; c < store.NumChains(); c++ {
			col := store.Column(c, d, discard)
			half := len(col) / 2
			if half < 2 {
				return nil
			}
			sequences = append(sequences, col[:half], col[half:half*2])
		}
		rhat[d] = rHat(sequences)
	}
	return rhat
}

// MaxSplitRHat reduces SplitRHat to its worst dimension. Returns +Inf when
// the diagnostic cannot be computed yet.
func MaxSplitRHat(store *Store, discard int) float64 {
	rhat := SplitRHat(store, discard)
	if rhat == nil {
		return math.Inf(1)
	}
	max := 0.0
	for _, v := range rhat {
		if v > max {
			max = v
		}
	}
	return max
}

// rHat is the Gelman-Rubin statistic over equal-length scalar sequences.
func rHat(sequences [][]float64) float64 {
	n := float64(len(sequences[0]))

	means := make([]float64, len(sequences))
	variances := make([]float64, len(sequences))
	for i, seq := range sequences {
		means[i], variances[i] = stat.MeanVariance(seq, nil)
	}

	w := stat.Mean(variances, nil)
	b := n * stat.Variance(means, nil)

	if w == 0 {
		// Degenerate chains (e.g. every proposal rejected). Call them mixed
		// when the sequence means agree exactly, unmixed otherwise.
		if b == 0 {
			return 1
		}
		return math.Inf(1)
	}

	varPlus := (n-1)/n*w + b/n
	return math.Sqrt(varPlus / w)
}

// EffectiveSampleSize estimates the number of independent samples a single
// autocorrelated series is worth, using the initial-positive-sequence
// truncation of the autocorrelation sum.
func EffectiveSampleSize(series []float64) float64 {
	n := len(series)
	if n < 4 {
		return float64(n)
	}

	mean, variance := stat.MeanVariance(series, nil)
	if variance == 0 {
		return 0
	}

	// Sum paired autocorrelations until a pair goes non-positive.
	sum := 0.0
	for lag := 1; lag+1 < n; lag += 2 {
		pair := autocorrelation(series, mean, variance, lag) +
			autocorrelation(series, mean, variance, lag+1)
		if pair <= 0 {
			break
		}
		sum += pair
	}

	ess := float64(n) / (1 + 2*sum)
	if ess > float64(n) {
		ess = float64(n)
	}
	return ess
}

func autocorrelation(series []float64, mean, variance float64, lag int) float64 {
	n := len(series)
	sum := 0.0
	for i := 0; i+lag < n; i++ {
		sum += (series[i] - mean) * (series[i+lag] - mean)
	}
	return sum / (float64(n-lag) * variance)
}

// StoppingRule lets a run terminate before MaxIterations. The controller
// consults it once per iteration boundary, after the batch for that
// iteration has been fully recorded.
type StoppingRule interface {
	Done(store *Store) bool
}

// MaxRHat stops a run once the worst-dimension split R-hat falls below a
// threshold, checked only after a minimum number of iterations so early
// noise cannot end the run.
type MaxRHat struct {
	Threshold     float64
	MinIterations int
	Discard       int
}

func (r MaxRHat) Done(store *Store) bool {
	if store.NumChains() < 2 {
		return false
	}
	if store.Len(0) < r.MinIterations {
		return false
	}
	return MaxSplitRHat(store, r.Discard) < r.Threshold
}
