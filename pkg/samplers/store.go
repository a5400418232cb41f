package samplers

import (
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Store is the append-only record of every chain's samples: one parameter
// vector per chain per iteration, in iteration order. Writes happen only
// from the controller loop; reads are safe from any number of consumers once
// a sample is in, and nothing here ever mutates a stored record.
type Store struct {
	mu     sync.RWMutex
	dim    int
	chains [][][]float64
}

// NewStore creates a store for the given number of chains, preallocating for
// the expected iteration count.
func NewStore(numChains, dim, expectedIterations int) *Store {
	chains := make([][][]float64, numChains)
	for i := range chains {
		chains[i] = make([][]float64, 0, expectedIterations)
	}
	return &Store{dim: dim, chains: chains}
}

// Append records one sample for a chain. The vector is copied; callers may
// reuse their buffer.
func (s *Store) Append(chain int, x []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[chain] = append(s.chains[chain], append([]float64(nil), x...))
}

// NumChains returns the number of chains.
func (s *Store) NumChains() int { return len(s.chains) }

// Dim returns the parameter dimension.
func (s *Store) Dim() int { return s.dim }

// Len returns the number of samples recorded for a chain.
func (s *Store) Len(chain int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chains[chain])
}

// Chain returns chain's samples in iteration order. The outer slice is a
// fresh copy; the sample vectors are shared and must not be mutated.
func (s *Store) Chain(chain int) [][]float64 {
	return s.ChainAfter(chain, 0)
}

// ChainAfter returns chain's samples with the first discard iterations
// dropped, the usual warm-up trim.
func (s *Store) ChainAfter(chain, discard int) [][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	samples := s.chains[chain]
	if discard >= len(samples) {
		return nil
	}
	out := make([][]float64, len(samples)-discard)
	copy(out, samples[discard:])
	return out
}

// Mean returns the per-dimension empirical mean of a chain's samples after
// discarding the first discard iterations.
func (s *Store) Mean(chain, discard int) []float64 {
	samples := s.ChainAfter(chain, discard)
	mean := make([]float64, s.dim)
	if len(samples) == 0 {
		return mean
	}
	col := make([]float64, len(samples))
	for d := 0; d < s.dim; d++ {
		for i, x := range samples {
			col[i] = x[d]
		}
		mean[d] = stat.Mean(col, nil)
	}
	return mean
}

// Covariance returns the empirical covariance of a chain's samples after
// discarding the first discard iterations. Returns nil with fewer than two
// remaining samples.
func (s *Store) Covariance(chain, discard int) *mat.SymDense {
	samples := s.ChainAfter(chain, discard)
	if len(samples) < 2 {
		return nil
	}
	data := mat.NewDense(len(samples), s.dim, nil)
	for i, x := range samples {
		data.SetRow(i, x)
	}
	cov := mat.NewSymDense(s.dim, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return cov
}

// Column extracts one dimension of one chain as a flat series, after
// discarding warm-up. Useful for trace diagnostics.
func (s *Store) Column(chain, dim, discard int) []float64 {
	samples := s.ChainAfter(chain, discard)
	col := make([]float64, len(samples))
	for i, x := range samples {
		col[i] = x[dim]
	}
	return col
}
