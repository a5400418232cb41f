package samplers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendAndLen(t *testing.T) {
	s := NewStore(2, 3, 10)

	assert.Equal(t, 2, s.NumChains())
	assert.Equal(t, 3, s.Dim())
	assert.Equal(t, 0, s.Len(0))

	s.Append(0, []float64{1, 2, 3})
	s.Append(0, []float64{4, 5, 6})
	s.Append(1, []float64{7, 8, 9})

	assert.Equal(t, 2, s.Len(0))
	assert.Equal(t, 1, s.Len(1))
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, s.Chain(0))
}

func TestStoreCopiesOnAppend(t *testing.T) {
	s := NewStore(1, 2, 4)
	buf := []float64{1, 2}
	s.Append(0, buf)
	buf[0] = 99

	assert.Equal(t, [][]float64{{1, 2}}, s.Chain(0), "store must not alias caller buffers")
}

func TestStoreChainAfter(t *testing.T) {
	s := NewStore(1, 1, 8)
	for i := 0; i < 5; i++ {
		s.Append(0, []float64{float64(i)})
	}

	assert.Len(t, s.ChainAfter(0, 2), 3)
	assert.Equal(t, []float64{2}, s.ChainAfter(0, 2)[0])
	assert.Nil(t, s.ChainAfter(0, 5), "discarding everything yields nil")
	assert.Nil(t, s.ChainAfter(0, 100))
}

func TestStoreMean(t *testing.T) {
	s := NewStore(1, 2, 4)
	s.Append(0, []float64{0, 10})
	s.Append(0, []float64{2, 20})
	s.Append(0, []float64{4, 30})

	assert.Equal(t, []float64{2, 20}, s.Mean(0, 0))
	assert.Equal(t, []float64{3, 25}, s.Mean(0, 1))
}

func TestStoreCovariance(t *testing.T) {
	s := NewStore(1, 2, 8)
	// Perfectly correlated pairs: covariance matrix is [[1,1],[1,1]] scaled.
	for i := 0; i < 4; i++ {
		v := float64(i)
		s.Append(0, []float64{v, v})
	}

	cov := s.Covariance(0, 0)
	require.NotNil(t, cov)
	assert.InDelta(t, cov.At(0, 0), cov.At(0, 1), 1e-12)
	assert.InDelta(t, cov.At(0, 0), cov.At(1, 1), 1e-12)

	assert.Nil(t, s.Covariance(0, 3), "fewer than two samples has no covariance")
}

func TestStoreColumn(t *testing.T) {
	s := NewStore(1, 2, 4)
	s.Append(0, []float64{1, 10})
	s.Append(0, []float64{2, 20})
	s.Append(0, []float64{3, 30})

	assert.Equal(t, []float64{10, 20, 30}, s.Column(0, 1, 0))
	assert.Equal(t, []float64{20, 30}, s.Column(0, 1, 1))
}
