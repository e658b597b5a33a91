package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceDeterministic(t *testing.T) {
	a := NewSource(123)
	b := NewSource(123)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d diverged", i)
	}
}

func TestReseedRestartsStream(t *testing.T) {
	s := NewSource(7)
	first := []float64{s.Float64(), s.Float64(), s.Float64()}
	s.Reseed(7)
	for i, want := range first {
		assert.Equal(t, want, s.Float64(), "draw %d after reseed", i)
	}
}

func TestUniformRange(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(81, 250)
		require.GreaterOrEqual(t, v, 81.0)
		require.Less(t, v, 250.0)
	}
}

func TestLogNormalPositive(t *testing.T) {
	s := NewSource(2)
	for i := 0; i < 1000; i++ {
		require.Greater(t, s.LogNormal(0, 0.05), 0.0)
	}
}

func TestBernoulliDegenerate(t *testing.T) {
	s := NewSource(3)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Bernoulli(0))
		assert.True(t, s.Bernoulli(1.0000001))
	}
}
