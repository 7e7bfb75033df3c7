package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for range 10 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestPTrueBounds(t *testing.T) {
	e := randengine.New(1)
	for range 100 {
		assert.False(t, e.PTrue(0))
		assert.True(t, e.PTrue(1))
	}
}

func TestNormalVariants(t *testing.T) {
	e := randengine.New(7)
	for range 200 {
		assert.GreaterOrEqual(t, e.AbsNormal(-5, 10), 0.0)
		assert.GreaterOrEqual(t, e.NonNegNormal(-5, 1), 0.0)
	}
	assert.Equal(t, 3.0, e.Normal(3, 0))
}
