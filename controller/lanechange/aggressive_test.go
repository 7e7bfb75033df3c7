package lanechange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggressive(t *testing.T) {
	r := newFakeRing(3, 230).add("ego", 0, 10, 1)
	r.headways = []float64{10, 50, 20}
	r.reverseHeadways = []float64{10, 6, 10}
	c := NewAggressive("ego", DefaultAggressiveParams(8))

	lane, err := c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(1), lane)

	// 最佳车道后车过近
	r.reverseHeadways = []float64{10, 3, 10}
	lane, err = c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), lane)

	// 速度达到8*0.75
	r.reverseHeadways = []float64{10, 6, 10}
	r.add("ego", 0, 10, 6)
	lane, err = c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), lane)
}

func TestAggressiveTieBreak(t *testing.T) {
	r := newFakeRing(3, 230).add("ego", 2, 10, 1)
	r.headways = []float64{230, 230, 5}
	r.reverseHeadways = []float64{230, 230, 5}
	lane, err := NewAggressive("ego", DefaultAggressiveParams(8)).ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), lane)
}

func TestSafeAggressive(t *testing.T) {
	r := newFakeRing(4, 230).add("ego", 0, 10, 1)
	r.headways = []float64{10, 20, 100, 200}
	r.reverseHeadways = []float64{10, 10, 10, 10}
	c := NewSafeAggressive("ego", DefaultSafeAggressiveParams(8))

	lane, err := c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(1), lane)

	// 后车间距6 < 8
	r.reverseHeadways = []float64{10, 6, 10, 10}
	lane, err = c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(0), lane)

	// 中间车道可向两侧
	r.add("ego", 2, 10, 1)
	r.headways = []float64{500, 20, 30, 40}
	r.reverseHeadways = []float64{10, 10, 10, 10}
	lane, err = c.ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(3), lane)
}
