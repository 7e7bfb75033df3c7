package lanechange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

func ptr(v float64) *float64 { return &v }

func TestNew(t *testing.T) {
	g := randengine.New(1)

	c, err := New("a", config.LaneChange{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Static{}, c)
	assert.Equal(t, "a", c.VehicleID())

	c, err = New("a", config.LaneChange{Kind: KindSumo}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Sumo{}, c)

	c, err = New("a", config.LaneChange{Kind: KindStochastic, Prob: ptr(0.2)}, g)
	require.NoError(t, err)
	s := c.(*Stochastic)
	assert.Equal(t, 0.2, s.p.Prob)
	assert.Equal(t, 60.0, s.p.DxForward)

	_, err = New("a", config.LaneChange{Kind: KindStochastic}, nil)
	assert.Error(t, err)

	c, err = New("a", config.LaneChange{Kind: KindAggressive, TargetVelocity: 8}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, c.(*Aggressive).p.MinRearGap)
	assert.False(t, c.(*Aggressive).adjacent)

	c, err = New("a", config.LaneChange{Kind: KindSafeAggressive, TargetVelocity: 8, Threshold: ptr(0.5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 8.0, c.(*Aggressive).p.MinRearGap)
	assert.Equal(t, 0.5, c.(*Aggressive).p.Threshold)
	assert.True(t, c.(*Aggressive).adjacent)

	_, err = New("a", config.LaneChange{Kind: KindAggressive}, nil)
	assert.Error(t, err)

	_, err = New("a", config.LaneChange{Kind: "mobil"}, nil)
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	r := newFakeRing(3, 230).add("a", 2, 10, 5)
	lane, err := NewStatic("a").ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(2), lane)

	lane, err = NewSumo("a").ChooseLane(r)
	require.NoError(t, err)
	assert.Equal(t, int32(2), lane)
}

func TestViewMismatch(t *testing.T) {
	_, err := NewStatic("a").ChooseLane(struct{}{})
	assert.Error(t, err)
	_, err = NewAggressive("a", DefaultAggressiveParams(8)).ChooseLane(struct{}{})
	assert.Error(t, err)
}
