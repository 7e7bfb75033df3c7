package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

func testBridgeConfig() config.Bridge {
	toll := testTollConfig()
	return config.Bridge{
		MaxLanes: 24,
		Toll:     &toll,
		RampMeter: &config.RampMeter{
			PreEdge:  "340686911#0.54.54.0",
			PostEdge: "340686911#0.54.54.127.0",
			NumLanes: 14,
			Area:     80,
		},
		LaneRules: []config.LaneRule{{Edge: "124952171", Lane: 1, Direction: 1}},
	}
}

func TestBuildEdgeIndex(t *testing.T) {
	index, err := BuildEdgeIndex([]entity.VehicleState{
		{ID: "a", Edge: "e", Lane: 0, S: 1},
		{ID: "b", Edge: "e", Lane: 2, S: 3},
		{ID: "c", Edge: "e", Lane: 0, S: 5},
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, []Occupant{{ID: "a", S: 1}, {ID: "c", S: 5}}, index.Lane("e", 0))
	assert.Empty(t, index.Lane("e", 1))
	assert.Empty(t, index.Lane("f", 0))
	assert.Empty(t, index.Lane("e", 9))

	_, err = BuildEdgeIndex([]entity.VehicleState{{ID: "a", Edge: "e", Lane: 4}}, 4)
	assert.Error(t, err)
}

func TestRampMeter(t *testing.T) {
	c := testBridgeConfig()
	ramp := NewRampMeter(*c.RampMeter)
	env := newFakeEnv()
	env.put("a", c.RampMeter.PreEdge, 2, 81, 3)
	env.put("b", c.RampMeter.PreEdge, 2, 70, 3)
	env.put("c", c.RampMeter.PreEdge, 14, 90, 3)
	step := func() {
		index, err := BuildEdgeIndex(env.Vehicles(), 24)
		require.NoError(t, err)
		require.NoError(t, ramp.Step(env, index))
	}
	step()
	assert.True(t, ramp.IsWaiting("a"))
	assert.False(t, ramp.IsWaiting("b"))
	assert.False(t, ramp.IsWaiting("c"))
	assert.Equal(t, entity.ColorRamp, env.vehs["a"].color)
	assert.Equal(t, entity.LaneChangeModeNoChange, env.vehs["a"].mode)

	env.put("a", c.RampMeter.PostEdge, 0, 1, 3)
	step()
	assert.Equal(t, 0, ramp.Waiting())
	assert.Equal(t, entity.ColorDefault, env.vehs["a"].color)
	assert.Equal(t, entity.LaneChangeModeDefault, env.vehs["a"].mode)
}

func TestRampIgnoresTollRegistry(t *testing.T) {
	// 已被收费站接管的车辆同样会被匝道控制登记
	c := testBridgeConfig()
	b, err := New(c, 0.1, randengine.New(1))
	require.NoError(t, err)
	env := newFakeEnv()
	env.put("a", c.Toll.PreEdge, 1, 105, 3)
	require.NoError(t, b.Step(env))
	require.True(t, b.Toll().IsWaiting("a"))

	env.put("a", c.RampMeter.PreEdge, 1, 85, 3)
	require.NoError(t, b.Step(env))
	assert.True(t, b.RampMeter().IsWaiting("a"))
	assert.True(t, b.Toll().IsWaiting("a"))
	assert.Equal(t, entity.ColorRamp, env.vehs["a"].color)
}

func TestBridgeLaneRules(t *testing.T) {
	b, err := New(testBridgeConfig(), 0.1, randengine.New(1))
	require.NoError(t, err)
	env := newFakeEnv()
	env.put("a", "124952171", 1, 10, 3)
	env.put("b", "124952171", 0, 10, 3)
	require.NoError(t, b.Step(env))
	assert.Equal(t, []int32{1}, env.lcs["a"])
	assert.Empty(t, env.lcs["b"])
	assert.Len(t, b.Index().Lane("124952171", 1), 1)
}

func TestBridgeDisable(t *testing.T) {
	c := testBridgeConfig()
	c.Toll.Disable = true
	c.RampMeter.Disable = true
	b, err := New(c, 0.1, randengine.New(1))
	require.NoError(t, err)
	env := newFakeEnv()
	env.put("a", c.Toll.PreEdge, 1, 105, 3)
	env.put("b", c.RampMeter.PreEdge, 1, 85, 3)
	require.NoError(t, b.Step(env))
	assert.Equal(t, 0, b.Toll().Waiting())
	assert.Equal(t, 0, b.RampMeter().Waiting())
	assert.Empty(t, env.signals)
}

func TestBridgeReset(t *testing.T) {
	c := testBridgeConfig()
	b, err := New(c, 0.1, randengine.New(1))
	require.NoError(t, err)
	env := newFakeEnv()
	env.put("a", c.Toll.PreEdge, 1, 105, 3)
	env.put("b", c.RampMeter.PreEdge, 1, 85, 3)
	require.NoError(t, b.Step(env))
	require.Equal(t, 1, b.Toll().Waiting())
	require.Equal(t, 1, b.RampMeter().Waiting())

	b.Reset()
	assert.Equal(t, 0, b.Toll().Waiting())
	assert.Equal(t, 0, b.RampMeter().Waiting())
	assert.Equal(t, "", b.Toll().State())
	assert.Nil(t, b.Index())
}

func TestBridgeTooManyLanes(t *testing.T) {
	c := testBridgeConfig()
	c.MaxLanes = 10
	_, err := New(c, 0.1, randengine.New(1))
	assert.Error(t, err)
}

func TestReward(t *testing.T) {
	env := newFakeEnv()
	assert.Equal(t, 0.0, Reward(env))
	env.put("a", "e", 0, 1, 4)
	env.put("b", "e", 0, 9, 8)
	assert.InDelta(t, 6.0, Reward(env), 1e-9)
}
