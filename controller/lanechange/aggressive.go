package lanechange

import (
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"gonum.org/v1/gonum/floats"
)

// AggressiveParams 激进变道控制器参数
type AggressiveParams struct {
	TargetVelocity float64 // 期望速度
	Threshold      float64 // 速度低于TargetVelocity*Threshold时寻找更好的车道
	MinRearGap     float64 // 目标车道后车最小间距
}

func DefaultAggressiveParams(targetVelocity float64) AggressiveParams {
	return AggressiveParams{TargetVelocity: targetVelocity, Threshold: 0.75, MinRearGap: 5}
}

func DefaultSafeAggressiveParams(targetVelocity float64) AggressiveParams {
	return AggressiveParams{TargetVelocity: targetVelocity, Threshold: 0.75, MinRearGap: 8}
}

// Aggressive 速度过低时换到前方空间最大的车道
type Aggressive struct {
	id       string
	p        AggressiveParams
	adjacent bool // 只考虑相邻车道
}

func NewAggressive(vehID string, p AggressiveParams) *Aggressive {
	return &Aggressive{id: vehID, p: p}
}

// NewSafeAggressive 只在当前车道及相邻车道中选择的激进变道控制器
func NewSafeAggressive(vehID string, p AggressiveParams) *Aggressive {
	return &Aggressive{id: vehID, p: p, adjacent: true}
}

func (c *Aggressive) VehicleID() string {
	return c.id
}

// ChooseLane 选择目标车道
// 算法说明：
// 1. 车速不低于TargetVelocity*Threshold时保持当前车道
// 2. 在候选车道中选择前车间距最大者（并列取序号最小者）
// 3. 目标车道后车间距小于MinRearGap时保持当前车道
func (c *Aggressive) ChooseLane(view any) (int32, error) {
	v, err := viewAs[entity.IAggressiveView](c.id, view)
	if err != nil {
		return 0, err
	}
	cur := v.Lane(c.id)
	if v.Speed(c.id) >= c.p.TargetVelocity*c.p.Threshold {
		return cur, nil
	}
	headways, reverseHeadways := v.LeaderFollowerHeadways(c.id)
	from, to := int32(0), v.NumLanes()-1
	if c.adjacent {
		from = max(cur-1, 0)
		to = min(cur+1, v.NumLanes()-1)
	}
	best := from + int32(floats.MaxIdx(headways[from:to+1]))
	if reverseHeadways[best] < c.p.MinRearGap {
		return cur, nil
	}
	if best != cur {
		log.Debugf("vehicle %s: aggressive lane change %d -> %d (headway %.2f)", c.id, cur, best, headways[best])
	}
	return best, nil
}
