package lanechange

import (
	"math"

	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StochasticParams 随机变道控制器参数
type StochasticParams struct {
	SpeedThreshold float64 // 目标车道与当前车道速度差超过该值才考虑变道
	Prob           float64 // 满足条件时的变道概率
	DxBack         float64 // 统计车道速度的窗口：车辆后方距离
	DxForward      float64 // 统计车道速度的窗口：车辆前方距离
	GapBack        float64 // 后车最小间距，不足时该车道速度记为0
	GapForward     float64 // 前车最小间距，不足时该车道速度记为0
}

func DefaultStochasticParams() StochasticParams {
	return StochasticParams{
		SpeedThreshold: 5,
		Prob:           0.5,
		DxBack:         0,
		DxForward:      60,
		GapBack:        10,
		GapForward:     5,
	}
}

// Stochastic 按各车道的局部平均速度随机变道
type Stochastic struct {
	id        string
	p         StochasticParams
	generator *randengine.Engine
}

func NewStochastic(vehID string, p StochasticParams, generator *randengine.Engine) *Stochastic {
	return &Stochastic{id: vehID, p: p, generator: generator}
}

func (c *Stochastic) VehicleID() string {
	return c.id
}

// ChooseLane 选择目标车道
// 算法说明：
// 1. 对每条车道求该车道上的前车与后车，任一不存在时车道速度取本车最大速度
// 2. 前车间距小于GapForward或后车间距小于GapBack时车道速度为0
// 3. 否则车道速度为窗口[pos-DxBack, pos+DxForward]内其他车辆的平均速度，窗口为空时视为空闲车道
// 4. 取速度最大的车道（并列取序号最小者），速度差超过阈值时以Prob概率变道
func (c *Stochastic) ChooseLane(view any) (int32, error) {
	v, err := viewAs[entity.IStochasticView](c.id, view)
	if err != nil {
		return 0, err
	}
	cur := v.Lane(c.id)
	speeds := c.laneSpeeds(v)
	best := int32(floats.MaxIdx(speeds))
	if best == cur {
		return cur, nil
	}
	if speeds[best]-speeds[cur] > c.p.SpeedThreshold && c.generator.PTrue(c.p.Prob) {
		log.Debugf("vehicle %s: stochastic lane change %d -> %d (%.2f vs %.2f)", c.id, cur, best, speeds[best], speeds[cur])
		return best, nil
	}
	return cur, nil
}

func (c *Stochastic) laneSpeeds(v entity.IStochasticView) []float64 {
	n := v.NumLanes()
	length := v.Length()
	pos := v.Position(c.id)
	maxSpeed := v.MaxSpeed(c.id)
	speeds := make([]float64, n)
	for lane := int32(0); lane < n; lane++ {
		leader, okLeader := v.Leader(c.id, lane)
		follower, okFollower := v.Follower(c.id, lane)
		if !okLeader || !okFollower {
			speeds[lane] = maxSpeed
			continue
		}
		headway := wrap(v.Position(leader)-pos, length)
		footway := wrap(pos-v.Position(follower), length)
		if headway < c.p.GapForward || footway < c.p.GapBack {
			speeds[lane] = 0
			continue
		}
		var window []float64
		for _, other := range v.CarsInRange(c.id, lane, c.p.DxBack, c.p.DxForward) {
			if other != c.id {
				window = append(window, v.Speed(other))
			}
		}
		if len(window) == 0 {
			speeds[lane] = maxSpeed
			continue
		}
		speeds[lane] = stat.Mean(window, nil)
	}
	return speeds
}

// wrap 将距离映射到[0, length)
func wrap(d, length float64) float64 {
	d = math.Mod(d, length)
	if d < 0 {
		d += length
	}
	return d
}
