package bridge

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

// Bridge 桥区控制器
// 功能：组合收费站与匝道控制，并执行保持路线的强制变道规则
type Bridge struct {
	c         config.Bridge
	toll      *Toll
	rampMeter *RampMeter
	index     EdgeIndex
}

// New 创建桥区控制器
// 参数：c-桥区配置（已补全默认值），dt-仿真步长，generator-随机数生成器
func New(c config.Bridge, dt float64, generator *randengine.Engine) (*Bridge, error) {
	b := &Bridge{c: c}
	if c.Toll != nil {
		if c.Toll.NumLanes > c.MaxLanes {
			return nil, fmt.Errorf("bridge: toll lanes %d exceed max lanes %d", c.Toll.NumLanes, c.MaxLanes)
		}
		b.toll = NewToll(*c.Toll, dt, generator)
	}
	if c.RampMeter != nil {
		if c.RampMeter.NumLanes > c.MaxLanes {
			return nil, fmt.Errorf("bridge: ramp meters %d exceed max lanes %d", c.RampMeter.NumLanes, c.MaxLanes)
		}
		b.rampMeter = NewRampMeter(*c.RampMeter)
	}
	return b, nil
}

// Step 执行一步桥区控制
// 算法说明：
// 1. 由全部观测车辆构建区段索引
// 2. 对命中变道规则的车辆下发变道指令
// 3. 依次执行收费站与匝道控制（未关闭时）
func (b *Bridge) Step(env entity.IBridgeEnv) error {
	index, err := BuildEdgeIndex(env.Vehicles(), b.c.MaxLanes)
	if err != nil {
		return err
	}
	b.index = index
	for _, rule := range b.c.LaneRules {
		for _, o := range index.Lane(rule.Edge, rule.Lane) {
			if err := env.ApplyLaneChange(o.ID, rule.Direction); err != nil {
				return fmt.Errorf("bridge: lane rule on %s/%d for %s: %w", rule.Edge, rule.Lane, o.ID, err)
			}
		}
	}
	if b.toll != nil && !b.c.Toll.Disable {
		if err := b.toll.Step(env, index); err != nil {
			return err
		}
	}
	if b.rampMeter != nil && !b.c.RampMeter.Disable {
		if err := b.rampMeter.Step(env, index); err != nil {
			return err
		}
	}
	return nil
}

// Reset 开始新的一轮
// 功能：收费站与匝道的登记表、等待计时与信号灯状态只在一轮内有效，随仿真环境一起重置
func (b *Bridge) Reset() {
	if b.toll != nil {
		b.toll.Reset()
	}
	if b.rampMeter != nil {
		b.rampMeter.Reset()
	}
	b.index = nil
}

// Reward 全部观测车辆的平均速度，没有车辆时为0
func Reward(env entity.IBridgeEnv) float64 {
	vehicles := env.Vehicles()
	if len(vehicles) == 0 {
		return 0
	}
	return lo.SumBy(vehicles, func(v entity.VehicleState) float64 { return v.V }) / float64(len(vehicles))
}

func (b *Bridge) Toll() *Toll {
	return b.toll
}

func (b *Bridge) RampMeter() *RampMeter {
	return b.rampMeter
}

// Index 最近一步构建的区段索引
func (b *Bridge) Index() EdgeIndex {
	return b.index
}
