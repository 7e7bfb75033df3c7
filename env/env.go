// 强化学习环境：reset/step接口
package env

import (
	"fmt"

	"github.com/tsinghua-fib-lab/flowctl/controller/bridge"
	"github.com/tsinghua-fib-lab/flowctl/entity/ring"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

// StepResult 执行一步动作后的结果
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool // 回合是否结束（达到时间上限或发生碰撞）
	Info        map[string]any
}

// Env 强化学习环境
type Env interface {
	// 开始新的回合，返回初始观测
	Reset() ([]float64, error)
	// 执行动作并推进一个仿真步
	Step(actions []float64) (StepResult, error)
}

// LoopEnv 基于环形道路的强化学习环境
// 功能：观测为全部车辆的归一化速度与位置，动作为强化学习车辆的加速度，奖励为平均速度
type LoopEnv struct {
	ring   *ring.Ring
	bridge *bridge.Bridge // 可为nil
	c      config.Env
	dt     float64
	rlIDs  []string
	step   int32
}

var _ Env = (*LoopEnv)(nil)

// NewLoopEnv 创建环形道路强化学习环境
// 参数：r-环形道路，b-桥区控制器（可为nil），c-环境配置，dt-仿真步长
func NewLoopEnv(r *ring.Ring, b *bridge.Bridge, c config.Env, dt float64) (*LoopEnv, error) {
	if c.TargetVelocity <= 0 {
		return nil, fmt.Errorf("env: target velocity must be positive, got %v", c.TargetVelocity)
	}
	if c.Horizon <= 0 {
		return nil, fmt.Errorf("env: horizon must be positive, got %d", c.Horizon)
	}
	return &LoopEnv{
		ring:   r,
		bridge: b,
		c:      c,
		dt:     dt,
		rlIDs:  r.RLVehicleIDs(),
	}, nil
}

func (e *LoopEnv) Reset() ([]float64, error) {
	if err := e.ring.Reset(); err != nil {
		return nil, err
	}
	if e.bridge != nil {
		e.bridge.Reset()
	}
	e.step = 0
	return e.observe(), nil
}

// Step 执行一步
// 算法说明：
// 1. 动作按名单顺序对应强化学习车辆，数量不符时返回错误
// 2. 变道控制器给出目标车道，桥区控制器（如有）执行本步控制
// 3. 推进仿真并计算观测、奖励与结束标志
func (e *LoopEnv) Step(actions []float64) (StepResult, error) {
	if len(actions) != len(e.rlIDs) {
		return StepResult{}, fmt.Errorf("env: got %d actions for %d rl vehicles", len(actions), len(e.rlIDs))
	}
	for i, id := range e.rlIDs {
		if err := e.ring.ApplyAcceleration(id, actions[i]); err != nil {
			return StepResult{}, err
		}
	}
	if err := e.ring.ChooseLanes(); err != nil {
		return StepResult{}, err
	}
	if e.bridge != nil {
		if err := e.bridge.Step(e.ring); err != nil {
			return StepResult{}, err
		}
	}
	e.ring.Update(e.dt)
	e.ring.Prepare()
	e.step++

	collided := e.ring.Collided()
	done := e.step >= e.c.Horizon || collided
	if done {
		log.Debugf("episode done at step %d (collided=%v)", e.step, collided)
	}
	return StepResult{
		Observation: e.observe(),
		Reward:      bridge.Reward(e.ring),
		Done:        done,
		Info: map[string]any{
			"step":     e.step,
			"collided": collided,
		},
	}, nil
}

// observe 速度/期望速度，随后为位置/道路长度，均按名单顺序
func (e *LoopEnv) observe() []float64 {
	ids := e.ring.VehicleIDs()
	obs := make([]float64, 0, 2*len(ids))
	for _, id := range ids {
		obs = append(obs, e.ring.Speed(id)/e.c.TargetVelocity)
	}
	for _, id := range ids {
		obs = append(obs, e.ring.Position(id)/e.ring.Length())
	}
	return obs
}

// RLVehicleIDs 动作对应的车辆ID
func (e *LoopEnv) RLVehicleIDs() []string {
	return e.rlIDs
}
