package ring

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
)

// Prepare 准备阶段
// 功能：应用车道链表缓冲区、检测碰撞并清空上一步的动作
func (r *Ring) Prepare() {
	parallel.GoFor(r.lanes, func(l *laneList) { l.prepare() })
	for _, l := range r.lanes {
		for node := l.list.First(); node != nil; node = node.Next() {
			next := node.NextOnRing()
			if next == nil {
				continue
			}
			if gap := wrap(next.S-node.S, r.c.Length) - next.L(); gap < 0 {
				if !r.collided {
					log.Warnf("collision in lane %d: %v -> %v (gap %.2f)", l.index, node.Value, next.Value, gap)
				}
				r.collided = true
			}
		}
	}
	for _, v := range r.vehicles {
		v.clearAction()
	}
}

// ChooseLanes 调用每辆车的变道控制器，记录目标车道
func (r *Ring) ChooseLanes() error {
	for _, v := range r.vehicles {
		if v.controller == nil {
			continue
		}
		target, err := v.controller.ChooseLane(r)
		if err != nil {
			return fmt.Errorf("ring: choose lane for %s: %w", v.ID(), err)
		}
		if target < 0 || target >= r.c.Lanes {
			return fmt.Errorf("ring: vehicle %s chose lane %d of %d", v.ID(), target, r.c.Lanes)
		}
		v.lcTarget = target
	}
	return nil
}

// ApplyAcceleration 为强化学习车辆注入本步加速度
func (r *Ring) ApplyAcceleration(id string, acc float64) error {
	v, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("ring: no vehicle %s", id)
	}
	if !v.IsRL() {
		return fmt.Errorf("ring: vehicle %s is not controlled by rl", id)
	}
	v.rlAcc = acc
	v.hasRLAcc = true
	return nil
}

// Update 更新阶段
// 功能：推进一个仿真步
// 参数：dt-时间步长（秒）
// 算法说明：
// 1. 并行计算每辆车的加速度（只读快照，只写自身动作）
// 2. 按名单顺序执行变道：向目标车道移动一条车道，要求变道模式允许且目标车道前后间距安全
// 3. 积分速度与位置，越过终点的车辆回到起点
func (r *Ring) Update(dt float64) {
	parallel.GoFor(r.vehicles, func(v *Vehicle) { v.acc = r.computeAcc(v, dt) })
	r.changeLanes()
	for _, v := range r.vehicles {
		newV := lo.Clamp(v.v+v.acc*dt, 0, v.attr.MaxSpeed)
		v.s = wrap(v.s+(v.v+newV)/2*dt, r.c.Length)
		v.v = newV
		v.node.S = v.s
	}
}

func (r *Ring) targetSpeed(v *Vehicle) float64 {
	if r.c.SpeedLimit > 0 {
		return math.Min(v.attr.MaxSpeed, r.c.SpeedLimit)
	}
	return v.attr.MaxSpeed
}

// computeAcc 计算车辆本步的加速度
// 算法说明：
// 1. 强化学习车辆有注入加速度时直接采用（限制在车辆能力范围内）
// 2. 否则对环形前车执行IDM跟驰，没有前车时按自由流计算
// 3. 所在区段末端信号灯对本车道不为绿灯时，取跟驰加速度与停车加速度的较小值
func (r *Ring) computeAcc(v *Vehicle, dt float64) float64 {
	if v.IsRL() && v.hasRLAcc {
		return v.clampAcc(v.rlAcc)
	}
	targetV := r.targetSpeed(v)
	var acc float64
	if leader := v.node.NextOnRing(); leader != nil {
		distance := wrap(leader.S-v.s, r.c.Length) - leader.L()
		acc = v.follow(targetV, leader.V(), distance)
	} else {
		acc = v.follow(targetV, 0, mathutil.INF)
	}
	if e, _ := r.edgeAt(v.s); e.trafficLight != "" && !isGreen(r.signals[e.trafficLight], v.lane) {
		acc = math.Min(acc, v.stop(targetV, e.end-v.s, dt))
	}
	return acc
}

// changeLanes 执行变道
// 说明：变道车辆在目标车道上创建新的链表节点，原节点在下一次Prepare中移除
func (r *Ring) changeLanes() {
	for _, v := range r.vehicles {
		if v.lcTarget == v.lane || !v.mode.AllowLaneChange() {
			continue
		}
		next := v.lane + 1
		if v.lcTarget < v.lane {
			next = v.lane - 1
		}
		dst := r.lanes[next]
		if !r.gapSafe(v, dst) {
			log.Debugf("vehicle %s: lane change %d -> %d rejected, gap unsafe", v.ID(), v.lane, next)
			continue
		}
		r.lanes[v.lane].remove(v.node)
		v.node = &vehicleNode{S: v.s, Value: v}
		dst.add(v.node)
		v.lane = next
	}
}

// gapSafe 目标车道上前车与后车的间距均不小于车长加最小车距
func (r *Ring) gapSafe(v *Vehicle, dst *laneList) bool {
	ok := func(n *vehicleNode) bool {
		if n.Value == v {
			return true
		}
		ahead := wrap(n.S-v.s, r.c.Length)
		behind := wrap(v.s-n.S, r.c.Length)
		return ahead >= n.L()+v.attr.MinGap && behind >= v.attr.Length+v.attr.MinGap
	}
	for node := dst.list.First(); node != nil; node = node.Next() {
		if !ok(node) {
			return false
		}
	}
	for _, node := range dst.pending() {
		if !ok(node) {
			return false
		}
	}
	return true
}

// isGreen 状态字符串中车道对应的字符是否为绿灯，超出长度的车道视为绿灯
func isGreen(state string, lane int32) bool {
	if int(lane) >= len(state) {
		return true
	}
	c := state[lane]
	return c == 'G' || c == 'g'
}

// wrap 将距离映射到[0, length)
func wrap(d, length float64) float64 {
	d = math.Mod(d, length)
	if d < 0 {
		d += length
	}
	return d
}
