package ring

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/controller/lanechange"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

const defaultEdgeID = "loop" // 未划分区段时整个环的区段ID

// edgeSpan 环上的区段[start, end)
type edgeSpan struct {
	id           string
	start, end   float64
	trafficLight string
}

// Ring 多车道环形道路
// 功能：内置的微观交通仿真，车辆采用IDM跟驰，支持信号灯停车、外部加速度注入与逐车道变道
// 说明：一步分为Prepare（链表维护）与Update（计算加速度、积分、变道）两个阶段，
// 两阶段之间调用变道控制器与桥区控制器，它们只读取快照并写入车辆的动作
type Ring struct {
	c         config.Ring
	generator *randengine.Engine

	lanes    []*laneList
	vehicles []*Vehicle // 名单顺序
	byID     map[string]*Vehicle
	edges    []edgeSpan
	signals  map[string]string // 信号灯ID -> 状态字符串
	collided bool
}

// New 创建环形道路
// 参数：c-环形道路配置，specs-车辆名单，seed-随机种子
// 返回：完成初始摆放的环形道路，配置非法时返回错误
func New(c config.Ring, specs []VehicleSpec, seed uint64) (*Ring, error) {
	r := &Ring{
		c:         c,
		generator: randengine.New(seed),
		byID:      make(map[string]*Vehicle, len(specs)),
		signals:   make(map[string]string),
	}
	if len(c.Edges) == 0 {
		r.edges = []edgeSpan{{id: defaultEdgeID, start: 0, end: c.Length}}
	} else {
		start := 0.0
		for _, e := range c.Edges {
			r.edges = append(r.edges, edgeSpan{id: e.ID, start: start, end: start + e.Length, trafficLight: e.TrafficLight})
			if e.TrafficLight != "" {
				r.signals[e.TrafficLight] = ""
			}
			start += e.Length
		}
	}
	for i, spec := range specs {
		if spec.Lane < 0 || spec.Lane >= c.Lanes {
			return nil, fmt.Errorf("ring: vehicle %s starts in lane %d of %d", spec.ID, spec.Lane, c.Lanes)
		}
		v := newVehicle(spec)
		ctrl, err := lanechange.New(spec.ID, spec.LaneChange, randengine.New(seed+uint64(i)+1))
		if err != nil {
			return nil, fmt.Errorf("ring: %w", err)
		}
		v.controller = ctrl
		r.vehicles = append(r.vehicles, v)
		r.byID[spec.ID] = v
	}
	if err := r.Reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset 将所有车辆放回初始位置
// 功能：每条车道上的车辆沿环等间距摆放，配置了Shuffle时打乱摆放顺序
// 返回：车道放不下配置的车辆时返回错误，此时环形道路保持原状
func (r *Ring) Reset() error {
	byLane := lo.GroupBy(r.vehicles, func(v *Vehicle) int32 { return v.spec.Lane })
	for lane, vs := range byLane {
		need := lo.SumBy(vs, func(v *Vehicle) float64 { return v.attr.Length + v.attr.MinGap })
		if need > r.c.Length {
			return fmt.Errorf("ring: lane %d needs %.1fm for %d vehicles, ring length is %.1fm", lane, need, len(vs), r.c.Length)
		}
	}

	r.lanes = make([]*laneList, r.c.Lanes)
	for i := range r.lanes {
		r.lanes[i] = newLaneList(int32(i))
	}
	for tl := range r.signals {
		r.signals[tl] = ""
	}
	r.collided = false
	for lane := int32(0); lane < r.c.Lanes; lane++ {
		vs := byLane[lane]
		if len(vs) == 0 {
			continue
		}
		if r.c.Shuffle {
			r.generator.Shuffle(len(vs), func(i, j int) { vs[i], vs[j] = vs[j], vs[i] })
		}
		spacing := r.c.Length / float64(len(vs))
		for i, v := range vs {
			if v.node.Parent() != nil {
				v.node.Parent().Remove(v.node)
			}
			v.reset(float64(i) * spacing)
			r.lanes[lane].add(v.node)
		}
	}
	r.Prepare()
	return nil
}

// edgeAt 位置s所在的区段与区段内的位置
func (r *Ring) edgeAt(s float64) (*edgeSpan, float64) {
	for i := range r.edges {
		e := &r.edges[i]
		if s >= e.start && s < e.end {
			return e, s - e.start
		}
	}
	// 浮点误差导致s恰好等于length
	e := &r.edges[len(r.edges)-1]
	return e, s - e.start
}

func (r *Ring) vehicle(id string) *Vehicle {
	v, ok := r.byID[id]
	if !ok {
		log.Panicf("ring: no vehicle %s", id)
	}
	return v
}

// VehicleIDs 名单顺序的全部车辆ID
func (r *Ring) VehicleIDs() []string {
	return lo.Map(r.vehicles, func(v *Vehicle, _ int) string { return v.ID() })
}

// RLVehicleIDs 名单顺序的强化学习车辆ID
func (r *Ring) RLVehicleIDs() []string {
	return lo.FilterMap(r.vehicles, func(v *Vehicle, _ int) (string, bool) { return v.ID(), v.IsRL() })
}

// Collided 上一步是否发生碰撞
func (r *Ring) Collided() bool {
	return r.collided
}

// SignalState 信号灯当前状态，从未设置时为空字符串（全绿）
func (r *Ring) SignalState(tlID string) string {
	return r.signals[tlID]
}
