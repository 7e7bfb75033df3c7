package ring

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/entity"
)

var (
	_ entity.IStochasticView = (*Ring)(nil)
	_ entity.IAggressiveView = (*Ring)(nil)
	_ entity.IBridgeEnv      = (*Ring)(nil)
)

// 变道控制器查询接口

func (r *Ring) Lane(id string) int32 {
	return r.vehicle(id).lane
}

func (r *Ring) NumLanes() int32 {
	return r.c.Lanes
}

func (r *Ring) Length() float64 {
	return r.c.Length
}

func (r *Ring) Position(id string) float64 {
	return r.vehicle(id).s
}

func (r *Ring) Speed(id string) float64 {
	return r.vehicle(id).v
}

func (r *Ring) MaxSpeed(id string) float64 {
	return r.targetSpeed(r.vehicle(id))
}

func (r *Ring) Leader(id string, lane int32) (string, bool) {
	v := r.vehicle(id)
	if n := r.lanes[lane].leaderOf(v.s, v.node); n != nil {
		return n.Value.ID(), true
	}
	return "", false
}

func (r *Ring) Follower(id string, lane int32) (string, bool) {
	v := r.vehicle(id)
	if n := r.lanes[lane].followerOf(v.s, v.node); n != nil {
		return n.Value.ID(), true
	}
	return "", false
}

func (r *Ring) CarsInRange(id string, lane int32, dxBack, dxForward float64) []string {
	v := r.vehicle(id)
	var ids []string
	for _, other := range r.lanes[lane].list.Values() {
		if wrap(other.s-(v.s-dxBack), r.c.Length) <= dxBack+dxForward {
			ids = append(ids, other.ID())
		}
	}
	return ids
}

// LeaderFollowerHeadways 每条车道上到前车车尾与后车车头的距离，车道上没有其他车辆时为道路总长
func (r *Ring) LeaderFollowerHeadways(id string) (headways, reverseHeadways []float64) {
	v := r.vehicle(id)
	headways = make([]float64, r.c.Lanes)
	reverseHeadways = make([]float64, r.c.Lanes)
	for i, l := range r.lanes {
		headways[i] = r.c.Length
		reverseHeadways[i] = r.c.Length
		if n := l.leaderOf(v.s, v.node); n != nil && n.Value != v {
			headways[i] = wrap(n.S-v.s, r.c.Length) - n.L()
		}
		if n := l.followerOf(v.s, v.node); n != nil && n.Value != v {
			reverseHeadways[i] = wrap(v.s-n.S, r.c.Length) - v.attr.Length
		}
	}
	return
}

// 桥区控制器接口

func (r *Ring) state(v *Vehicle) entity.VehicleState {
	e, s := r.edgeAt(v.s)
	return entity.VehicleState{ID: v.ID(), Edge: e.id, Lane: v.lane, S: s, V: v.v}
}

func (r *Ring) Vehicles() []entity.VehicleState {
	return lo.Map(r.vehicles, func(v *Vehicle, _ int) entity.VehicleState { return r.state(v) })
}

func (r *Ring) Vehicle(id string) (entity.VehicleState, bool) {
	v, ok := r.byID[id]
	if !ok {
		return entity.VehicleState{}, false
	}
	return r.state(v), true
}

func (r *Ring) lookup(id string) (*Vehicle, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("ring: no vehicle %s", id)
	}
	return v, nil
}

func (r *Ring) LaneChangeMode(id string) (entity.LaneChangeMode, error) {
	v, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return v.mode, nil
}

func (r *Ring) SetLaneChangeMode(id string, mode entity.LaneChangeMode) error {
	v, err := r.lookup(id)
	if err != nil {
		return err
	}
	v.mode = mode
	return nil
}

func (r *Ring) Color(id string) (entity.Color, error) {
	v, err := r.lookup(id)
	if err != nil {
		return entity.Color{}, err
	}
	return v.color, nil
}

func (r *Ring) SetColor(id string, c entity.Color) error {
	v, err := r.lookup(id)
	if err != nil {
		return err
	}
	v.color = c
	return nil
}

// ApplyLaneChange 按方向设置目标车道
// 说明：方向只能为-1、0、1，目标车道超出范围时取边界车道
func (r *Ring) ApplyLaneChange(id string, direction int32) error {
	v, err := r.lookup(id)
	if err != nil {
		return err
	}
	if direction < -1 || direction > 1 {
		return fmt.Errorf("ring: bad lane change direction %d for %s", direction, id)
	}
	v.lcTarget = lo.Clamp(v.lane+direction, 0, r.c.Lanes-1)
	return nil
}

func (r *Ring) SetSignalState(tlID string, state string) error {
	if _, ok := r.signals[tlID]; !ok {
		return fmt.Errorf("ring: no traffic light %s", tlID)
	}
	r.signals[tlID] = state
	return nil
}
