package bridge

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/entity"
)

// savedState 进入控制区前车辆的原始状态
type savedState struct {
	mode  entity.LaneChangeMode
	color entity.Color
	lane  int32 // 进入控制区时所在车道
}

// registry 控制区内被临时接管的车辆
// 功能：记录车辆的原始变道模式与颜色，离开控制区时恢复
type registry struct {
	name    string
	tag     entity.Color
	entries map[string]savedState
}

func newRegistry(name string, tag entity.Color) *registry {
	return &registry{name: name, tag: tag, entries: make(map[string]savedState)}
}

func (r *registry) has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

func (r *registry) len() int {
	return len(r.entries)
}

// reset 丢弃全部登记，不向仿真环境下发指令
func (r *registry) reset() {
	clear(r.entries)
}

// ids 按ID排序的已登记车辆
func (r *registry) ids() []string {
	ids := lo.Keys(r.entries)
	slices.Sort(ids)
	return ids
}

// enter 接管车辆
// 功能：保存原始变道模式与颜色，禁止变道并标记颜色
func (r *registry) enter(env entity.IBridgeEnv, id string, lane int32) error {
	mode, err := env.LaneChangeMode(id)
	if err != nil {
		return fmt.Errorf("%s: get lane change mode of %s: %w", r.name, id, err)
	}
	color, err := env.Color(id)
	if err != nil {
		return fmt.Errorf("%s: get color of %s: %w", r.name, id, err)
	}
	r.entries[id] = savedState{mode: mode, color: color, lane: lane}
	if err := env.SetLaneChangeMode(id, entity.LaneChangeModeNoChange); err != nil {
		return fmt.Errorf("%s: disable lane change of %s: %w", r.name, id, err)
	}
	if err := env.SetColor(id, r.tag); err != nil {
		return fmt.Errorf("%s: set color of %s: %w", r.name, id, err)
	}
	log.Debugf("%s: vehicle %s entered in lane %d", r.name, id, lane)
	return nil
}

// releaseDeparted 释放已到达下游区段的车辆
// 功能：恢复原始变道模式与颜色并移出登记表；不在本步观测中的车辆直接移除
// 参数：env-仿真环境，postEdge-下游区段ID，onRelease-每释放一辆车的回调，可为nil
func (r *registry) releaseDeparted(env entity.IBridgeEnv, postEdge string, onRelease func(saved savedState)) error {
	for _, id := range r.ids() {
		saved := r.entries[id]
		v, ok := env.Vehicle(id)
		if !ok {
			log.Debugf("%s: vehicle %s vanished", r.name, id)
			delete(r.entries, id)
			continue
		}
		if v.Edge != postEdge {
			continue
		}
		if err := env.SetColor(id, saved.color); err != nil {
			return fmt.Errorf("%s: restore color of %s: %w", r.name, id, err)
		}
		if err := env.SetLaneChangeMode(id, saved.mode); err != nil {
			return fmt.Errorf("%s: restore lane change mode of %s: %w", r.name, id, err)
		}
		delete(r.entries, id)
		if onRelease != nil {
			onRelease(saved)
		}
		log.Debugf("%s: vehicle %s released", r.name, id)
	}
	return nil
}
