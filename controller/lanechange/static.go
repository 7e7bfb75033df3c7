package lanechange

import "github.com/tsinghua-fib-lab/flowctl/entity"

// Static 始终保持当前车道
type Static struct {
	id string
}

func NewStatic(vehID string) *Static {
	return &Static{id: vehID}
}

func (c *Static) VehicleID() string {
	return c.id
}

func (c *Static) ChooseLane(view any) (int32, error) {
	v, err := viewAs[entity.ILaneView](c.id, view)
	if err != nil {
		return 0, err
	}
	return v.Lane(c.id), nil
}

// Sumo 变道交给仿真器自身的模型决定
// 说明：在内置环形道路上等同于Static
type Sumo struct {
	Static
}

func NewSumo(vehID string) *Sumo {
	return &Sumo{Static: Static{id: vehID}}
}
