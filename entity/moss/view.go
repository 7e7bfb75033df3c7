package moss

import (
	"context"
	"fmt"

	"github.com/tsinghua-fib-lab/flowctl/entity"
)

var _ entity.IBridgeEnv = (*View)(nil)

// View 一步的观测与指令
type View struct {
	ctx         context.Context
	client      *Client
	vehicles    []entity.VehicleState
	byID        map[string]int
}

func (v *View) Vehicles() []entity.VehicleState {
	return v.vehicles
}

func (v *View) Vehicle(id string) (entity.VehicleState, bool) {
	i, ok := v.byID[id]
	if !ok {
		return entity.VehicleState{}, false
	}
	return v.vehicles[i], true
}

func (v *View) check(id string) error {
	if _, ok := v.byID[id]; !ok {
		return fmt.Errorf("moss: vehicle %s is not observed", id)
	}
	return nil
}

func (v *View) LaneChangeMode(id string) (entity.LaneChangeMode, error) {
	if err := v.check(id); err != nil {
		return 0, err
	}
	if mode, ok := v.client.modes[id]; ok {
		return mode, nil
	}
	return entity.LaneChangeModeDefault, nil
}

func (v *View) SetLaneChangeMode(id string, mode entity.LaneChangeMode) error {
	if err := v.check(id); err != nil {
		return err
	}
	v.client.modes[id] = mode
	return nil
}

func (v *View) Color(id string) (entity.Color, error) {
	if err := v.check(id); err != nil {
		return entity.Color{}, err
	}
	if c, ok := v.client.colors[id]; ok {
		return c, nil
	}
	return entity.ColorDefault, nil
}

func (v *View) SetColor(id string, c entity.Color) error {
	if err := v.check(id); err != nil {
		return err
	}
	v.client.colors[id] = c
	return nil
}

// ApplyLaneChange 变道指令
// 说明：MOSS没有变道RPC，变道由其自身的车辆模型决定，指令被丢弃，首次丢弃时给出警告
func (v *View) ApplyLaneChange(id string, direction int32) error {
	if err := v.check(id); err != nil {
		return err
	}
	if !v.client.laneChangeWarned {
		log.Warnf("moss has no lane change command, lane change %+d of vehicle %s and later ones are dropped", direction, id)
		v.client.laneChangeWarned = true
	}
	log.Debugf("vehicle %s: lane change %+d dropped", id, direction)
	return nil
}

func (v *View) SetSignalState(tlID string, state string) error {
	return v.client.setSignalState(v.ctx, tlID, state)
}
