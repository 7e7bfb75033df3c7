package bridge

import (
	"errors"
	"sort"

	"github.com/tsinghua-fib-lab/flowctl/entity"
)

type fakeVehicle struct {
	state entity.VehicleState
	mode  entity.LaneChangeMode
	color entity.Color
}

type signalPush struct {
	tl    string
	state string
}

// fakeEnv 记录全部指令的测试环境
type fakeEnv struct {
	vehs        map[string]*fakeVehicle
	signals     []signalPush
	lcs         map[string][]int32
	modeSets    map[string]int
	colorSets   map[string]int
	failSignals bool
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		vehs:      map[string]*fakeVehicle{},
		lcs:       map[string][]int32{},
		modeSets:  map[string]int{},
		colorSets: map[string]int{},
	}
}

func (e *fakeEnv) put(id, edge string, lane int32, s, v float64) {
	if veh, ok := e.vehs[id]; ok {
		veh.state = entity.VehicleState{ID: id, Edge: edge, Lane: lane, S: s, V: v}
		return
	}
	e.vehs[id] = &fakeVehicle{
		state: entity.VehicleState{ID: id, Edge: edge, Lane: lane, S: s, V: v},
		mode:  entity.LaneChangeModeDefault,
		color: entity.ColorDefault,
	}
}

func (e *fakeEnv) Vehicles() []entity.VehicleState {
	res := make([]entity.VehicleState, 0, len(e.vehs))
	for _, v := range e.vehs {
		res = append(res, v.state)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (e *fakeEnv) Vehicle(id string) (entity.VehicleState, bool) {
	v, ok := e.vehs[id]
	if !ok {
		return entity.VehicleState{}, false
	}
	return v.state, true
}

var errNoVehicle = errors.New("no such vehicle")

func (e *fakeEnv) LaneChangeMode(id string) (entity.LaneChangeMode, error) {
	v, ok := e.vehs[id]
	if !ok {
		return 0, errNoVehicle
	}
	return v.mode, nil
}

func (e *fakeEnv) SetLaneChangeMode(id string, mode entity.LaneChangeMode) error {
	v, ok := e.vehs[id]
	if !ok {
		return errNoVehicle
	}
	v.mode = mode
	e.modeSets[id]++
	return nil
}

func (e *fakeEnv) Color(id string) (entity.Color, error) {
	v, ok := e.vehs[id]
	if !ok {
		return entity.Color{}, errNoVehicle
	}
	return v.color, nil
}

func (e *fakeEnv) SetColor(id string, c entity.Color) error {
	v, ok := e.vehs[id]
	if !ok {
		return errNoVehicle
	}
	v.color = c
	e.colorSets[id]++
	return nil
}

func (e *fakeEnv) ApplyLaneChange(id string, direction int32) error {
	e.lcs[id] = append(e.lcs[id], direction)
	return nil
}

func (e *fakeEnv) SetSignalState(tl string, state string) error {
	if e.failSignals {
		return errors.New("signal service down")
	}
	e.signals = append(e.signals, signalPush{tl: tl, state: state})
	return nil
}
