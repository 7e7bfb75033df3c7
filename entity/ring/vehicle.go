package ring

import (
	"fmt"

	"github.com/tsinghua-fib-lab/flowctl/controller/lanechange"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

const (
	CarFollowingIDM = "idm" // IDM跟驰
	CarFollowingRL  = "rl"  // 由强化学习策略给出加速度
)

// VehicleSpec 车辆初始化参数
type VehicleSpec struct {
	ID           string
	Type         string
	Attr         config.VehicleAttribute
	CarFollowing string
	LaneChange   config.LaneChange
	Lane         int32
	InitialSpeed float64
}

// Vehicle 环形道路上的车辆
type Vehicle struct {
	spec       VehicleSpec
	attr       config.VehicleAttribute
	controller lanechange.IController
	node       *vehicleNode

	lane  int32   // 所在车道
	s     float64 // 车头位置，[0, length)
	v     float64 // 速度
	mode  entity.LaneChangeMode
	color entity.Color

	// 本步动作
	acc      float64
	rlAcc    float64
	hasRLAcc bool
	lcTarget int32 // 目标车道，等于lane表示不变道
}

func newVehicle(spec VehicleSpec) *Vehicle {
	v := &Vehicle{
		spec: spec,
		attr: spec.Attr,
	}
	v.node = &vehicleNode{Value: v}
	return v
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle{ID:%s, Lane:%d, S:%.2f, V:%.2f}", v.spec.ID, v.lane, v.s, v.v)
}

func (v *Vehicle) ID() string {
	return v.spec.ID
}

func (v *Vehicle) IsRL() bool {
	return v.spec.CarFollowing == CarFollowingRL
}

// V 速度（链表元素接口）
func (v *Vehicle) V() float64 {
	return v.v
}

// Length 车长（链表元素接口）
func (v *Vehicle) Length() float64 {
	return v.attr.Length
}

// reset 回到初始状态
func (v *Vehicle) reset(s float64) {
	v.lane = v.spec.Lane
	v.s = s
	v.v = v.spec.InitialSpeed
	v.mode = entity.LaneChangeModeDefault
	v.color = entity.ColorDefault
	v.node.S = s
	v.clearAction()
}

func (v *Vehicle) clearAction() {
	v.acc = 0
	v.rlAcc = 0
	v.hasRLAcc = false
	v.lcTarget = v.lane
}
