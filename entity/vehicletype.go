package entity

import "fmt"

// LaneChangeMode 车辆的变道模式（与SUMO的lane change mode位域含义一致）
type LaneChangeMode int32

const (
	// LaneChangeModeDefault 默认变道模式，允许策略性、协作性、速度性变道
	LaneChangeModeDefault LaneChangeMode = 1621
	// LaneChangeModeNoChange 禁止一切主动变道，仅保留避免碰撞的动作
	LaneChangeModeNoChange LaneChangeMode = 512
)

// AllowLaneChange 该模式下是否接受变道指令
func (m LaneChangeMode) AllowLaneChange() bool {
	return m != LaneChangeModeNoChange
}

// Color 车辆显示颜色（RGBA）
type Color [4]uint8

var (
	ColorDefault = Color{255, 255, 0, 255} // 默认颜色
	ColorToll    = Color{255, 0, 255, 0}   // 收费区内车辆的标记颜色
	ColorRamp    = Color{0, 255, 255, 0}   // 匝道控制区内车辆的标记颜色
)

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", c[0], c[1], c[2], c[3])
}

// VehicleState 车辆在某一步的观测值
// 功能：仿真器中车辆状态的只读快照，不归本模块所有
type VehicleState struct {
	ID   string  // 车辆ID
	Edge string  // 所在区段（edge）ID
	Lane int32   // 车道序号
	S    float64 // 在区段上的位置（米）
	V    float64 // 速度（米/秒）
}
