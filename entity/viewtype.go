package entity

// 变道控制器与桥区协调器对仿真器的依赖倒置
// 每类控制器只依赖其所需的最小只读查询集合

// 静态变道控制器所需的查询
type ILaneView interface {
	// 车辆当前所在车道
	Lane(id string) int32
}

// 随机变道控制器所需的查询
type IStochasticView interface {
	ILaneView

	NumLanes() int32            // 车道数
	Length() float64            // 环形道路总长
	Position(id string) float64 // 车辆在环上的位置
	Speed(id string) float64    // 车辆速度
	MaxSpeed(id string) float64 // 车辆最大速度

	// 指定车道上位于车辆前方的最近车辆（环形），不存在时ok=false
	Leader(id string, lane int32) (leader string, ok bool)
	// 指定车道上位于车辆后方的最近车辆（环形），不存在时ok=false
	Follower(id string, lane int32) (follower string, ok bool)
	// 指定车道上位于[pos-dxBack, pos+dxForward]窗口内的其他车辆（环形）
	CarsInRange(id string, lane int32, dxBack, dxForward float64) []string
}

// 激进变道控制器所需的查询
type IAggressiveView interface {
	ILaneView

	NumLanes() int32         // 车道数
	Speed(id string) float64 // 车辆速度

	// 每条车道上车辆到前车与后车的距离（环形），车道为空时为道路总长
	LeaderFollowerHeadways(id string) (headways, reverseHeadways []float64)
}

// 桥区协调器所需的查询与指令
// 指令的失败原样返回给调用者
type IBridgeEnv interface {
	// 本步观测到的全部车辆
	Vehicles() []VehicleState
	// 查询单个车辆，不在本步观测中时ok=false
	Vehicle(id string) (VehicleState, bool)

	LaneChangeMode(id string) (LaneChangeMode, error)
	SetLaneChangeMode(id string, mode LaneChangeMode) error
	Color(id string) (Color, error)
	SetColor(id string, c Color) error

	// 按方向变道（+1向左/车道序号增大，-1向右）
	ApplyLaneChange(id string, direction int32) error
	// 设置信号灯状态字符串，每个字符对应一条车道
	SetSignalState(tlID string, state string) error
}
