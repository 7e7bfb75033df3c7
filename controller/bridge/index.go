package bridge

import (
	"fmt"

	"github.com/tsinghua-fib-lab/flowctl/entity"
)

// Occupant 某车道上的一辆车
type Occupant struct {
	ID string
	S  float64
}

// EdgeIndex 区段 -> 车道 -> 车辆列表
// 功能：每步由全部观测车辆构建，车道内按观测顺序排列
type EdgeIndex map[string][][]Occupant

// BuildEdgeIndex 构建区段索引
// 参数：vehicles-本步观测到的车辆，maxLanes-每个区段的最大车道数
// 返回：区段索引，车道序号越界时返回错误
func BuildEdgeIndex(vehicles []entity.VehicleState, maxLanes int32) (EdgeIndex, error) {
	index := make(EdgeIndex)
	for _, v := range vehicles {
		if v.Lane < 0 || v.Lane >= maxLanes {
			return nil, fmt.Errorf("bridge: vehicle %s on edge %s lane %d exceeds max lanes %d", v.ID, v.Edge, v.Lane, maxLanes)
		}
		lanes, ok := index[v.Edge]
		if !ok {
			lanes = make([][]Occupant, maxLanes)
			index[v.Edge] = lanes
		}
		lanes[v.Lane] = append(lanes[v.Lane], Occupant{ID: v.ID, S: v.S})
	}
	return index, nil
}

// Lane 获取区段指定车道上的车辆，不存在时返回nil
func (x EdgeIndex) Lane(edge string, lane int32) []Occupant {
	lanes, ok := x[edge]
	if !ok || lane < 0 || int(lane) >= len(lanes) {
		return nil
	}
	return lanes[lane]
}
