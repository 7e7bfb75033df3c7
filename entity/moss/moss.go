// MOSS城市仿真器绑定：通过Connect RPC读取车辆观测并下发信号灯状态
package moss

import (
	"context"
	"fmt"
	"strconv"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	personv2connect "git.fiblab.net/sim/protos/v2/go/city/person/v2/personv2connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

// signalHoldDuration 下发的单相位信号灯程序的持续时间（秒），直到下一次下发前保持不变
const signalHoldDuration = 3600

// laneRef 车道所在区段与车道序号
type laneRef struct {
	edge  string
	index int32
}

// Client MOSS绑定
// 功能：将MOSS的Person/TrafficLight服务适配为桥区控制器所需的仿真环境
// 说明：MOSS没有变道模式与车辆颜色的概念，由本地按车辆保存
type Client struct {
	person       personv2connect.PersonServiceClient
	trafficLight mapv2connect.TrafficLightServiceClient

	lanes     map[int32]laneRef // 车道ID -> 区段与车道序号
	personIDs []int32           // 只观测这些车辆，为空则观测全部

	modes  map[string]entity.LaneChangeMode
	colors map[string]entity.Color

	laneChangeWarned bool
}

// New 创建MOSS绑定
// 参数：c-MOSS连接配置，httpClient-HTTP客户端，personIDs-受控车辆ID（为空表示全部车辆）
func New(c config.Moss, httpClient connect.HTTPClient, personIDs []int32) *Client {
	lanes := make(map[int32]laneRef)
	for edge, ids := range c.Edges {
		for i, id := range ids {
			lanes[id] = laneRef{edge: edge, index: int32(i)}
		}
	}
	return &Client{
		person:       personv2connect.NewPersonServiceClient(httpClient, c.PersonAddr),
		trafficLight: mapv2connect.NewTrafficLightServiceClient(httpClient, c.TrafficLightAddr),
		lanes:        lanes,
		personIDs:    personIDs,
		modes:        make(map[string]entity.LaneChangeMode),
		colors:       make(map[string]entity.Color),
	}
}

// View 获取本步观测
// 功能：查询所有行驶中的车辆，转换为区段/车道/位置表示
// 参数：ctx-本步的上下文，后续指令沿用该上下文
// 返回：实现桥区控制器接口的观测，RPC错误原样返回
// 说明：不在区段表中的车道对应的区段为空字符串
func (c *Client) View(ctx context.Context) (*View, error) {
	res, err := c.person.GetPersons(ctx, connect.NewRequest(&personv2.GetPersonsRequest{
		PersonIds:       c.personIDs,
		ExcludeStatuses: []personv2.Status{personv2.Status_STATUS_SLEEP},
	}))
	if err != nil {
		return nil, err
	}
	v := &View{
		ctx:    ctx,
		client: c,
		byID:   make(map[string]int),
	}
	for _, p := range res.Msg.Persons {
		m := p.Motion
		if m == nil || m.Status != personv2.Status_STATUS_DRIVING {
			continue
		}
		pos := m.Position.GetLanePosition()
		if pos == nil {
			continue
		}
		state := entity.VehicleState{
			ID: strconv.Itoa(int(m.Id)),
			S:  pos.S,
			V:  m.V,
		}
		if ref, ok := c.lanes[pos.LaneId]; ok {
			state.Edge = ref.edge
			state.Lane = ref.index
		}
		v.byID[state.ID] = len(v.vehicles)
		v.vehicles = append(v.vehicles, state)
	}
	log.Debugf("observed %d driving vehicles", len(v.vehicles))
	return v, nil
}

// setSignalState 下发单相位信号灯程序
func (c *Client) setSignalState(ctx context.Context, tlID string, state string) error {
	junctionID, err := strconv.ParseInt(tlID, 10, 32)
	if err != nil {
		return fmt.Errorf("moss: traffic light id %q is not a junction id: %w", tlID, err)
	}
	states := lo.Map([]byte(state), func(b byte, _ int) mapv2.LightState { return toLightState(b) })
	_, err = c.trafficLight.SetTrafficLight(ctx, connect.NewRequest(&mapv2.SetTrafficLightRequest{
		TrafficLight: &mapv2.TrafficLight{
			JunctionId: int32(junctionID),
			Phases: []*mapv2.Phase{{
				Duration: signalHoldDuration,
				States:   states,
			}},
		},
		PhaseIndex:    0,
		TimeRemaining: signalHoldDuration,
	}))
	return err
}

// toLightState 信号灯状态字符转换
func toLightState(b byte) mapv2.LightState {
	switch b {
	case 'G', 'g':
		return mapv2.LightState_LIGHT_STATE_GREEN
	case 'y', 'Y':
		return mapv2.LightState_LIGHT_STATE_YELLOW
	default:
		return mapv2.LightState_LIGHT_STATE_RED
	}
}
