package task

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	personv2 "git.fiblab.net/sim/protos/v2/go/city/person/v2"
	"github.com/tsinghua-fib-lab/flowctl/controller/bridge"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/entity/moss"
	"github.com/tsinghua-fib-lab/flowctl/entity/ring"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

// backend 仿真后端
type backend interface {
	init() error
	// step 执行一步控制，返回是否需要提前结束
	step(c context.Context, dt float64) (bool, error)
	// reward 最近一次观测的平均速度
	reward() float64
}

// newBridge 按配置创建桥区控制器，未配置时返回nil
func newBridge(ctx entity.ITaskContext) (*bridge.Bridge, error) {
	rc := ctx.RuntimeConfig()
	if rc.All.Bridge == nil {
		return nil, nil
	}
	return bridge.New(*rc.All.Bridge, ctx.Clock().DT, randengine.New(rc.C.Seed))
}

// ringBackend 内置环形道路
type ringBackend struct {
	ring   *ring.Ring
	bridge *bridge.Bridge
}

func newRingBackend(ctx entity.ITaskContext, persons []*personv2.Person) (*ringBackend, error) {
	rc := ctx.RuntimeConfig()
	specs, err := ring.SpecsFromConfig(*rc.All.Ring, persons)
	if err != nil {
		return nil, err
	}
	r, err := ring.New(*rc.All.Ring, specs, rc.C.Seed)
	if err != nil {
		return nil, err
	}
	b, err := newBridge(ctx)
	if err != nil {
		return nil, err
	}
	return &ringBackend{ring: r, bridge: b}, nil
}

func (b *ringBackend) init() error {
	if err := b.ring.Reset(); err != nil {
		return err
	}
	if b.bridge != nil {
		b.bridge.Reset()
	}
	return nil
}

// step 环形道路的一步
// 说明：没有外部动作，强化学习车辆退化为IDM跟驰；发生碰撞时提前结束
func (b *ringBackend) step(_ context.Context, dt float64) (bool, error) {
	if err := b.ring.ChooseLanes(); err != nil {
		return false, err
	}
	if b.bridge != nil {
		if err := b.bridge.Step(b.ring); err != nil {
			return false, err
		}
	}
	b.ring.Update(dt)
	b.ring.Prepare()
	if b.ring.Collided() {
		log.Warn("collision on ring, stop")
		return true, nil
	}
	return false, nil
}

func (b *ringBackend) reward() float64 {
	return bridge.Reward(b.ring)
}

// mossBackend MOSS城市仿真器
type mossBackend struct {
	client     *moss.Client
	bridge     *bridge.Bridge
	personAddr string
	lastReward float64
}

func newMossBackend(ctx entity.ITaskContext, personIDs []int32, httpClient connect.HTTPClient) (*mossBackend, error) {
	rc := ctx.RuntimeConfig()
	b, err := newBridge(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("task: moss backend requires bridge section")
	}
	return &mossBackend{
		client:     moss.New(*rc.All.Moss, httpClient, personIDs),
		bridge:     b,
		personAddr: rc.All.Moss.PersonAddr,
	}, nil
}

func (b *mossBackend) init() error {
	return waitForServerReady(b.personAddr, 30, time.Second)
}

// step MOSS的一步：读取观测，执行桥区控制
func (b *mossBackend) step(c context.Context, _ float64) (bool, error) {
	view, err := b.client.View(c)
	if err != nil {
		return false, err
	}
	if err := b.bridge.Step(view); err != nil {
		return false, err
	}
	b.lastReward = bridge.Reward(view)
	return false, nil
}

func (b *mossBackend) reward() float64 {
	return b.lastReward
}
