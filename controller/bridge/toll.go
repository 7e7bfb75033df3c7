package bridge

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

const (
	SignalGreen = 'G'
	SignalRed   = 'r'
)

// Toll 收费站控制器
// 功能：模拟收费亭对车辆的拦截
// 说明：每条收费车道是一个状态机 绿灯 -> 红灯（倒计时） -> 绿灯，倒计时以仿真步为单位
type Toll struct {
	c         config.Toll
	dt        float64
	generator *randengine.Engine

	waiting   *registry
	waitTime  []float64      // 每条车道剩余的红灯步数
	fastTrack map[int32]bool // 快速通道车道
	state     string         // 上一次下发的信号灯状态
}

// NewToll 创建收费站控制器
// 参数：c-收费站配置（已补全默认值），dt-仿真步长（秒），generator-随机数生成器
// 说明：每条车道的初始等待步数为|N(mean/dt, initStd/dt)|
func NewToll(c config.Toll, dt float64, generator *randengine.Engine) *Toll {
	t := &Toll{
		c:         c,
		dt:        dt,
		generator: generator,
		waiting:   newRegistry("toll", entity.ColorToll),
		waitTime:  make([]float64, c.NumLanes),
		fastTrack: lo.SliceToMap(c.FastTrackLanes, func(l int32) (int32, bool) { return l, true }),
	}
	t.initWaitTime()
	return t
}

func (t *Toll) initWaitTime() {
	for i := range t.waitTime {
		t.waitTime[i] = t.generator.AbsNormal(t.c.MeanWait/t.dt, t.c.InitStd/t.dt)
	}
}

// Reset 开始新的一轮
// 功能：清空登记表，重新采样初始等待步数，并清除已下发状态使下一步必然重新下发
func (t *Toll) Reset() {
	t.waiting.reset()
	t.initWaitTime()
	t.state = ""
}

// sampleWaitTime 为车道采样新的等待步数
func (t *Toll) sampleWaitTime(lane int32) float64 {
	mean := t.c.MeanWait
	if t.fastTrack[lane] {
		mean = t.c.FastTrackMeanWait
	}
	return t.generator.NonNegNormal(mean/t.dt, t.c.ResampleStd/t.dt)
}

// Step 执行一步收费站控制
// 功能：释放离开的车辆、接管新到达的车辆、计算并下发信号灯状态
// 参数：env-仿真环境，index-本步的区段索引
// 返回：仿真环境指令失败时返回错误
// 算法说明：
// 1. 已到达下游区段的车辆恢复原始状态并移出登记表，其所在车道重新采样等待时间
// 2. 上游区段越过Area的未登记车辆被接管，车道空闲（等待时间<=0）时采样新的等待时间
// 3. 已登记且越过收费亭的车辆所在车道：等待时间<=0为绿灯，否则为红灯并倒计时一步（每车道每步一次）
// 4. 信号灯状态与上一步不同时下发
func (t *Toll) Step(env entity.IBridgeEnv, index EdgeIndex) error {
	if err := t.waiting.releaseDeparted(env, t.c.PostEdge, func(saved savedState) {
		if saved.lane >= 0 && saved.lane < t.c.NumLanes {
			t.waitTime[saved.lane] = t.sampleWaitTime(saved.lane)
		}
	}); err != nil {
		return err
	}

	state := []byte(strings.Repeat(string(SignalGreen), int(t.c.NumLanes)))
	for lane := int32(0); lane < t.c.NumLanes; lane++ {
		atBooth := false
		for _, o := range index.Lane(t.c.PreEdge, lane) {
			if o.S <= t.c.Area {
				continue
			}
			if !t.waiting.has(o.ID) {
				if err := t.waiting.enter(env, o.ID, lane); err != nil {
					return err
				}
				if t.waitTime[lane] <= 0 {
					t.waitTime[lane] = t.sampleWaitTime(lane)
				}
			} else if o.S > t.c.BoothPosition {
				atBooth = true
			}
		}
		if !atBooth {
			continue
		}
		if t.waitTime[lane] <= 0 {
			state[lane] = SignalGreen
		} else {
			state[lane] = SignalRed
			t.waitTime[lane]--
		}
	}

	if s := string(state); s != t.state {
		if err := env.SetSignalState(t.c.TrafficLight, s); err != nil {
			return fmt.Errorf("toll: set signal state of %s: %w", t.c.TrafficLight, err)
		}
		log.Debugf("toll: signal %s -> %s", t.c.TrafficLight, s)
		t.state = s
	}
	return nil
}

// Waiting 当前登记的车辆数
func (t *Toll) Waiting() int {
	return t.waiting.len()
}

// IsWaiting 车辆是否在登记表中
func (t *Toll) IsWaiting(id string) bool {
	return t.waiting.has(id)
}

// State 上一次下发的信号灯状态
func (t *Toll) State() string {
	return t.state
}

// WaitTime 车道剩余的红灯步数
func (t *Toll) WaitTime(lane int32) float64 {
	return t.waitTime[lane]
}
