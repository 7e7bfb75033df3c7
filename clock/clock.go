package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

// Clock 控制时钟
// 功能：记录控制循环的步数与对应的仿真时间，并以ClockService对外提供
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，控制区间[START, END)

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建时钟
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Step 前进一步并更新当前时间
func (c *Clock) Step() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// Elapsed 从起始步开始已经执行的步数
func (c *Clock) Elapsed() int32 {
	return c.InternalStep - c.START_STEP
}

// String 当前时间（HH:MM:SS）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
