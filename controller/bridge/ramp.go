package bridge

import (
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

// RampMeter 匝道控制器
// 功能：匝道控制区内禁止变道，通过下游区段后恢复
type RampMeter struct {
	c       config.RampMeter
	waiting *registry
}

func NewRampMeter(c config.RampMeter) *RampMeter {
	return &RampMeter{c: c, waiting: newRegistry("ramp", entity.ColorRamp)}
}

// Step 执行一步匝道控制
func (r *RampMeter) Step(env entity.IBridgeEnv, index EdgeIndex) error {
	if err := r.waiting.releaseDeparted(env, r.c.PostEdge, nil); err != nil {
		return err
	}
	for lane := int32(0); lane < r.c.NumLanes; lane++ {
		for _, o := range index.Lane(r.c.PreEdge, lane) {
			if o.S > r.c.Area && !r.waiting.has(o.ID) {
				if err := r.waiting.enter(env, o.ID, lane); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Reset 清空登记表
func (r *RampMeter) Reset() {
	r.waiting.reset()
}

// Waiting 当前登记的车辆数
func (r *RampMeter) Waiting() int {
	return r.waiting.len()
}

// IsWaiting 车辆是否在登记表中
func (r *RampMeter) IsWaiting(id string) bool {
	return r.waiting.has(id)
}
