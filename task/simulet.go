package task

import (
	"context"
	"flag"
)

const (
	SelfName = "flowctl" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并定期输出心跳日志
func (ctx *Context) prepare() {
	ctx.clock.Step()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) reward=%.3f",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.backend.reward(),
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：由后端执行变道控制、桥区控制与（环形道路的）仿真推进
// 返回：是否需要提前结束，后端错误
func (ctx *Context) update(c context.Context) (bool, error) {
	return ctx.backend.step(c, ctx.clock.DT)
}

// step 单步运行，不经过sidecar
func (ctx *Context) step(c context.Context) (bool, error) {
	ctx.prepare()
	return ctx.update(c)
}

// stepper 与syncer锁步推进的接口，由sidecar实现
type stepper interface {
	Step(close bool) bool
	NotifyStepReady()
}

// Run 运行
// 功能：与syncer锁步运行到结束步，或后端要求提前结束，或c被取消
func (ctx *Context) Run(c context.Context) error {
	// 初始化
	if err := ctx.Init(); err != nil {
		return err
	}
	defer ctx.Close()
	return ctx.run(c, ctx.sidecar)
}

func (ctx *Context) run(c context.Context, s stepper) error {
	// init syncer
	s.Step(false)
	for {
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		s.NotifyStepReady()
		done, err := ctx.update(c)
		if err != nil {
			log.Errorf("step %d: update failed: %v", ctx.clock.InternalStep, err)
			return err
		}
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		if err := c.Err(); err != nil {
			log.Warnf("step %d: stopped: %v", ctx.clock.InternalStep, err)
			done = true
		}
		last := done || ctx.clock.Done()
		close := s.Step(last)
		if close || last || ctx.closed.Load() {
			break
		}
	}
	log.Infof("control complete at step %d", ctx.clock.InternalStep)
	return nil
}
