package clock

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"git.fiblab.net/sim/syncer/v3"
)

// Register 将ClockService注册到sidecar
// 功能：使外部程序（如训练脚本）可以查询控制程序的当前时间
func (c *Clock) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		clockv1connect.ClockServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return clockv1connect.NewClockServiceHandler(c, opts...)
		},
	)
}

// Now 获取当前时间
func (c *Clock) Now(ctx context.Context, in *connect.Request[clockv1.NowRequest]) (*connect.Response[clockv1.NowResponse], error) {
	return connect.NewResponse(&clockv1.NowResponse{
		T: c.T,
	}), nil
}
