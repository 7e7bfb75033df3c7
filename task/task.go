package task

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/flowctl/clock"
	"github.com/tsinghua-fib-lab/flowctl/entity"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/input"
)

var _ entity.ITaskContext = (*Context)(nil)

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// Context 控制任务上下文
// 功能：包含一次控制任务的所有变量和状态
// 说明：管理时钟、配置、仿真后端与sidecar
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理与syncer、其他服务的交互，为空时只能通过step单步运行
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 缓存文件夹
	cacheDir string

	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 用于初始化的输入
	initRes *input.Input
	// 仿真后端
	backend backend
}

// NewContext 创建控制任务上下文
// 参数：
//   - job: 任务名称
//   - cacheDir: 缓存目录
//   - rc: 运行时配置
//   - sidecar: sidecar实例，可以为空
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例，后端创建失败时返回错误
// 算法说明：
// 1. 创建时钟并加载车辆名单
// 2. 按配置创建环形道路或MOSS后端
// 3. 注册时钟服务并启动sidecar服务（如果需要）
func NewContext(
	job string,
	cacheDir string,
	rc *config.RuntimeConfig,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) (*Context, error) {
	ctx := &Context{
		job:            job,
		cacheDir:       cacheDir,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
	}
	ctx.clock = clock.New(rc.C.Step)

	// 下载车辆名单
	ctx.initRes = input.Init(rc.All.Input, ctx.cacheDir)

	var err error
	switch rc.C.Backend {
	case config.BackendRing:
		ctx.backend, err = newRingBackend(ctx, ctx.initRes.Persons.Persons)
	case config.BackendMoss:
		ctx.backend, err = newMossBackend(ctx, ctx.initRes.PersonIDs(), http.DefaultClient)
	default:
		err = fmt.Errorf("task: unknown backend %q", rc.C.Backend)
	}
	if err != nil {
		return nil, err
	}

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		// sidecar协程，用于提供gRPC服务
		if startSidecarServe {
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx, nil
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 重置时钟与仿真后端
func (ctx *Context) Init() error {
	ctx.clock.Init()
	log.Infof("job %s: backend=%s person=%d steps=[%d, %d) dt=%v",
		ctx.job, ctx.runtimeConfig.C.Backend, len(ctx.initRes.Persons.Persons),
		ctx.clock.START_STEP, ctx.clock.END_STEP, ctx.clock.DT,
	)
	return ctx.backend.init()
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		// wait for graceful stop
		<-ctx.sidecarCloseCh
	}
	ctx.closed.Store(true)
}
