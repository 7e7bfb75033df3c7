package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/flowctl/task"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	// 独立部署：不需要syncer，环形道路模式下自行推进
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 任务名
	job = flag.String("job", "job0", "the name of the whole control task")
	// 本程序监听的gRPC地址
	grpcAddr = flag.String("listen", ":51103", "gRPC listening address")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 车辆名单的缓存地址，设置为空则禁用缓存功能
	cacheDir = flag.String("cache", "data/", "input cache dir path (empty means disable cache)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "flowctl")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	c, err := config.Parse(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}

	// MOSS配置中的地址作为命令行参数的缺省值
	if m := rc.All.Moss; m != nil {
		if *syncerAddr == "" {
			*syncerAddr = m.Syncer
		}
		if m.Listen != "" {
			*grpcAddr = m.Listen
		}
	}
	sidecar := syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
	t, err := task.NewContext(*job, *cacheDir, rc, sidecar, true)
	if err != nil {
		log.Panicf("failed to create task: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := t.Run(ctx); err != nil {
		log.Errorf("task failed: %v", err)
		os.Exit(1)
	}
}
