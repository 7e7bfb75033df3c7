package bridge

import "github.com/sirupsen/logrus"

// log 桥区控制模块的日志记录器
var log = logrus.WithField("module", "bridge")
