package lanechange

import "github.com/sirupsen/logrus"

// log 变道控制器模块的日志记录器
var log = logrus.WithField("module", "lanechange")
