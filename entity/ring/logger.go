package ring

import "github.com/sirupsen/logrus"

// log 环形道路模块的日志记录器
var log = logrus.WithField("module", "ring")
