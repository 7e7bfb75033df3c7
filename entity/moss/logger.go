package moss

import "github.com/sirupsen/logrus"

// log MOSS绑定模块的日志记录器
var log = logrus.WithField("module", "moss")
