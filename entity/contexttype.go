package entity

import (
	"github.com/tsinghua-fib-lab/flowctl/clock"
	"github.com/tsinghua-fib-lab/flowctl/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
}
