package bridge

// setWaitTime 覆盖车道剩余的红灯步数
func (t *Toll) setWaitTime(lane int32, steps float64) {
	t.waitTime[lane] = steps
}
