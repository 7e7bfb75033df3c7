package lanechange

import (
	"math"
)

// fakeVeh 测试用车辆
type fakeVeh struct {
	lane  int32
	pos   float64
	speed float64
}

// fakeRing 测试用环形道路视图，实现全部查询接口
type fakeRing struct {
	numLanes int32
	length   float64
	maxSpeed float64
	vehs     map[string]fakeVeh

	// 激进控制器直接使用的间距
	headways, reverseHeadways []float64
}

func newFakeRing(numLanes int32, length float64) *fakeRing {
	return &fakeRing{numLanes: numLanes, length: length, maxSpeed: 30, vehs: map[string]fakeVeh{}}
}

func (r *fakeRing) add(id string, lane int32, pos, speed float64) *fakeRing {
	r.vehs[id] = fakeVeh{lane: lane, pos: pos, speed: speed}
	return r
}

func (r *fakeRing) Lane(id string) int32        { return r.vehs[id].lane }
func (r *fakeRing) NumLanes() int32             { return r.numLanes }
func (r *fakeRing) Length() float64             { return r.length }
func (r *fakeRing) Position(id string) float64  { return r.vehs[id].pos }
func (r *fakeRing) Speed(id string) float64     { return r.vehs[id].speed }
func (r *fakeRing) MaxSpeed(string) float64     { return r.maxSpeed }
func (r *fakeRing) LeaderFollowerHeadways(string) ([]float64, []float64) {
	return r.headways, r.reverseHeadways
}

func (r *fakeRing) nearest(id string, lane int32, ahead bool) (string, bool) {
	pos := r.vehs[id].pos
	best, bestGap := "", math.Inf(1)
	for other, v := range r.vehs {
		if other == id || v.lane != lane {
			continue
		}
		gap := wrap(v.pos-pos, r.length)
		if !ahead {
			gap = wrap(pos-v.pos, r.length)
		}
		if gap < bestGap {
			best, bestGap = other, gap
		}
	}
	return best, best != ""
}

func (r *fakeRing) Leader(id string, lane int32) (string, bool) {
	return r.nearest(id, lane, true)
}

func (r *fakeRing) Follower(id string, lane int32) (string, bool) {
	return r.nearest(id, lane, false)
}

func (r *fakeRing) CarsInRange(id string, lane int32, dxBack, dxForward float64) []string {
	pos := r.vehs[id].pos
	var res []string
	for other, v := range r.vehs {
		if v.lane != lane {
			continue
		}
		d := wrap(v.pos-(pos-dxBack), r.length)
		if d <= dxBack+dxForward {
			res = append(res, other)
		}
	}
	return res
}
