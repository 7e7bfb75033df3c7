package ring

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
)

const idmTheta = 4 // IDM模型的速度指数

// followImpl 跟车模型核心实现
// 功能：智能驾驶模型(IDM)
// 参数：selfV-本车速度，targetV-目标速度，aheadV-前车速度，distance-车距，minGap-最小车距，headway-安全车头时距
// 返回：限制在[maxBrakingA, maxA]内的加速度
// 算法说明：
// 1. 距离小于等于0视为碰撞，紧急制动
// 2. 期望车距：s_star = minGap + max(0, v*headway + v*(v-v_ahead)/(2*sqrt(a*b)))
// 3. 加速度：a = maxA * (1 - (v/targetV)^4 - (s_star/distance)^2)
func (v *Vehicle) followImpl(
	selfV, targetV, aheadV, distance, minGap, headway float64,
) float64 {
	var acc float64
	if distance <= 0 {
		acc = -mathutil.INF
	} else {
		// https://en.wikipedia.org/wiki/Intelligent_driver_model
		sStar := minGap + math.Max(
			0,
			selfV*headway+selfV*(selfV-aheadV)/2/math.Sqrt(-v.attr.UsualBrakingAcceleration*v.attr.MaxAcceleration),
		)
		acc = v.attr.MaxAcceleration * (1 - math.Pow(selfV/targetV, idmTheta) - math.Pow(sStar/distance, 2))
	}
	return v.clampAcc(acc)
}

// follow 按车辆自身参数跟车
func (v *Vehicle) follow(targetV, aheadV, distance float64) float64 {
	return v.followImpl(v.v, targetV, aheadV, distance, v.attr.MinGap, v.attr.Headway)
}

// stop 在停车线前刹停
// 说明：停车时以时间步长作为预判时间，不需要跟车的安全车头时距，与停车线保持最小车距
func (v *Vehicle) stop(targetV, distance, dt float64) float64 {
	return v.followImpl(v.v, targetV, 0, distance, v.attr.MinGap, dt)
}

func (v *Vehicle) clampAcc(acc float64) float64 {
	return lo.Clamp(acc, v.attr.MaxBrakingAcceleration, v.attr.MaxAcceleration)
}
