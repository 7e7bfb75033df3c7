package lanechange

import (
	"fmt"

	"github.com/tsinghua-fib-lab/flowctl/utils/config"
	"github.com/tsinghua-fib-lab/flowctl/utils/randengine"
)

const (
	KindStatic         = "static"          // 保持当前车道
	KindSumo           = "sumo"            // 交由仿真器自身的变道模型
	KindStochastic     = "stochastic"      // 按车道速度随机变道
	KindAggressive     = "aggressive"      // 低速时选择前方空间最大的车道
	KindSafeAggressive = "safe_aggressive" // 只考虑相邻车道的激进变道
)

// IController 变道控制器
// 功能：为单个车辆给出本步的目标车道
// 说明：每个受控车辆持有一个控制器实例，生命周期与仿真回合相同
type IController interface {
	// 车辆ID
	VehicleID() string
	// 本步的目标车道序号，view需实现该控制器所需的查询接口
	ChooseLane(view any) (int32, error)
}

// New 根据配置创建变道控制器
// 功能：按kind选择控制器类型，未给出的参数取默认值
// 参数：vehID-受控车辆ID，c-变道配置，generator-随机数生成器（仅stochastic使用）
// 返回：控制器实例，kind未知时返回错误
func New(vehID string, c config.LaneChange, generator *randengine.Engine) (IController, error) {
	switch c.Kind {
	case "", KindStatic:
		return NewStatic(vehID), nil
	case KindSumo:
		return NewSumo(vehID), nil
	case KindStochastic:
		p := DefaultStochasticParams()
		setIfPresent(&p.SpeedThreshold, c.SpeedThreshold)
		setIfPresent(&p.Prob, c.Prob)
		setIfPresent(&p.DxBack, c.DxBack)
		setIfPresent(&p.DxForward, c.DxForward)
		setIfPresent(&p.GapBack, c.GapBack)
		setIfPresent(&p.GapForward, c.GapForward)
		if generator == nil {
			return nil, fmt.Errorf("lanechange: %s controller of %s requires a random generator", c.Kind, vehID)
		}
		return NewStochastic(vehID, p, generator), nil
	case KindAggressive, KindSafeAggressive:
		p := DefaultAggressiveParams(c.TargetVelocity)
		if c.Kind == KindSafeAggressive {
			p = DefaultSafeAggressiveParams(c.TargetVelocity)
		}
		setIfPresent(&p.Threshold, c.Threshold)
		setIfPresent(&p.MinRearGap, c.MinRearGap)
		if p.TargetVelocity <= 0 {
			return nil, fmt.Errorf("lanechange: %s controller of %s requires a positive target velocity", c.Kind, vehID)
		}
		if c.Kind == KindSafeAggressive {
			return NewSafeAggressive(vehID, p), nil
		}
		return NewAggressive(vehID, p), nil
	default:
		return nil, fmt.Errorf("lanechange: unknown kind %q for %s", c.Kind, vehID)
	}
}

func setIfPresent(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// viewAs 将传入的环境转换为控制器所需的查询接口
func viewAs[T any](vehID string, view any) (T, error) {
	v, ok := view.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("lanechange: view %T of %s does not implement %T", view, vehID, &zero)
	}
	return v, nil
}
