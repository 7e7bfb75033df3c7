package config

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gopkg.in/yaml.v2"
)

const (
	BackendRing = "ring" // 内置环形道路
	BackendMoss = "moss" // MOSS城市仿真器
)

// 湾区大桥场景的默认参数
const (
	defaultMaxLanes          = 24
	defaultTollArea          = 100
	defaultBoothPosition     = 120
	defaultNumTollLanes      = 20
	defaultMeanWait          = 15
	defaultFastTrackMeanWait = 3
	defaultInitStd           = 4
	defaultResampleStd       = 1
	defaultRampArea          = 80
	defaultNumRampMeters     = 14
)

// DefaultVehicleAttribute 默认车辆属性
var DefaultVehicleAttribute = VehicleAttribute{
	MaxSpeed:                 30,
	MaxAcceleration:          3,
	MaxBrakingAcceleration:   -6,
	UsualBrakingAcceleration: -4.5,
	Length:                   5,
	MinGap:                   2,
	Headway:                  1,
}

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并校验后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// Parse 解析YAML配置
// 功能：严格模式解析YAML，出现未知字段即报错
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值并校验配置的一致性
// 参数：config-原始配置对象
// 返回：运行时配置，配置非法时返回错误
// 算法说明：
// 1. 补全控制、收费站、匝道、环境等默认值
// 2. 检查后端类型与对应配置段是否存在
// 3. 检查环形道路区段长度之和
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if config.Control.Step.Interval <= 0 {
		config.Control.Step.Interval = 0.1
	}
	if config.Control.Backend == "" {
		config.Control.Backend = BackendRing
	}
	switch config.Control.Backend {
	case BackendRing:
		if config.Ring == nil {
			return nil, fmt.Errorf("config: backend %q requires ring section", BackendRing)
		}
		if err := checkRing(config.Ring); err != nil {
			return nil, err
		}
	case BackendMoss:
		if config.Moss == nil {
			return nil, fmt.Errorf("config: backend %q requires moss section", BackendMoss)
		}
		if config.Bridge == nil {
			return nil, fmt.Errorf("config: backend %q requires bridge section", BackendMoss)
		}
	default:
		return nil, fmt.Errorf("config: unknown backend %q", config.Control.Backend)
	}
	if config.Bridge != nil {
		config.Bridge.fillDefaults()
	}
	if config.Env != nil && config.Env.Horizon <= 0 {
		config.Env.Horizon = config.Control.Step.Total
	}
	return &RuntimeConfig{All: config, C: config.Control}, nil
}

func checkRing(r *Ring) error {
	if r.Length <= 0 {
		return fmt.Errorf("config: ring length must be positive, got %v", r.Length)
	}
	if r.Lanes <= 0 {
		return fmt.Errorf("config: ring lanes must be positive, got %d", r.Lanes)
	}
	if len(r.Edges) > 0 {
		total := lo.SumBy(r.Edges, func(e Edge) float64 { return e.Length })
		if math.Abs(total-r.Length) > 1e-6 {
			return fmt.Errorf("config: ring edges sum to %v, want %v", total, r.Length)
		}
	}
	for _, vt := range r.Vehicles {
		if vt.Lane < 0 || vt.Lane >= r.Lanes {
			return fmt.Errorf("config: vehicle type %s starts in lane %d of %d", vt.Type, vt.Lane, r.Lanes)
		}
	}
	return nil
}

func (b *Bridge) fillDefaults() {
	if b.MaxLanes <= 0 {
		b.MaxLanes = defaultMaxLanes
	}
	if t := b.Toll; t != nil {
		if t.NumLanes <= 0 {
			t.NumLanes = defaultNumTollLanes
		}
		if t.Area <= 0 {
			t.Area = defaultTollArea
		}
		if t.BoothPosition <= 0 {
			t.BoothPosition = defaultBoothPosition
		}
		if t.MeanWait <= 0 {
			t.MeanWait = defaultMeanWait
		}
		if t.FastTrackMeanWait <= 0 {
			t.FastTrackMeanWait = defaultFastTrackMeanWait
		}
		if t.InitStd <= 0 {
			t.InitStd = defaultInitStd
		}
		if t.ResampleStd <= 0 {
			t.ResampleStd = defaultResampleStd
		}
		if t.FastTrackLanes == nil {
			t.FastTrackLanes = []int32{6, 7, 8, 9, 10}
		}
	}
	if r := b.RampMeter; r != nil {
		if r.NumLanes <= 0 {
			r.NumLanes = defaultNumRampMeters
		}
		if r.Area <= 0 {
			r.Area = defaultRampArea
		}
	}
}
