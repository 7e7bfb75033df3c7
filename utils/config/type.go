package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string   `yaml:"db"`                   // 数据库名
	Col       string   `yaml:"col"`                  // 集合名
	Cache     string   `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.pb
	OnlyCache bool     `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string   `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
	Files     []string `yaml:"files,omitempty"`      // 文件路径列表（优先级高于MongoDB）
}

func (p InputPath) GetDb() string {
	return p.DB
}

func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径，未指定时使用默认命名规则{数据库名}.{集合名}.pb
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".pb"
}

// Input 车辆名单的输入配置
// 功能：可选地从MongoDB或protobuf文件加载车辆（person）名单，为空时按车型配置生成
type Input struct {
	URI    string     `yaml:"uri,omitempty"`    // MongoDB连接字符串
	Person *InputPath `yaml:"person,omitempty"` // 车辆名单
}

// ControlStep 指定模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 控制配置
type Control struct {
	Step    ControlStep `yaml:"step"`
	Backend string      `yaml:"backend"`        // 仿真后端：ring（内置环形道路）或moss
	Seed    uint64      `yaml:"seed,omitempty"` // 随机种子
}

// VehicleAttribute 车辆属性
// 功能：IDM跟驰模型与变道安全检查所需的车辆参数
type VehicleAttribute struct {
	MaxSpeed                 float64 `yaml:"max_speed"`                  // 最大速度（米/秒）
	MaxAcceleration          float64 `yaml:"max_acceleration"`           // 最大加速度（米/秒²）
	MaxBrakingAcceleration   float64 `yaml:"max_braking_acceleration"`   // 最大制动加速度（负数）
	UsualBrakingAcceleration float64 `yaml:"usual_braking_acceleration"` // 常用制动加速度（负数）
	Length                   float64 `yaml:"length"`                     // 车长（米）
	MinGap                   float64 `yaml:"min_gap"`                    // 最小车距（米）
	Headway                  float64 `yaml:"headway"`                    // 安全车头时距（秒）
}

// LaneChange 变道控制器配置
// 功能：选择变道控制器类型并给出参数，未给出的参数使用各控制器的默认值
type LaneChange struct {
	Kind string `yaml:"kind"` // static | sumo | stochastic | aggressive | safe_aggressive

	// stochastic
	SpeedThreshold *float64 `yaml:"speed_threshold,omitempty"`
	Prob           *float64 `yaml:"prob,omitempty"`
	DxBack         *float64 `yaml:"dx_back,omitempty"`
	DxForward      *float64 `yaml:"dx_forward,omitempty"`
	GapBack        *float64 `yaml:"gap_back,omitempty"`
	GapForward     *float64 `yaml:"gap_forward,omitempty"`

	// aggressive | safe_aggressive
	TargetVelocity float64  `yaml:"target_velocity,omitempty"`
	Threshold      *float64 `yaml:"threshold,omitempty"`
	MinRearGap     *float64 `yaml:"min_rear_gap,omitempty"`
}

// VehicleType 一类车辆的配置
type VehicleType struct {
	Type         string            `yaml:"type"`                    // 车型名称，同时作为车辆ID前缀
	Count        int               `yaml:"count"`                   // 数量
	CarFollowing string            `yaml:"car_following"`           // idm | rl
	LaneChange   LaneChange        `yaml:"lane_change"`             // 变道控制器
	Lane         int32             `yaml:"lane,omitempty"`          // 初始车道
	Attribute    *VehicleAttribute `yaml:"attribute,omitempty"`     // 车辆属性，为空则采用默认属性
	InitialSpeed float64           `yaml:"initial_speed,omitempty"` // 初始速度
}

// Edge 环形道路上的一段命名区段
type Edge struct {
	ID     string  `yaml:"id"`
	Length float64 `yaml:"length"`
	// 区段末端停车线的信号灯ID，为空表示无信控
	TrafficLight string `yaml:"traffic_light,omitempty"`
}

// Ring 内置环形道路的配置
type Ring struct {
	Length     float64       `yaml:"length"`
	Lanes      int32         `yaml:"lanes"`
	SpeedLimit float64       `yaml:"speed_limit"`
	Edges      []Edge        `yaml:"edges,omitempty"` // 区段划分，长度之和必须等于Length，为空则整个环为一个区段
	Vehicles   []VehicleType `yaml:"vehicles"`
	Shuffle    bool          `yaml:"shuffle,omitempty"` // 打乱车辆初始排列顺序
}

// Moss MOSS城市仿真器的连接配置
type Moss struct {
	PersonAddr       string             `yaml:"person_addr"`        // Person服务地址
	TrafficLightAddr string             `yaml:"traffic_light_addr"` // TrafficLight服务地址
	Syncer           string             `yaml:"syncer,omitempty"`   // syncer地址
	Listen           string             `yaml:"listen,omitempty"`   // 本程序sidecar监听地址，覆盖-listen
	Edges            map[string][]int32 `yaml:"edges"`              // 区段ID -> 按车道序号排列的车道ID
}

// Toll 收费站控制配置
type Toll struct {
	PreEdge           string  `yaml:"pre_edge"`
	PostEdge          string  `yaml:"post_edge"`
	TrafficLight      string  `yaml:"traffic_light"`
	NumLanes          int32   `yaml:"num_lanes"`
	Area              float64 `yaml:"area"`                   // 进入收费区的位置阈值
	BoothPosition     float64 `yaml:"booth_position"`         // 收费亭位置阈值
	FastTrackLanes    []int32 `yaml:"fast_track_lanes"`       // 快速通道车道
	MeanWait          float64 `yaml:"mean_wait"`              // 普通车道平均等待（秒）
	FastTrackMeanWait float64 `yaml:"fast_track_mean_wait"`   // 快速通道平均等待（秒）
	InitStd           float64 `yaml:"init_std"`               // 初始等待时间标准差（秒）
	ResampleStd       float64 `yaml:"resample_std"`           // 重新采样标准差（秒）
	Disable           bool    `yaml:"disable,omitempty"`      // 关闭收费站控制
}

// RampMeter 匝道控制配置
type RampMeter struct {
	PreEdge  string  `yaml:"pre_edge"`
	PostEdge string  `yaml:"post_edge"`
	NumLanes int32   `yaml:"num_lanes"`
	Area     float64 `yaml:"area"`
	Disable  bool    `yaml:"disable,omitempty"`
}

// LaneRule 在指定区段车道上强制变道，使车辆保持在正确路线上
type LaneRule struct {
	Edge      string `yaml:"edge"`
	Lane      int32  `yaml:"lane"`
	Direction int32  `yaml:"direction"`
}

// Bridge 桥区（收费站+匝道）控制配置
type Bridge struct {
	MaxLanes  int32      `yaml:"max_lanes"`
	Toll      *Toll      `yaml:"toll,omitempty"`
	RampMeter *RampMeter `yaml:"ramp_meter,omitempty"`
	LaneRules []LaneRule `yaml:"lane_rules,omitempty"`
}

// Env 强化学习环境配置
type Env struct {
	TargetVelocity float64 `yaml:"target_velocity"`
	Horizon        int32   `yaml:"horizon"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input,omitempty"`
	Control Control `yaml:"control"`
	Ring    *Ring   `yaml:"ring,omitempty"`
	Moss    *Moss   `yaml:"moss,omitempty"`
	Bridge  *Bridge `yaml:"bridge,omitempty"`
	Env     *Env    `yaml:"env,omitempty"`
}
