// 随机数引擎，包装了golang.org/x/exp/rand，提供变道犹豫、收费等待时间等采样所需的随机数方法
package randengine

import (
	"flag"
	"math"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成，每个控制器/协调器持有独立的引擎，避免迭代顺序影响随机序列
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：使用种子与全局种子偏移量之和初始化随机数引擎
// 参数：seed-随机数种子
// 返回：随机数引擎指针
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true（非线程安全）
// 功能：伯努利采样，用于模拟驾驶员的犹豫与注意力不集中
// 参数：p-返回true的概率（0.0到1.0之间）
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Normal 正态分布采样（非线程安全）
// 参数：mean-均值，std-标准差
func (e *Engine) Normal(mean, std float64) float64 {
	return mean + std*e.NormFloat64()
}

// AbsNormal 正态分布采样后取绝对值（非线程安全）
// 功能：用于生成非负的初始等待时间
func (e *Engine) AbsNormal(mean, std float64) float64 {
	return math.Abs(e.Normal(mean, std))
}

// NonNegNormal 正态分布采样后截断到非负（非线程安全）
func (e *Engine) NonNegNormal(mean, std float64) float64 {
	return math.Max(0, e.Normal(mean, std))
}
