// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
//
// 引擎总是由调用方显式创建并传递，不存在全局随机数源。
// 带Safe后缀的方法在互斥锁保护下访问底层随机数流，可以被多个协程共享；
// 但只有按固定顺序依次抽取时，结果才可复现。
package randengine

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，支持多种分布和线程安全操作
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed))}
}

// UniformInt 在闭区间[lo, hi]上均匀生成整数（非线程安全）
func (e *Engine) UniformInt(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + e.Intn(hi-lo+1)
}

// UniformFloat 在区间[lo, hi)上均匀生成浮点数（非线程安全）
func (e *Engine) UniformFloat(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Float64()
}

// IntnSafe 随机生成整数（线程安全）
// 功能：在指定范围内生成随机整数，支持多线程安全访问
// 参数：n-范围上限（不包含）
// 返回：[0, n)范围内的随机整数
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}

// Float64Safe 随机生成浮点数（线程安全）
// 功能：生成[0.0, 1.0)范围内的随机浮点数，支持多线程安全访问
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// UniformIntSafe 线程安全版本的UniformInt
func (e *Engine) UniformIntSafe(lo, hi int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.UniformInt(lo, hi)
}

// UniformFloatSafe 线程安全版本的UniformFloat
func (e *Engine) UniformFloatSafe(lo, hi float64) float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.UniformFloat(lo, hi)
}
