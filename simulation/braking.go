package simulation

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
)

const (
	// capIterations 求制动曲线下最大速度时的二分迭代次数
	capIterations = 40
)

// limitPoint 前方的限速变化点
type limitPoint struct {
	distance float64 // 距当前区段起点的距离（米）
	limit    float64 // 越过该点后的速度上限（米/秒）
}

// brakingCurve 当前区段的制动曲线
// 功能：判断列车从某一状态出发、此后每步以最大减速度制动时，
// 越过前方每个限速变化点的速度是否都不超过该点之后的上限
// 说明：越界速度与积分时一样按线性插值计算，越界后从变化点重新开始整步积分，
// 因此“以最大减速度制动”始终是被制动曲线允许的
type brakingCurve struct {
	dt     float64
	brake  float64 // 每步最大速度减量
	points []limitPoint
	floor  []float64 // floor[j]为points[j:]中的最小上限
}

func newBrakingCurve(dt, brake float64) *brakingCurve {
	return &brakingCurve{dt: dt, brake: brake}
}

// add 追加限速变化点，distance须递增
func (c *brakingCurve) add(distance, limit float64) {
	c.points = append(c.points, limitPoint{distance: distance, limit: limit})
}

// seal 计算后缀最小上限
func (c *brakingCurve) seal() {
	c.floor = make([]float64, len(c.points))
	m := mathutil.INF
	for j := len(c.points) - 1; j >= 0; j-- {
		m = math.Min(m, c.points[j].limit)
		c.floor[j] = m
	}
}

// entryLimit 驶出当前区段时的速度上限，前方没有区段时为无穷大
func (c *brakingCurve) entryLimit() float64 {
	if c == nil || len(c.points) == 0 {
		return mathutil.INF
	}
	return c.points[0].limit
}

// admits 判断本步结束速度为next时，此后以最大减速度制动能否满足前方所有限速
// 参数：position-步前位置，speed-步前速度，next-步后速度
func (c *brakingCurve) admits(position, speed, next float64) bool {
	for j := 0; j < len(c.points); {
		if math.Max(speed, next) <= c.floor[j]+speedTolerance {
			return true
		}
		p := c.points[j]
		after := position + next*c.dt
		if after > p.distance {
			f := (p.distance - position) / (after - position)
			crossing := speed + f*(next-speed)
			if crossing > p.limit+speedTolerance {
				return false
			}
			position, speed = p.distance, crossing
			j++
		} else {
			if next <= 0 {
				return true
			}
			position, speed = after, next
		}
		next = math.Max(speed-c.brake, 0)
	}
	return true
}

// cap 在[low, high]中找出制动曲线允许的最大步后速度
// 说明：调用方保证low（以最大减速度制动的结果）是允许的
func (c *brakingCurve) cap(position, speed, low, high float64) float64 {
	if high <= low || c.admits(position, speed, high) {
		return high
	}
	for range capIterations {
		mid := (low + high) / 2
		if c.admits(position, speed, mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// entrySpeed 区段起点处制动曲线允许的最大速度，不超过speed
func (c *brakingCurve) entrySpeed(speed float64) float64 {
	ok := func(v float64) bool {
		return c.admits(0, v, math.Max(v-c.brake, 0))
	}
	if ok(speed) {
		return speed
	}
	low, high := 0.0, speed
	for range capIterations {
		mid := (low + high) / 2
		if ok(mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}
