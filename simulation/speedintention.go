package simulation

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"
)

// Breakpoint 速度意图的断点：自该时刻起每步请求的速度变化量
type Breakpoint struct {
	Timestep uint
	Delta    float64
}

// SpeedIntention 稀疏速度变化列表的阶梯函数视图
// 功能：给出任意时刻请求的速度变化量
// 说明：断点按时刻严格递增；对象本身不可变，修复时整体替换
type SpeedIntention struct {
	breakpoints []Breakpoint
}

// NewSpeedIntention 由断点时刻与速度变化量创建速度意图
// 参数：timesteps-断点时刻，deltas-对应的速度变化量
// 返回：长度不一致或时刻重复时返回错误
func NewSpeedIntention(timesteps []uint, deltas []float64) (*SpeedIntention, error) {
	if len(timesteps) != len(deltas) {
		return nil, fmt.Errorf("%d timesteps but %d deltas", len(timesteps), len(deltas))
	}
	bps := make([]Breakpoint, len(timesteps))
	for i := range timesteps {
		bps[i] = Breakpoint{Timestep: timesteps[i], Delta: deltas[i]}
	}
	return newSpeedIntention(bps)
}

// newSpeedIntention 复制并排序断点，拒绝重复时刻
func newSpeedIntention(bps []Breakpoint) (*SpeedIntention, error) {
	sorted := slices.Clone(bps)
	slices.SortStableFunc(sorted, func(a, b Breakpoint) int {
		return cmp.Compare(a.Timestep, b.Timestep)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestep == sorted[i-1].Timestep {
			return nil, fmt.Errorf("%w at timestep %d", ErrDuplicateBreakpoint, sorted[i].Timestep)
		}
	}
	return &SpeedIntention{breakpoints: sorted}, nil
}

// SpeedAt 查询指定时刻请求的速度变化量
// 功能：返回时刻不晚于t的最后一个断点的值
// 说明：早于第一个断点时返回第一个断点的值，没有断点时返回0
func (s *SpeedIntention) SpeedAt(t uint) float64 {
	if len(s.breakpoints) == 0 {
		return 0
	}
	return s.breakpoints[s.governing(t)].Delta
}

// governing 时刻t生效的断点下标，要求至少有一个断点
func (s *SpeedIntention) governing(t uint) int {
	i, found := slices.BinarySearchFunc(s.breakpoints, t, func(bp Breakpoint, t uint) int {
		return cmp.Compare(bp.Timestep, t)
	})
	if found {
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

// Len 断点数量
func (s *SpeedIntention) Len() int {
	return len(s.breakpoints)
}

// Breakpoints 断点副本，按时刻排序
func (s *SpeedIntention) Breakpoints() []Breakpoint {
	return slices.Clone(s.breakpoints)
}
