package simulation

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
	"github.com/tsinghua-fib-lab/railtraj/utils/randengine"
	"golang.org/x/exp/slices"
)

const (
	// MaxDelta 速度变化量的取值上限（绝对值）
	MaxDelta = 50.0
)

// SwitchDirection 道岔决策，取值[0,1)
// 在有n条出边的道岔处选择第floor(d*n)条出边，因此对任意道岔都是均匀选择
type SwitchDirection float64

// Pick 在n条出边中选择一条，返回下标
func (d SwitchDirection) Pick(n int) int {
	return lo.Clamp(int(math.Floor(float64(d)*float64(n))), 0, n-1)
}

// RoutingDecision 一列车的完整计划：速度意图断点与道岔决策序列
// 功能：断点数量与道岔决策数量在构造后固定；修复只改写断点的速度变化量
type RoutingDecision struct {
	train       string
	breakpoints []Breakpoint // 按时刻排序
	switches    []SwitchDirection
}

// NewRoutingDecision 由外部给定的断点与道岔决策创建路由决策
// 返回：断点时刻为0或重复、速度变化量超出[-50,50]、道岔决策超出[0,1)时返回错误
func NewRoutingDecision(
	train string, timesteps []uint, deltas []float64, switches []SwitchDirection,
) (*RoutingDecision, error) {
	intention, err := NewSpeedIntention(timesteps, deltas)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", train, err)
	}
	for _, bp := range intention.breakpoints {
		if bp.Timestep < 1 {
			return nil, fmt.Errorf("%w: train %s breakpoint at timestep 0, timesteps start at 1",
				ErrInvalidDecision, train)
		}
		if math.Abs(bp.Delta) > MaxDelta || math.IsNaN(bp.Delta) {
			return nil, fmt.Errorf("%w: train %s delta %v at timestep %d outside [-%v, %v]",
				ErrInvalidDecision, train, bp.Delta, bp.Timestep, MaxDelta, MaxDelta)
		}
	}
	for i, s := range switches {
		if s < 0 || s >= 1 {
			return nil, fmt.Errorf("%w: train %s switch decision %d is %v, outside [0, 1)",
				ErrInvalidDecision, train, i, s)
		}
	}
	return &RoutingDecision{
		train:       train,
		breakpoints: intention.breakpoints,
		switches:    slices.Clone(switches),
	}, nil
}

// NewRandomRoutingDecision 随机生成路由决策
// 功能：从调用方持有的随机数流中依次抽取断点时刻、速度变化量与道岔决策
// 参数：e-随机数引擎，nTargets-断点数，nSwitches-道岔决策数，horizon-仿真步数，train-列车
// 返回：断点数超过仿真步数时返回错误
// 算法说明：
// 1. 断点时刻在[1, horizon]上均匀抽取，重复则重抽
// 2. 速度变化量在[-50, 50]上均匀抽取
// 3. 道岔决策在[0, 1)上均匀抽取
func NewRandomRoutingDecision(
	e *randengine.Engine, nTargets, nSwitches int, horizon uint, train entity.Train,
) (*RoutingDecision, error) {
	if nTargets < 0 || nSwitches < 0 {
		return nil, fmt.Errorf("train %s: negative decision count", train.Name)
	}
	if uint(nTargets) > horizon {
		return nil, fmt.Errorf("train %s: %d breakpoints do not fit into %d timesteps", train.Name, nTargets, horizon)
	}
	used := make(map[uint]struct{}, nTargets)
	timesteps := make([]uint, 0, nTargets)
	for len(timesteps) < nTargets {
		t := uint(e.UniformIntSafe(1, int(horizon)))
		if _, ok := used[t]; ok {
			continue
		}
		used[t] = struct{}{}
		timesteps = append(timesteps, t)
	}
	deltas := make([]float64, nTargets)
	for i := range deltas {
		deltas[i] = e.UniformFloatSafe(-MaxDelta, MaxDelta)
	}
	switches := make([]SwitchDirection, nSwitches)
	for i := range switches {
		switches[i] = SwitchDirection(e.Float64Safe())
	}
	return NewRoutingDecision(train.Name, timesteps, deltas, switches)
}

// Train 决策所属列车名
func (d *RoutingDecision) Train() string {
	return d.train
}

// Intention 当前断点的速度意图快照
func (d *RoutingDecision) Intention() *SpeedIntention {
	return &SpeedIntention{breakpoints: slices.Clone(d.breakpoints)}
}

// Breakpoints 断点副本，按时刻排序
func (d *RoutingDecision) Breakpoints() []Breakpoint {
	return slices.Clone(d.breakpoints)
}

// Switches 道岔决策副本
func (d *RoutingDecision) Switches() []SwitchDirection {
	return slices.Clone(d.switches)
}

// Cursor 创建从第一个道岔决策开始的游标
func (d *RoutingDecision) Cursor() *SwitchCursor {
	return &SwitchCursor{switches: d.switches}
}

// Clone 深拷贝
func (d *RoutingDecision) Clone() *RoutingDecision {
	return &RoutingDecision{
		train:       d.train,
		breakpoints: slices.Clone(d.breakpoints),
		switches:    slices.Clone(d.switches),
	}
}

// withDelta 替换第i个断点速度变化量后的速度意图，不修改决策本身
func (d *RoutingDecision) withDelta(i int, delta float64) *SpeedIntention {
	bps := slices.Clone(d.breakpoints)
	bps[i].Delta = delta
	return &SpeedIntention{breakpoints: bps}
}

// SwitchCursor 道岔决策游标
// 功能：沿路径依次消耗道岔决策，每次到达道岔消耗一个
type SwitchCursor struct {
	switches []SwitchDirection
	next     int
}

// Next 在有n条出边的顶点处选择出边
// 功能：n大于1时消耗一个决策；n不大于1时不消耗，返回0
// 返回：出边下标；道岔处已无决策时返回ErrSwitchDecisionsExhausted
func (c *SwitchCursor) Next(n int) (int, error) {
	if n <= 1 {
		return 0, nil
	}
	if c.next >= len(c.switches) {
		return 0, fmt.Errorf("%w after %d decisions", ErrSwitchDecisionsExhausted, c.next)
	}
	d := c.switches[c.next]
	c.next++
	return d.Pick(n), nil
}

// Peek 查看下一次Next(n)的结果但不消耗，已无决策时返回false
func (c *SwitchCursor) Peek(n int) (int, bool) {
	return c.peek(0, n)
}

// peek 查看跳过offset个决策后在有n条出边的顶点处的选择
func (c *SwitchCursor) peek(offset, n int) (int, bool) {
	if n <= 1 {
		return 0, true
	}
	if c.next+offset >= len(c.switches) {
		return 0, false
	}
	return c.switches[c.next+offset].Pick(n), true
}

// Consumed 已消耗的决策数
func (c *SwitchCursor) Consumed() int {
	return c.next
}
