package simulation

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
)

const (
	// speedTolerance 速度比较的容差（米/秒）
	speedTolerance = 1e-9
)

// EdgeState 区段上的一个采样点
type EdgeState struct {
	Edge        int32
	Timestep    float64 // 时刻（步），跨越区段边界后可能带小数
	Position    float64 // 沿行驶方向已走过的距离（米）
	Orientation bool    // true表示沿区段正向行驶
	Speed       float64 // 米/秒
}

// EdgeEntry 区段边界的交接记录，用于生成下一区段的初始状态
type EdgeEntry struct {
	Vertex      int32 // 驶出区段的终点，即下一区段的起点
	Timestep    float64
	Speed       float64
	Orientation bool
}

// stepObserver 每步积分的回调
// 参数：step-该步生效的整数时刻，requested-请求的速度变化量，applied-实际的速度变化量，speed-步后速度
// 返回：false时中止积分
type stepObserver func(step uint, requested, applied, speed float64) bool

// EdgeTrajectory 一列车驶过一个区段的积分结果
// 功能：以固定步长积分列车运动，直到越过区段终点或到达仿真终点
type EdgeTrajectory struct {
	ctx      *Context
	train    entity.Train
	edge     entity.Edge
	bound    float64       // 列车在本区段上的速度上限
	entryCap float64       // 进入下一区段时的速度上限
	curve    *brakingCurve // 前方限速的制动曲线，为nil时不考虑前方区段
	states   []EdgeState

	before, after EdgeState  // 最后一步积分前后的状态（after未截断）
	exit          *EdgeEntry // 越过区段终点时的交接记录
	truncated     bool       // 到达仿真终点
	halted        bool       // 被回调中止
}

// NewEdgeTrajectory 从初始状态开始积分单个区段
// 功能：不考虑下一区段的限速，适用于单独分析一个区段
// 参数：ctx-仿真上下文，train-列车，intention-速度意图，initial-初始状态
func NewEdgeTrajectory(
	ctx *Context, train entity.Train, intention *SpeedIntention, initial EdgeState,
) (*EdgeTrajectory, error) {
	edge, err := ctx.Network.Edge(initial.Edge)
	if err != nil {
		return nil, err
	}
	et := newEdgeTrajectory(ctx, train, edge, initial, nil)
	et.integrate(intention, nil)
	return et, nil
}

func newEdgeTrajectory(
	ctx *Context, train entity.Train, edge entity.Edge, initial EdgeState, curve *brakingCurve,
) *EdgeTrajectory {
	return &EdgeTrajectory{
		ctx:      ctx,
		train:    train,
		edge:     edge,
		bound:    train.SpeedBound(edge),
		entryCap: math.Min(train.MaxSpeed, curve.entryLimit()),
		curve:    curve,
		states:   []EdgeState{initial},
		before:   initial,
		after:    initial,
	}
}

// integrate 逐步积分
// 算法说明：
// 1. 请求速度 = 当前速度 + 速度意图在floor(时刻)处的值
// 2. 速度变化量限制在[-减速度·dt, 加速度·dt]内
// 3. 速度限制在[0, 速度上限]内，且不超过制动曲线允许的速度；
// 以最大减速度制动总是被允许的，因此每步的速度变化量都在加减速能力范围内
// 4. 位置 += 速度·dt，时刻 += 1
// 5. 位置越过区段长度时按线性插值计算越界时刻与速度，末点截断在区段终点
// 下一步将超出仿真终点时停止，轨迹被截断
func (et *EdgeTrajectory) integrate(intention *SpeedIntention, observe stepObserver) {
	dt := et.ctx.DT
	horizon := float64(et.ctx.NTimesteps)
	cur := et.states[0]
	for {
		if cur.Timestep+1 > horizon {
			et.truncated = true
			return
		}
		step := uint(math.Floor(cur.Timestep))
		requested := intention.SpeedAt(step)
		brake := et.train.Deceleration * dt
		dv := lo.Clamp(requested, -brake, et.train.Acceleration*dt)
		v := lo.Clamp(cur.Speed+dv, 0, et.bound)
		if et.curve != nil {
			v = et.curve.cap(cur.Position, cur.Speed, math.Max(cur.Speed-brake, 0), v)
		}
		if observe != nil && !observe(step, requested, v-cur.Speed, v) {
			et.halted = true
			return
		}
		next := EdgeState{
			Edge:        cur.Edge,
			Timestep:    cur.Timestep + 1,
			Position:    cur.Position + v*dt,
			Orientation: cur.Orientation,
			Speed:       v,
		}
		et.before, et.after = cur, next
		if next.Position > et.edge.Length {
			entry := et.EnterNextEdge((et.edge.Length - cur.Position) / (next.Position - cur.Position))
			et.states = append(et.states, EdgeState{
				Edge:        cur.Edge,
				Timestep:    entry.Timestep,
				Position:    et.edge.Length,
				Orientation: cur.Orientation,
				Speed:       entry.Speed,
			})
			et.exit = &entry
			return
		}
		et.states = append(et.states, next)
		cur = next
	}
}

// EnterNextEdge 计算越过区段终点的交接记录
// 功能：在最后一步积分前后的状态间按比例线性插值，得到越界时刻与速度
// 参数：overshootFraction-(区段长度-步前位置)/(步后位置-步前位置)，超出[0,1]时截断
// 返回：交接记录，速度不超过下一区段的上限
func (et *EdgeTrajectory) EnterNextEdge(overshootFraction float64) EdgeEntry {
	f := lo.Clamp(overshootFraction, 0, 1)
	b, a := et.before, et.after
	return EdgeEntry{
		Vertex:      et.edge.Target,
		Timestep:    b.Timestep + f*(a.Timestep-b.Timestep),
		Speed:       math.Min(b.Speed+f*(a.Speed-b.Speed), et.entryCap),
		Orientation: b.Orientation,
	}
}

// CheckSpeedLimits 检查全部采样点的速度是否在[0, min(列车最大速度, 区段限速)]内
// 返回：第一个越限的采样点，类型为*SpeedLimitError
func (et *EdgeTrajectory) CheckSpeedLimits() error {
	bound := et.train.SpeedBound(et.edge)
	for _, s := range et.states {
		if s.Speed < -speedTolerance || s.Speed > bound+speedTolerance {
			return &SpeedLimitError{
				Train:    et.train.Name,
				Edge:     et.edge.Name,
				Timestep: s.Timestep,
				Speed:    s.Speed,
				Bound:    bound,
			}
		}
	}
	return nil
}

func (et *EdgeTrajectory) Edge() entity.Edge {
	return et.edge
}

// States 采样点副本，第一个为初始状态
func (et *EdgeTrajectory) States() []EdgeState {
	return append([]EdgeState(nil), et.states...)
}

func (et *EdgeTrajectory) Len() int {
	return len(et.states)
}

func (et *EdgeTrajectory) Initial() EdgeState {
	return et.states[0]
}

func (et *EdgeTrajectory) Final() EdgeState {
	return et.states[len(et.states)-1]
}

// Exit 越过区段终点时的交接记录，未越过时返回false
func (et *EdgeTrajectory) Exit() (EdgeEntry, bool) {
	if et.exit == nil {
		return EdgeEntry{}, false
	}
	return *et.exit, true
}

// Truncated 是否因到达仿真终点而截断
func (et *EdgeTrajectory) Truncated() bool {
	return et.truncated
}

func (et *EdgeTrajectory) String() string {
	return fmt.Sprintf("EdgeTrajectory{Train=%s, Edge=%s, Samples=%d}", et.train.Name, et.edge.Name, len(et.states))
}
