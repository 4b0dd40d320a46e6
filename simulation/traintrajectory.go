package simulation

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
)

const (
	// repairIterations 修复时二分缩放系数的迭代次数
	repairIterations = 32
	// rateTolerance 检查加减速能力时每步速度变化量的容差（米/秒）
	rateTolerance = 1e-6
)

// TrainTrajectory 一列车从进入顶点开始的完整轨迹
// 功能：按路由决策逐区段积分，并在构造时修复不可行的速度变化量
type TrainTrajectory struct {
	ctx      *Context
	train    entity.Train
	schedule entity.Schedule
	decision *RoutingDecision // 独占，修复时原地改写

	edges     []*EdgeTrajectory
	reached   bool // 到达计划的离开顶点
	truncated bool // 到达仿真终点
	repairs   int  // 累计改写的断点数
}

// result 一次积分的结果
type result struct {
	edges     []*EdgeTrajectory
	reached   bool
	truncated bool
	halted    bool
}

// InitialState 列车进入路网时的状态
// 功能：进入顶点为道岔时消耗一个道岔决策，进入速度不超过首个区段的速度上限
// 参数：ctx-仿真上下文，train-列车，cursor-道岔决策游标
func InitialState(ctx *Context, train entity.Train, cursor *SwitchCursor) (EdgeState, error) {
	s, err := ctx.Timetable.Schedule(train.Name)
	if err != nil {
		return EdgeState{}, err
	}
	succ := ctx.Network.Successors(s.Entry)
	if len(succ) == 0 {
		return EdgeState{}, fmt.Errorf("train %s: entry vertex %d has no outgoing edge", train.Name, s.Entry)
	}
	i, err := cursor.Next(len(succ))
	if err != nil {
		return EdgeState{}, fmt.Errorf("train %s at entry vertex %d: %w", train.Name, s.Entry, err)
	}
	edge := succ[i]
	return EdgeState{
		Edge:        edge.ID,
		Timestep:    ctx.Clock.ToStep(s.T0),
		Position:    0,
		Orientation: true,
		Speed:       lo.Clamp(s.V0, 0, train.SpeedBound(edge)),
	}, nil
}

// NewTrainTrajectory 创建列车轨迹
// 参数：ctx-仿真上下文，train-列车，decision-路由决策（所有权转移给轨迹）
// 返回：决策不属于该列车或道岔决策不足时返回错误；到达仿真终点不是错误
func NewTrainTrajectory(ctx *Context, train entity.Train, decision *RoutingDecision) (*TrainTrajectory, error) {
	if decision.Train() != train.Name {
		return nil, fmt.Errorf("%w: decision of train %s used for train %s",
			ErrInvalidDecision, decision.Train(), train.Name)
	}
	schedule, err := ctx.Timetable.Schedule(train.Name)
	if err != nil {
		return nil, err
	}
	t := &TrainTrajectory{
		ctx:      ctx,
		train:    train,
		schedule: schedule,
		decision: decision,
	}
	if err := t.MatchVelocity(); err != nil {
		return nil, err
	}
	if first := t.edges[0].Initial(); first.Speed < schedule.V0 {
		log.Warnf("train %s: entry speed %v clamped to %v on edge %s",
			train.Name, schedule.V0, first.Speed, t.edges[0].Edge().Name)
	}
	return t, nil
}

// simulate 按速度意图与道岔决策从进入顶点开始积分
// 算法说明：
// 1. 每个区段按前方制动距离内各区段的限速建立制动曲线，前方区段由道岔决策游标预取；
// 进入速度超出首个区段的制动曲线时降到曲线之下
// 2. 越过区段终点后，按交接记录进入下一区段，道岔处消耗一个决策
// 3. 到达离开顶点、无出边的顶点、仿真终点或被回调中止时结束
func (t *TrainTrajectory) simulate(intention *SpeedIntention, observe stepObserver) (result, error) {
	var r result
	cursor := t.decision.Cursor()
	state, err := InitialState(t.ctx, t.train, cursor)
	if err != nil {
		return r, err
	}
	for first := true; ; first = false {
		edge, err := t.ctx.Network.Edge(state.Edge)
		if err != nil {
			return r, err
		}
		curve := t.brakingCurve(edge, cursor)
		if first {
			state.Speed = curve.entrySpeed(state.Speed)
		}
		et := newEdgeTrajectory(t.ctx, t.train, edge, state, curve)
		et.integrate(intention, observe)
		r.edges = append(r.edges, et)
		if et.halted {
			r.halted = true
			return r, nil
		}
		if et.truncated {
			r.truncated = true
			return r, nil
		}
		entry := *et.exit
		if entry.Vertex == t.schedule.Exit {
			r.reached = true
			return r, nil
		}
		succ := t.ctx.Network.Successors(entry.Vertex)
		if len(succ) == 0 {
			return r, nil
		}
		i, err := cursor.Next(len(succ))
		if err != nil {
			return r, fmt.Errorf("train %s at vertex %d: %w", t.train.Name, entry.Vertex, err)
		}
		state = EdgeState{
			Edge:        succ[i].ID,
			Timestep:    entry.Timestep,
			Position:    0,
			Orientation: entry.Orientation,
			Speed:       entry.Speed,
		}
	}
}

// brakingCurve 建立区段上的制动曲线
// 功能：沿道岔决策预取前方区段，直到离开顶点、无出边的顶点、决策用尽，
// 或超出区段终点后以最大速度制动所需的距离
func (t *TrainTrajectory) brakingCurve(edge entity.Edge, cursor *SwitchCursor) *brakingCurve {
	dt := t.ctx.DT
	vmax := t.train.MaxSpeed
	curve := newBrakingCurve(dt, t.train.Deceleration*dt)
	reach := edge.Length + vmax*vmax/(2*t.train.Deceleration) + vmax*dt
	distance, vertex, offset := edge.Length, edge.Target, 0
	for distance < reach && vertex != t.schedule.Exit {
		succ := t.ctx.Network.Successors(vertex)
		if len(succ) == 0 {
			break
		}
		i, ok := cursor.peek(offset, len(succ))
		if !ok {
			break
		}
		if len(succ) > 1 {
			offset++
		}
		next := succ[i]
		curve.add(distance, t.train.SpeedBound(next))
		distance += next.Length
		vertex = next.Target
	}
	curve.seal()
	return curve
}

// MatchVelocity 修复速度意图并重新生成轨迹
// 功能：使每个断点的速度变化量都能被列车完整执行
// 算法说明：
// 1. 按时刻顺序处理断点，之前的断点已确定
// 2. 某步请求的速度变化量超出加减速能力，或实际变化量与请求不同时，称该步被截断；
// 列车已停车且请求减速时除外
// 3. 断点所管辖的各步都未被截断时无需修改
// 4. 否则先将其截断到加减速能力范围内，仍不可行时在[-最大减速量, 截断值]上二分查找最接近请求的可行值
// 5. 以最大减速度制动时必然可行，因此修复总能完成；修复后的决策再次修复不会改变
func (t *TrainTrajectory) MatchVelocity() error {
	for k := range t.decision.breakpoints {
		bp := t.decision.breakpoints[k]
		ok, err := t.feasible(k, bp.Delta)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		repaired, err := t.pullIn(k)
		if err != nil {
			return err
		}
		log.Debugf("train %s: breakpoint %d at %s repaired %.4f -> %.4f",
			t.train.Name, k, t.ctx.Clock.Format(float64(bp.Timestep)), bp.Delta, repaired)
		t.decision.breakpoints[k].Delta = repaired
		t.repairs++
	}
	r, err := t.simulate(t.decision.Intention(), nil)
	if err != nil {
		return err
	}
	t.edges, t.reached, t.truncated = r.edges, r.reached, r.truncated
	if t.truncated {
		log.Debugf("train %s: %v at %s", t.train.Name, ErrHorizonExceeded,
			t.ctx.Clock.Format(t.Final().Timestep))
	}
	return nil
}

// feasible 第k个断点取值为delta时，其管辖的各步是否都未被截断
// 说明：积分到第k+1个断点管辖的时刻即中止
func (t *TrainTrajectory) feasible(k int, delta float64) (bool, error) {
	intention := t.decision.withDelta(k, delta)
	ok := true
	_, err := t.simulate(intention, func(step uint, requested, applied, speed float64) bool {
		i := intention.governing(step)
		if i > k {
			return false
		}
		if i == k && t.isCut(requested, applied, speed) {
			ok = false
			return false
		}
		return true
	})
	return ok, err
}

// pullIn 求第k个断点的可行取值
// 说明：候选值在最大减速量与截断值之间，二分时只记录验证过的可行值
func (t *TrainTrajectory) pullIn(k int) (float64, error) {
	dt := t.ctx.DT
	brake := t.train.Deceleration * dt
	delta := t.decision.breakpoints[k].Delta
	bounded := lo.Clamp(delta, -brake, t.train.Acceleration*dt)
	if bounded != delta {
		ok, err := t.feasible(k, bounded)
		if err != nil || ok {
			return bounded, err
		}
	}
	candidate := func(s float64) float64 {
		return -brake + s*(bounded+brake)
	}
	low, high := 0.0, 1.0
	for range repairIterations {
		mid := (low + high) / 2
		ok, err := t.feasible(k, candidate(mid))
		if err != nil {
			return 0, err
		}
		if ok {
			low = mid
		} else {
			high = mid
		}
	}
	return candidate(low), nil
}

// isCut 本步是否被截断
// 参数：requested-请求的速度变化量，applied-实际的速度变化量，speed-步后速度
func (t *TrainTrajectory) isCut(requested, applied, speed float64) bool {
	dt := t.ctx.DT
	if requested < -t.train.Deceleration*dt-speedTolerance || requested > t.train.Acceleration*dt+speedTolerance {
		return true
	}
	if math.Abs(applied-requested) <= speedTolerance {
		return false
	}
	// 停车后继续请求减速
	return !(speed <= speedTolerance && requested < applied)
}

func (t *TrainTrajectory) Train() entity.Train {
	return t.train
}

// Decision 修复后的路由决策副本
func (t *TrainTrajectory) Decision() *RoutingDecision {
	return t.decision.Clone()
}

// EdgeTrajectories 按行驶顺序排列的区段轨迹
func (t *TrainTrajectory) EdgeTrajectories() []*EdgeTrajectory {
	return append([]*EdgeTrajectory(nil), t.edges...)
}

// Samples 全部采样点，按时间排序
func (t *TrainTrajectory) Samples() []EdgeState {
	samples := make([]EdgeState, 0, t.SampleCount())
	for _, et := range t.edges {
		samples = append(samples, et.states...)
	}
	return samples
}

func (t *TrainTrajectory) SampleCount() int {
	return lo.SumBy(t.edges, func(et *EdgeTrajectory) int {
		return et.Len()
	})
}

// Final 最后一个采样点
func (t *TrainTrajectory) Final() EdgeState {
	return t.edges[len(t.edges)-1].Final()
}

// Reached 是否到达计划的离开顶点
func (t *TrainTrajectory) Reached() bool {
	return t.reached
}

// Truncated 是否因到达仿真终点而截断
func (t *TrainTrajectory) Truncated() bool {
	return t.truncated
}

// RepairCount 修复累计改写的断点数
func (t *TrainTrajectory) RepairCount() int {
	return t.repairs
}

// CheckSpeedLimits 检查全部区段轨迹的限速
func (t *TrainTrajectory) CheckSpeedLimits() error {
	for _, et := range t.edges {
		if err := et.CheckSpeedLimits(); err != nil {
			return err
		}
	}
	return nil
}

// CheckAcceleration 检查相邻采样点间每步的速度变化量是否在[-减速度·dt, 加速度·dt]内
// 说明：越界采样点按线性插值得到，与所在步的变化率相同；时刻相同的采样点跳过
func (t *TrainTrajectory) CheckAcceleration() error {
	dt := t.ctx.DT
	low, high := -t.train.Deceleration*dt-rateTolerance, t.train.Acceleration*dt+rateTolerance
	samples := t.Samples()
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		span := b.Timestep - a.Timestep
		if span <= speedTolerance {
			continue
		}
		if rate := (b.Speed - a.Speed) / span; rate < low || rate > high {
			return fmt.Errorf("%w: train %s at step %.4f: speed change %.4f per step outside [%.4f, %.4f]",
				ErrAccelerationViolation, t.train.Name, b.Timestep, rate, low, high)
		}
	}
	return nil
}
