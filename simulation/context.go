package simulation

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/clock"
	"github.com/tsinghua-fib-lab/railtraj/entity"
)

// Context 一次仿真的只读常量
// 功能：由路网与时刻表一次性推导，被所有轨迹共享
type Context struct {
	Network   entity.INetwork
	Timetable entity.ITimetable
	Clock     *clock.Clock

	DT            float64 // 每步时长（秒）
	NTimesteps    uint    // 仿真步数上限
	MaxTrainSpeed float64 // 全部列车的最大速度
	ShortestEdge  float64 // 最短区段长度
	NSwitchVars   int     // 道岔（出边数大于1的顶点）数量
}

// NewContext 创建仿真上下文，仿真步数由时刻表最晚时间推导
// 参数：net-路网，tt-时刻表，dt-每步时长（秒）
func NewContext(net entity.INetwork, tt entity.ITimetable, dt float64) (*Context, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("timestep duration must be positive, got %v", dt)
	}
	return NewContextWithClock(net, tt, clock.NewForHorizon(dt, tt.MaxTime()))
}

// NewContextWithClock 使用给定时钟创建仿真上下文
func NewContextWithClock(net entity.INetwork, tt entity.ITimetable, clk *clock.Clock) (*Context, error) {
	if clk.DT <= 0 {
		return nil, fmt.Errorf("timestep duration must be positive, got %v", clk.DT)
	}
	edges := net.Edges()
	if len(edges) == 0 {
		return nil, fmt.Errorf("network has no edges")
	}
	trains := tt.Trains()
	if len(trains) == 0 {
		return nil, fmt.Errorf("timetable has no trains")
	}
	ctx := &Context{
		Network:    net,
		Timetable:  tt,
		Clock:      clk,
		DT:         clk.DT,
		NTimesteps: clk.Horizon(),
		MaxTrainSpeed: lo.MaxBy(trains, func(a, b entity.Train) bool {
			return a.MaxSpeed > b.MaxSpeed
		}).MaxSpeed,
		ShortestEdge: lo.MinBy(edges, func(a, b entity.Edge) bool {
			return a.Length < b.Length
		}).Length,
		NSwitchVars: lo.CountBy(net.Vertices(), func(v entity.Vertex) bool {
			return len(net.Successors(v.ID)) > 1
		}),
	}
	log.Infof("context: dt=%vs horizon=%d steps, max train speed %v, shortest edge %v, %d switches",
		ctx.DT, ctx.NTimesteps, ctx.MaxTrainSpeed, ctx.ShortestEdge, ctx.NSwitchVars)
	return ctx, nil
}

// ActiveTrains 在仿真区间内进入路网的列车，保持时刻表中的顺序
func (ctx *Context) ActiveTrains() []entity.Train {
	return lo.Filter(ctx.Timetable.Trains(), func(t entity.Train, _ int) bool {
		s, err := ctx.Timetable.Schedule(t.Name)
		if err != nil {
			return false
		}
		return ctx.Clock.ToStep(s.T0) < float64(ctx.NTimesteps)
	})
}
