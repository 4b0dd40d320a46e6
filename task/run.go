package task

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/simulation"
)

// Summary 一次运行的统计
type Summary struct {
	Trains    int // 列车数
	Samples   int // 采样点数
	Repairs   int // 修复的断点数
	Reached   int // 到达计划离开顶点的列车数
	Truncated int // 因仿真终点而截断的列车数
}

// Run 运行
// 功能：生成路由决策与轨迹，按配置执行限速检查与CSV导出
// 返回：生成的轨迹集合与统计
// 算法说明：
// 1. 按时刻表顺序为每列活跃列车随机生成路由决策
// 2. 并行生成轨迹，构造过程中修复不可行的速度意图
// 3. 配置了validate时检查全部采样点的限速与加减速能力
// 4. 配置了output.csv时导出全部采样点
func (t *Context) Run() (*simulation.TrainTrajectorySet, Summary, error) {
	c := t.runtimeConfig.C
	decisions, err := simulation.NewRandomRoutingDecisionSet(t.sim, t.engine, c.Targets)
	if err != nil {
		return nil, Summary{}, err
	}
	log.Infof("generated %d routing decisions with %d breakpoints and %d switch decisions each",
		decisions.Size(), c.Targets, t.sim.NSwitchVars)

	set, err := simulation.NewTrainTrajectorySet(t.sim, decisions)
	if err != nil {
		return nil, Summary{}, err
	}
	if c.Validate {
		if err := set.CheckSpeedLimits(); err != nil {
			return nil, Summary{}, err
		}
		if err := set.CheckAcceleration(); err != nil {
			return nil, Summary{}, err
		}
		log.Info("speed limits and acceleration validated")
	}
	if path := t.runtimeConfig.All.Output.CSV; path != "" {
		if err := set.ExportCSV(path); err != nil {
			return nil, Summary{}, err
		}
	}

	summary := summarize(set)
	for _, name := range set.Trains() {
		tr, _ := set.Get(name)
		final := tr.Final()
		log.Debugf("train %s: %d edges, last sample at %s, reached=%v",
			name, len(tr.EdgeTrajectories()), t.clock.Format(final.Timestep), tr.Reached())
	}
	log.Infof("engine complete: %d trains, %d samples, %d repairs, %d reached, %d truncated",
		summary.Trains, summary.Samples, summary.Repairs, summary.Reached, summary.Truncated)
	return set, summary, nil
}

func summarize(set *simulation.TrainTrajectorySet) Summary {
	trajectories := lo.FilterMap(set.Trains(), func(name string, _ int) (*simulation.TrainTrajectory, bool) {
		return set.Get(name)
	})
	return Summary{
		Trains:  set.Size(),
		Samples: set.SampleCount(),
		Repairs: set.RepairCount(),
		Reached: lo.CountBy(trajectories, func(tr *simulation.TrainTrajectory) bool {
			return tr.Reached()
		}),
		Truncated: lo.CountBy(trajectories, func(tr *simulation.TrainTrajectory) bool {
			return tr.Truncated()
		}),
	}
}
