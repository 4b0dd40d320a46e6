package simulation

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
)

// TrainTrajectorySet 一次仿真中全部列车的轨迹
type TrainTrajectorySet struct {
	trains       []string
	trajectories map[string]*TrainTrajectory
}

type buildJob struct {
	train    entity.Train
	decision *RoutingDecision
}

type buildResult struct {
	trajectory *TrainTrajectory
	err        error
}

// NewTrainTrajectorySet 为决策集合中的每列车生成轨迹
// 功能：各列车的轨迹相互独立，并行生成；每条轨迹持有决策的副本，集合本身不被修改
// 返回：任一列车失败时返回全部失败原因
func NewTrainTrajectorySet(ctx *Context, decisions *RoutingDecisionSet) (*TrainTrajectorySet, error) {
	jobs := make([]buildJob, 0, decisions.Size())
	for _, name := range decisions.Trains() {
		train, err := ctx.Timetable.Train(name)
		if err != nil {
			return nil, err
		}
		d, _ := decisions.Get(name)
		jobs = append(jobs, buildJob{train: train, decision: d.Clone()})
	}
	results := parallel.GoMap(jobs, func(j buildJob) buildResult {
		t, err := NewTrainTrajectory(ctx, j.train, j.decision)
		return buildResult{trajectory: t, err: err}
	})
	if err := errors.Join(lo.Map(results, func(r buildResult, _ int) error { return r.err })...); err != nil {
		return nil, err
	}
	s := &TrainTrajectorySet{
		trains:       decisions.Trains(),
		trajectories: make(map[string]*TrainTrajectory, len(results)),
	}
	for i, r := range results {
		s.trajectories[jobs[i].train.Name] = r.trajectory
	}
	log.Infof("built %d trajectories, %d samples, %d breakpoints repaired",
		s.Size(), s.SampleCount(), s.RepairCount())
	return s, nil
}

func (s *TrainTrajectorySet) Size() int {
	return len(s.trains)
}

// Trains 列车名，与决策集合的顺序一致
func (s *TrainTrajectorySet) Trains() []string {
	return append([]string(nil), s.trains...)
}

// Get 查找列车的轨迹
func (s *TrainTrajectorySet) Get(train string) (*TrainTrajectory, bool) {
	t, ok := s.trajectories[train]
	return t, ok
}

// SampleCount 全部采样点数
func (s *TrainTrajectorySet) SampleCount() int {
	return lo.SumBy(lo.Values(s.trajectories), func(t *TrainTrajectory) int {
		return t.SampleCount()
	})
}

// RepairCount 全部列车修复的断点数
func (s *TrainTrajectorySet) RepairCount() int {
	return lo.SumBy(lo.Values(s.trajectories), func(t *TrainTrajectory) int {
		return t.RepairCount()
	})
}

// CheckSpeedLimits 检查全部轨迹的限速，返回第一个越限的列车
func (s *TrainTrajectorySet) CheckSpeedLimits() error {
	for _, name := range s.trains {
		if err := s.trajectories[name].CheckSpeedLimits(); err != nil {
			return fmt.Errorf("trajectory set: %w", err)
		}
	}
	return nil
}

// CheckAcceleration 检查全部轨迹的加减速能力
func (s *TrainTrajectorySet) CheckAcceleration() error {
	for _, name := range s.trains {
		if err := s.trajectories[name].CheckAcceleration(); err != nil {
			return fmt.Errorf("trajectory set: %w", err)
		}
	}
	return nil
}
