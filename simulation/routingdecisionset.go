package simulation

import (
	"fmt"

	"github.com/tsinghua-fib-lab/railtraj/utils/randengine"
)

// RoutingDecisionSet 一次仿真中全部列车的路由决策
// 功能：按列车保存决策，并记录列车的枚举顺序
type RoutingDecisionSet struct {
	trains    []string
	decisions map[string]*RoutingDecision
}

// NewRoutingDecisionSet 由外部给定的决策创建集合，同一列车出现两次时返回错误
func NewRoutingDecisionSet(decisions []*RoutingDecision) (*RoutingDecisionSet, error) {
	s := &RoutingDecisionSet{
		trains:    make([]string, 0, len(decisions)),
		decisions: make(map[string]*RoutingDecision, len(decisions)),
	}
	for _, d := range decisions {
		if _, ok := s.decisions[d.Train()]; ok {
			return nil, fmt.Errorf("train %s has more than one routing decision", d.Train())
		}
		s.trains = append(s.trains, d.Train())
		s.decisions[d.Train()] = d
	}
	return s, nil
}

// NewRandomRoutingDecisionSet 为每列在仿真区间内进入路网的列车随机生成决策
// 功能：所有列车依次从同一随机数流中抽取
// 参数：ctx-仿真上下文，e-随机数引擎，nTargets-每列车的断点数
// 说明：列车按时刻表中的顺序遍历，因此对固定的随机数流结果可复现；
// 每列车的道岔决策数取路网中的道岔数量
func NewRandomRoutingDecisionSet(ctx *Context, e *randengine.Engine, nTargets int) (*RoutingDecisionSet, error) {
	trains := ctx.ActiveTrains()
	decisions := make([]*RoutingDecision, 0, len(trains))
	for _, train := range trains {
		d, err := NewRandomRoutingDecision(e, nTargets, ctx.NSwitchVars, ctx.NTimesteps, train)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return NewRoutingDecisionSet(decisions)
}

// Size 决策数量
func (s *RoutingDecisionSet) Size() int {
	return len(s.trains)
}

// Trains 列车名，保持枚举顺序
func (s *RoutingDecisionSet) Trains() []string {
	return append([]string(nil), s.trains...)
}

// Get 查找列车的决策
func (s *RoutingDecisionSet) Get(train string) (*RoutingDecision, bool) {
	d, ok := s.decisions[train]
	return d, ok
}
