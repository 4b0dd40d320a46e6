package timetable

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
	"github.com/tsinghua-fib-lab/railtraj/utils/input"
)

// TimetableManager 时刻表管理器
// 功能：管理列车参数及每列车的时刻表条目，列车保持输入顺序
type TimetableManager struct {
	trains    []entity.Train
	data      map[string]entity.Train
	schedules map[string]entity.Schedule
}

// NewManager 创建时刻表管理器实例
func NewManager() *TimetableManager {
	return &TimetableManager{
		data:      make(map[string]entity.Train),
		schedules: make(map[string]entity.Schedule),
	}
}

// Init 初始化时刻表
// 功能：校验列车参数，解析时刻表条目中的顶点名
// 参数：data-时刻表输入，net-路网
// 返回：输入非法时返回错误
// 算法说明：
// 1. 列车重名、最大速度/加速度/减速度非正均为错误
// 2. 每列车必须有且仅有一条时刻表条目
// 3. 进入顶点必须存在出边
// 4. 离开顶点不可达只给出警告，列车会在驶出路网或到达仿真终点时结束
func (m *TimetableManager) Init(data *input.TimetableData, net entity.INetwork) error {
	for _, r := range data.Trains {
		if _, ok := m.data[r.Name]; ok {
			return fmt.Errorf("duplicated train %q", r.Name)
		}
		if r.MaxSpeed <= 0 || r.Acceleration <= 0 || r.Deceleration <= 0 {
			return fmt.Errorf("train %q: max speed, acceleration and deceleration must be positive", r.Name)
		}
		train := entity.Train{
			Name:         r.Name,
			Length:       r.Length,
			MaxSpeed:     r.MaxSpeed,
			Acceleration: r.Acceleration,
			Deceleration: r.Deceleration,
		}
		m.trains = append(m.trains, train)
		m.data[r.Name] = train
	}
	for _, r := range data.Schedules {
		if _, ok := m.data[r.Train]; !ok {
			return fmt.Errorf("schedule for unknown train %q", r.Train)
		}
		if _, ok := m.schedules[r.Train]; ok {
			return fmt.Errorf("train %q has more than one schedule", r.Train)
		}
		entry, err := net.VertexByName(r.Entry)
		if err != nil {
			return fmt.Errorf("train %q entry: %w", r.Train, err)
		}
		exit, err := net.VertexByName(r.Exit)
		if err != nil {
			return fmt.Errorf("train %q exit: %w", r.Train, err)
		}
		if len(net.Successors(entry.ID)) == 0 {
			return fmt.Errorf("train %q: entry vertex %q has no outgoing edge", r.Train, r.Entry)
		}
		if r.V0 < 0 || r.T0 < 0 {
			return fmt.Errorf("train %q: negative entry time or speed", r.Train)
		}
		if _, ok := net.Distance(entry.ID, exit.ID); !ok {
			log.Warnf("train %q: exit %q is unreachable from entry %q", r.Train, r.Exit, r.Entry)
		}
		m.schedules[r.Train] = entity.Schedule{
			Train: r.Train,
			T0:    r.T0,
			V0:    r.V0,
			TN:    r.TN,
			VN:    r.VN,
			Entry: entry.ID,
			Exit:  exit.ID,
		}
	}
	for _, t := range m.trains {
		if _, ok := m.schedules[t.Name]; !ok {
			return fmt.Errorf("train %q has no schedule", t.Name)
		}
	}
	return nil
}

func (m *TimetableManager) Trains() []entity.Train {
	return m.trains
}

func (m *TimetableManager) Train(name string) (entity.Train, error) {
	t, ok := m.data[name]
	if !ok {
		return entity.Train{}, fmt.Errorf("no train named %q", name)
	}
	return t, nil
}

func (m *TimetableManager) Schedule(train string) (entity.Schedule, error) {
	s, ok := m.schedules[train]
	if !ok {
		return entity.Schedule{}, fmt.Errorf("no schedule for train %q", train)
	}
	return s, nil
}

func (m *TimetableManager) MaxTime() float64 {
	return lo.Max(lo.FlatMap(lo.Values(m.schedules), func(s entity.Schedule, _ int) []float64 {
		return []float64{s.T0, s.TN}
	}))
}
