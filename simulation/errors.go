package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateBreakpoint 速度意图中存在重复的断点时刻
	ErrDuplicateBreakpoint = errors.New("duplicate breakpoint")
	// ErrSwitchDecisionsExhausted 列车到达道岔时已无可用的道岔决策
	ErrSwitchDecisionsExhausted = errors.New("switch decisions exhausted")
	// ErrSpeedLimitViolation 轨迹采样点超出限速
	ErrSpeedLimitViolation = errors.New("speed limit violation")
	// ErrAccelerationViolation 相邻采样点间的速度变化超出列车的加减速能力
	ErrAccelerationViolation = errors.New("acceleration violation")
	// ErrHorizonExceeded 列车在仿真终点前未驶离，轨迹被截断。
	// 仅用于描述截断原因，构造轨迹时不会返回该错误
	ErrHorizonExceeded = errors.New("horizon exceeded")
	// ErrInvalidDecision 路由决策的取值超出允许范围
	ErrInvalidDecision = errors.New("invalid routing decision")
)

// SpeedLimitError 限速检查失败的详细信息
type SpeedLimitError struct {
	Train    string
	Edge     string
	Timestep float64
	Speed    float64
	Bound    float64
}

func (e *SpeedLimitError) Error() string {
	return fmt.Sprintf("%v: train %s on edge %s at step %.4f: speed %.4f outside [0, %.4f]",
		ErrSpeedLimitViolation, e.Train, e.Edge, e.Timestep, e.Speed, e.Bound)
}

func (e *SpeedLimitError) Unwrap() error {
	return ErrSpeedLimitViolation
}
