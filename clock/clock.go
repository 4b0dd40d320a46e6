package clock

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/railtraj/utils/config"
)

// Clock 仿真时钟
// 功能：维护仿真步长与步数范围，负责秒与步之间的换算
// 说明：轨迹中的时刻以“步”为单位，允许出现跨越边界产生的小数步
type Clock struct {
	DT         float64 // 每个模拟步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)
}

// New 根据配置创建新的时钟实例
// 功能：根据步长配置初始化时钟信息
// 参数：stepConfig-控制步配置，包含起始步、总步数、时间间隔
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	return &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
}

// NewForHorizon 根据时刻表的最晚时间创建时钟
// 功能：总步数取ceil(maxTime/interval)，保证最晚的时刻表事件落在仿真区间内
// 参数：interval-步长（秒），maxTime-时刻表最晚时间（秒）
func NewForHorizon(interval, maxTime float64) *Clock {
	total := int32(math.Ceil(maxTime / interval))
	return New(config.ControlStep{
		Total:    total,
		Interval: interval,
	})
}

// Horizon 仿真步数上限
func (c *Clock) Horizon() uint {
	if c.END_STEP <= 0 {
		return 0
	}
	return uint(c.END_STEP)
}

// ToStep 将秒换算为步
func (c *Clock) ToStep(seconds float64) float64 {
	return seconds / c.DT
}

// ToSeconds 将步换算为秒
func (c *Clock) ToSeconds(step float64) float64 {
	return step * c.DT
}

// Format 获取指定步对应时刻的字符串表示
// 功能：将步换算为秒后格式化为可读的字符串（HH:MM:SS）
func (c *Clock) Format(step float64) string {
	h, m, s := c.HourMinuteSecond(step)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// HourMinuteSecond 获取指定步对应时刻的小时、分钟、秒
// 功能：将时刻分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
// 算法说明：
// 1. 计算小时数：总秒数除以3600
// 2. 计算分钟数：剩余秒数除以60
// 3. 计算秒数：最终剩余秒数（浮点数）
func (c *Clock) HourMinuteSecond(step float64) (int, int, float64) {
	t := c.ToSeconds(step)
	hour := int(t) / 3600
	minute := int(t) % 3600 / 60
	second := t - float64(hour*3600+minute*60)
	return hour, minute, second
}
