package task

import (
	"context"
	"fmt"

	"github.com/tsinghua-fib-lab/railtraj/clock"
	"github.com/tsinghua-fib-lab/railtraj/entity"
	"github.com/tsinghua-fib-lab/railtraj/entity/network"
	"github.com/tsinghua-fib-lab/railtraj/entity/timetable"
	"github.com/tsinghua-fib-lab/railtraj/simulation"
	"github.com/tsinghua-fib-lab/railtraj/utils/config"
	"github.com/tsinghua-fib-lab/railtraj/utils/input"
	"github.com/tsinghua-fib-lab/railtraj/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、路网、时刻表、随机数引擎与运行时配置
type Context struct {
	// 时钟
	clock *clock.Clock

	// 路网管理器
	networkManager *network.NetworkManager
	// 时刻表管理器
	timetableManager *timetable.TimetableManager
	// 仿真常量
	sim *simulation.Context

	// 随机数引擎，所有随机决策共用
	engine *randengine.Engine

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 用于初始化的输入
	initRes *input.Input
}

// NewContext 创建新的仿真任务上下文
// 功能：加载输入并初始化全部组件
// 参数：ctx-上下文（用于数据库访问），c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 校验配置并补全默认值
// 2. 从文件或MongoDB加载路网与时刻表
// 3. 初始化路网管理器与时刻表管理器
// 4. 配置了总步数时按配置创建时钟，否则由时刻表的最晚时间推导
// 5. 创建仿真上下文与随机数引擎
func NewContext(ctx context.Context, c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	t := &Context{
		runtimeConfig:    rc,
		networkManager:   network.NewManager(),
		timetableManager: timetable.NewManager(),
	}

	// 加载所有仿真所需的数据
	if t.initRes, err = input.Init(ctx, rc.All); err != nil {
		return nil, err
	}
	if err := t.networkManager.Init(t.initRes.Network); err != nil {
		return nil, fmt.Errorf("init network: %w", err)
	}
	if err := t.timetableManager.Init(t.initRes.Timetable, t.networkManager); err != nil {
		return nil, fmt.Errorf("init timetable: %w", err)
	}

	if rc.C.Step.Total > 0 {
		t.clock = clock.New(rc.C.Step)
	} else {
		t.clock = clock.NewForHorizon(rc.C.Step.Interval, t.timetableManager.MaxTime())
	}
	if t.sim, err = simulation.NewContextWithClock(t.networkManager, t.timetableManager, t.clock); err != nil {
		return nil, err
	}
	t.engine = randengine.New(rc.C.Seed)
	return t, nil
}

func (t *Context) GetInput() *input.Input {
	return t.initRes
}

func (t *Context) Clock() *clock.Clock {
	return t.clock
}

func (t *Context) Network() entity.INetwork {
	return t.networkManager
}

func (t *Context) Timetable() entity.ITimetable {
	return t.timetableManager
}

func (t *Context) Simulation() *simulation.Context {
	return t.sim
}

func (t *Context) RuntimeConfig() *config.RuntimeConfig {
	return t.runtimeConfig
}
