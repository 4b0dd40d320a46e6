package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

const (
	defaultTargets = 10 // 默认速度断点数
)

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并校验后的配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置验证和默认值填充
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针，配置非法时返回错误
// 算法说明：
// 1. 校验时间步长必须为正
// 2. 速度断点数未指定时取默认值
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if config.Control.Step.Interval <= 0 {
		return nil, fmt.Errorf("control.step.interval must be positive, got %v", config.Control.Step.Interval)
	}
	if config.Control.Step.Total < 0 {
		return nil, fmt.Errorf("control.step.total must not be negative, got %v", config.Control.Step.Total)
	}
	if config.Control.Targets < 0 {
		return nil, fmt.Errorf("control.targets must not be negative, got %v", config.Control.Targets)
	}
	if config.Control.Targets == 0 {
		config.Control.Targets = defaultTargets
	}
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
	}, nil
}

// Parse 严格解析YAML配置，未知字段视为错误
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
