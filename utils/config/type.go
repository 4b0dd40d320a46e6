package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：File非空时优先从YAML文件读取，否则从MongoDB的{db}.{col}读取
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// String 输入来源的可读表示
func (p InputPath) String() string {
	if p.File != "" {
		return p.File
	}
	return p.DB + "." + p.Col
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义路网与时刻表两类输入
type Input struct {
	URI       string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Network   InputPath `yaml:"network"`       // 路网
	Timetable InputPath `yaml:"timetable"`     // 时刻表
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：Total为0时由时刻表的最晚时间推导仿真步数
type ControlStep struct {
	Start    int32   `yaml:"start,omitempty"` // 开始步数
	Total    int32   `yaml:"total,omitempty"` // 总步数
	Interval float64 `yaml:"interval"`        // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step     ControlStep `yaml:"step"`
	Seed     uint64      `yaml:"seed"`               // 随机路由决策的种子
	Targets  int         `yaml:"targets,omitempty"`  // 每列车随机生成的速度断点数
	Validate bool        `yaml:"validate,omitempty"` // 构造完成后是否检查限速
}

// Output 输出配置
type Output struct {
	CSV string `yaml:"csv,omitempty"` // 轨迹CSV输出路径，为空则不输出
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、输出等所有配置项
type Config struct {
	Input   Input   `yaml:"input"`   // 输入
	Control Control `yaml:"control"` // 模拟过程控制
	Output  Output  `yaml:"output"`  // 输出
}
