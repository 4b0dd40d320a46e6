package entity

import "fmt"

// Vertex 路网顶点
type Vertex struct {
	ID   int32
	Name string
	Type string
}

// Edge 路网有向边（轨道区段）
// 功能：记录区段长度与限速，MaxSpeed为mathutil.INF表示不限速
type Edge struct {
	ID       int32
	Name     string
	Source   int32   // 起点顶点ID
	Target   int32   // 终点顶点ID
	Length   float64 // 长度（米）
	MaxSpeed float64 // 限速（米/秒）
}

func (e Edge) String() string {
	return fmt.Sprintf("Edge{ID=%d, Name=%s, Length=%v, MaxSpeed=%v}", e.ID, e.Name, e.Length, e.MaxSpeed)
}

// Train 列车物理参数
type Train struct {
	Name         string
	Length       float64 // 车长（米）
	MaxSpeed     float64 // 最大速度（米/秒）
	Acceleration float64 // 最大加速度（米/秒²）
	Deceleration float64 // 最大减速度（米/秒²，正数）
}

// SpeedBound 列车在指定区段上允许的最大速度
func (t Train) SpeedBound(e Edge) float64 {
	if e.MaxSpeed < t.MaxSpeed {
		return e.MaxSpeed
	}
	return t.MaxSpeed
}

// Schedule 列车时刻表条目，顶点已解析为ID
type Schedule struct {
	Train string
	T0    float64 // 进入时间（秒）
	V0    float64 // 进入速度（米/秒）
	TN    float64 // 计划离开时间（秒）
	VN    float64 // 计划离开速度（米/秒）
	Entry int32   // 进入顶点
	Exit  int32   // 离开顶点
}
