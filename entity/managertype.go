package entity

// Manager依赖倒置

// entity/network/manager.go的依赖倒置
type INetwork interface {
	Vertices() []Vertex // 全部顶点（按输入顺序）
	Edges() []Edge      // 全部边（按输入顺序）

	// 输入顶点ID，查找顶点，如果不存在则返回error
	Vertex(id int32) (Vertex, error)
	// 输入顶点名，查找顶点，如果不存在则返回error
	VertexByName(name string) (Vertex, error)
	// 输入边ID，查找边，如果不存在则返回error
	Edge(id int32) (Edge, error)

	// 顶点的出边，按边ID排序，出边数大于1的顶点为道岔
	Successors(vertex int32) []Edge
	// 两顶点间的最短距离，不可达时返回false
	Distance(from, to int32) (float64, bool)
}

// entity/timetable/manager.go的依赖倒置
type ITimetable interface {
	Trains() []Train // 全部列车（按输入顺序）

	// 输入列车名，查找列车，如果不存在则返回error
	Train(name string) (Train, error)
	// 输入列车名，查找时刻表条目，如果不存在则返回error
	Schedule(train string) (Schedule, error)

	MaxTime() float64 // 时刻表中最晚的时间（秒）
}
