package network

import (
	"fmt"
	"math"
	"sync"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/railtraj/entity"
	"github.com/tsinghua-fib-lab/railtraj/utils/input"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NetworkManager 路网管理器
// 功能：管理全部顶点与有向边，提供出边查询与可达性分析
// 说明：出边列表按边ID排序，保证道岔选择可复现；
// 可达性分析基于gonum的带权有向图，平行边只保留最短的一条
type NetworkManager struct {
	vertices     []entity.Vertex
	vertexByName map[string]int32
	edges        []entity.Edge
	successors   map[int32][]entity.Edge

	g       *simple.WeightedDirectedGraph
	spCache map[int32]path.Shortest // 单源最短路缓存
	spMtx   sync.Mutex
}

// NewManager 创建路网管理器实例
func NewManager() *NetworkManager {
	return &NetworkManager{
		vertexByName: make(map[string]int32),
		successors:   make(map[int32][]entity.Edge),
		g:            simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		spCache:      make(map[int32]path.Shortest),
	}
}

// Init 初始化路网
// 功能：根据输入记录建立顶点、边与图结构
// 参数：data-路网输入
// 返回：输入非法（重名顶点、未知端点、非正长度、负限速）时返回错误
// 算法说明：
// 1. 按输入顺序为顶点和边分配ID
// 2. 限速缺省（0）视为不限速
// 3. 建立出边表与gonum图
// 4. 路网存在环时给出警告，环路上的道岔可能耗尽道岔决策
func (m *NetworkManager) Init(data *input.NetworkData) error {
	for i, v := range data.Vertices {
		if _, ok := m.vertexByName[v.Name]; ok {
			return fmt.Errorf("duplicated vertex %q", v.Name)
		}
		id := int32(i)
		m.vertices = append(m.vertices, entity.Vertex{ID: id, Name: v.Name, Type: v.Type})
		m.vertexByName[v.Name] = id
		m.g.AddNode(simple.Node(id))
	}
	for i, e := range data.Edges {
		src, ok := m.vertexByName[e.Source]
		if !ok {
			return fmt.Errorf("edge %d: unknown source vertex %q", i, e.Source)
		}
		dst, ok := m.vertexByName[e.Target]
		if !ok {
			return fmt.Errorf("edge %d: unknown target vertex %q", i, e.Target)
		}
		if src == dst {
			return fmt.Errorf("edge %d: self loop at vertex %q", i, e.Source)
		}
		if e.Length <= 0 {
			return fmt.Errorf("edge %d (%s-%s): length must be positive, got %v", i, e.Source, e.Target, e.Length)
		}
		if e.MaxSpeed < 0 {
			return fmt.Errorf("edge %d (%s-%s): negative max speed %v", i, e.Source, e.Target, e.MaxSpeed)
		}
		edge := entity.Edge{
			ID:       int32(i),
			Name:     e.Name,
			Source:   src,
			Target:   dst,
			Length:   e.Length,
			MaxSpeed: e.MaxSpeed,
		}
		if edge.Name == "" {
			edge.Name = e.Source + "-" + e.Target
		}
		if edge.MaxSpeed == 0 {
			edge.MaxSpeed = mathutil.INF
		}
		m.edges = append(m.edges, edge)
		m.successors[src] = append(m.successors[src], edge)

		if w, ok := m.g.Weight(int64(src), int64(dst)); ok && w <= e.Length {
			continue
		}
		m.g.SetWeightedEdge(m.g.NewWeightedEdge(simple.Node(src), simple.Node(dst), e.Length))
	}
	if _, err := topo.Sort(m.g); err != nil {
		log.Warnf("network contains cycles, switch decisions may run out on looping routes: %v", err)
	}
	log.Debugf("network: %d vertices, %d edges", len(m.vertices), len(m.edges))
	return nil
}

func (m *NetworkManager) Vertices() []entity.Vertex {
	return m.vertices
}

func (m *NetworkManager) Edges() []entity.Edge {
	return m.edges
}

func (m *NetworkManager) Vertex(id int32) (entity.Vertex, error) {
	if id < 0 || int(id) >= len(m.vertices) {
		return entity.Vertex{}, fmt.Errorf("no id %d in vertex data", id)
	}
	return m.vertices[id], nil
}

func (m *NetworkManager) VertexByName(name string) (entity.Vertex, error) {
	id, ok := m.vertexByName[name]
	if !ok {
		return entity.Vertex{}, fmt.Errorf("no vertex named %q", name)
	}
	return m.vertices[id], nil
}

func (m *NetworkManager) Edge(id int32) (entity.Edge, error) {
	if id < 0 || int(id) >= len(m.edges) {
		return entity.Edge{}, fmt.Errorf("no id %d in edge data", id)
	}
	return m.edges[id], nil
}

func (m *NetworkManager) Successors(vertex int32) []entity.Edge {
	return m.successors[vertex]
}

// Switches 出边数大于1的顶点
func (m *NetworkManager) Switches() []entity.Vertex {
	return lo.Filter(m.vertices, func(v entity.Vertex, _ int) bool {
		return len(m.successors[v.ID]) > 1
	})
}

// Distance 两顶点间的最短距离
// 功能：基于Dijkstra单源最短路树计算距离，单源结果按起点缓存
// 返回：距离与是否可达
func (m *NetworkManager) Distance(from, to int32) (float64, bool) {
	if from == to {
		return 0, true
	}
	tree := m.shortestFrom(from)
	_, w := tree.To(int64(to))
	if math.IsInf(w, 1) {
		return 0, false
	}
	return w, true
}

// Route 两顶点间最短路径上的顶点序列，不可达时返回nil
func (m *NetworkManager) Route(from, to int32) []int32 {
	nodes, _ := m.shortestFrom(from).To(int64(to))
	return lo.Map(nodes, func(n graph.Node, _ int) int32 {
		return int32(n.ID())
	})
}

func (m *NetworkManager) shortestFrom(from int32) path.Shortest {
	m.spMtx.Lock()
	defer m.spMtx.Unlock()
	if tree, ok := m.spCache[from]; ok {
		return tree
	}
	tree := path.DijkstraFrom(simple.Node(from), m.g)
	m.spCache[from] = tree
	return tree
}
