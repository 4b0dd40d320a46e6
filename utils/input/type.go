package input

// VertexRecord 路网顶点的原始记录
type VertexRecord struct {
	Name string `yaml:"name" bson:"name"`
	Type string `yaml:"type,omitempty" bson:"type,omitempty"` // 如 ttd、station，仅用于展示
}

// EdgeRecord 路网有向边（轨道区段）的原始记录
// MaxSpeed为0表示该区段不限速
type EdgeRecord struct {
	Name     string  `yaml:"name,omitempty" bson:"name,omitempty"`
	Source   string  `yaml:"source" bson:"source"`
	Target   string  `yaml:"target" bson:"target"`
	Length   float64 `yaml:"length" bson:"length"`                           // 米
	MaxSpeed float64 `yaml:"max_speed,omitempty" bson:"max_speed,omitempty"` // 米/秒
}

// NetworkData 路网输入
type NetworkData struct {
	Vertices []VertexRecord `yaml:"vertices" bson:"vertices"`
	Edges    []EdgeRecord   `yaml:"edges" bson:"edges"`
}

// TrainRecord 列车物理参数
type TrainRecord struct {
	Name         string  `yaml:"name" bson:"name"`
	Length       float64 `yaml:"length" bson:"length"`             // 米
	MaxSpeed     float64 `yaml:"max_speed" bson:"max_speed"`       // 米/秒
	Acceleration float64 `yaml:"acceleration" bson:"acceleration"` // 米/秒²
	Deceleration float64 `yaml:"deceleration" bson:"deceleration"` // 米/秒²，正数
}

// ScheduleRecord 列车时刻表条目
type ScheduleRecord struct {
	Train string  `yaml:"train" bson:"train"`
	T0    float64 `yaml:"t_0" bson:"t_0"` // 进入时间（秒）
	V0    float64 `yaml:"v_0" bson:"v_0"` // 进入速度
	TN    float64 `yaml:"t_n" bson:"t_n"` // 计划离开时间（秒）
	VN    float64 `yaml:"v_n" bson:"v_n"` // 计划离开速度
	Entry string  `yaml:"entry" bson:"entry"`
	Exit  string  `yaml:"exit" bson:"exit"`
}

// TimetableData 时刻表输入
type TimetableData struct {
	Trains    []TrainRecord    `yaml:"trains" bson:"trains"`
	Schedules []ScheduleRecord `yaml:"schedules" bson:"schedules"`
}
