package input

import (
	"context"
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/railtraj/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v2"
)

// MongoDB文档的class取值
const (
	classVertex   = "vertex"
	classEdge     = "edge"
	classTrain    = "train"
	classSchedule = "schedule"
)

// Input 输入数据
// 功能：存储仿真所需的路网与时刻表
type Input struct {
	Network   *NetworkData
	Timetable *TimetableData
}

// mongoDoc MongoDB中一条输入文档，data的结构由class决定
type mongoDoc struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}

// Init 加载数据
// 功能：根据配置加载路网与时刻表
// 参数：ctx-上下文，c-配置对象
// 返回：加载完成的输入数据
// 算法说明：
// 1. 任一输入未指定文件时建立MongoDB连接
// 2. 指定了文件的输入从YAML文件加载，否则从{db}.{col}集合加载
func Init(ctx context.Context, c config.Config) (*Input, error) {
	var client *mongo.Client
	if c.Input.Network.File == "" || c.Input.Timetable.File == "" {
		if c.Input.URI == "" {
			return nil, fmt.Errorf("input uri is required when network or timetable has no file")
		}
		var err error
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(c.Input.URI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		defer client.Disconnect(context.Background())
	}

	res := &Input{}
	var err error
	log.Infof("start fetching network from %s", c.Input.Network)
	if c.Input.Network.File != "" {
		res.Network, err = LoadNetworkFile(c.Input.Network.File)
	} else {
		res.Network, err = loadNetworkFromMongo(ctx, client, c.Input.Network)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("start fetching timetable from %s", c.Input.Timetable)
	if c.Input.Timetable.File != "" {
		res.Timetable, err = LoadTimetableFile(c.Input.Timetable.File)
	} else {
		res.Timetable, err = loadTimetableFromMongo(ctx, client, c.Input.Timetable)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("finish fetching: %d vertices, %d edges, %d trains",
		len(res.Network.Vertices), len(res.Network.Edges), len(res.Timetable.Trains))
	return res, nil
}

// LoadNetworkFile 从YAML文件加载路网
func LoadNetworkFile(path string) (*NetworkData, error) {
	var n NetworkData
	if err := unmarshalFile(path, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// LoadTimetableFile 从YAML文件加载时刻表
func LoadTimetableFile(path string) (*TimetableData, error) {
	var t TimetableData
	if err := unmarshalFile(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func unmarshalFile(path string, out any) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(file, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadNetworkFromMongo 从MongoDB集合加载路网，每条文档为一个顶点或一条边
func loadNetworkFromMongo(ctx context.Context, client *mongo.Client, path config.InputPath) (*NetworkData, error) {
	n := &NetworkData{}
	err := forEachDoc(ctx, client, path, func(doc mongoDoc) error {
		return n.appendDoc(doc.Class, doc.Data)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// loadTimetableFromMongo 从MongoDB集合加载时刻表，每条文档为一列车或一条时刻表条目
func loadTimetableFromMongo(ctx context.Context, client *mongo.Client, path config.InputPath) (*TimetableData, error) {
	t := &TimetableData{}
	err := forEachDoc(ctx, client, path, func(doc mongoDoc) error {
		return t.appendDoc(doc.Class, doc.Data)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// findOptions 按_id排序读取，保证顶点与边的ID分配与插入顺序一致
func findOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

func forEachDoc(ctx context.Context, client *mongo.Client, path config.InputPath, handler func(mongoDoc) error) error {
	coll := client.Database(path.GetDb()).Collection(path.GetColl())
	cur, err := coll.Find(ctx, bson.D{}, findOptions())
	if err != nil {
		return fmt.Errorf("find %s: %w", path, err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if err := handler(doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return cur.Err()
}

func (n *NetworkData) appendDoc(class string, raw bson.Raw) error {
	switch class {
	case classVertex:
		var v VertexRecord
		if err := bson.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("bad vertex document: %w", err)
		}
		n.Vertices = append(n.Vertices, v)
	case classEdge:
		var e EdgeRecord
		if err := bson.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("bad edge document: %w", err)
		}
		n.Edges = append(n.Edges, e)
	default:
		return fmt.Errorf("unknown network document class %q", class)
	}
	return nil
}

func (t *TimetableData) appendDoc(class string, raw bson.Raw) error {
	switch class {
	case classTrain:
		var tr TrainRecord
		if err := bson.Unmarshal(raw, &tr); err != nil {
			return fmt.Errorf("bad train document: %w", err)
		}
		t.Trains = append(t.Trains, tr)
	case classSchedule:
		var s ScheduleRecord
		if err := bson.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("bad schedule document: %w", err)
		}
		t.Schedules = append(t.Schedules, s)
	default:
		return fmt.Errorf("unknown timetable document class %q", class)
	}
	return nil
}
