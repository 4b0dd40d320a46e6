package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/utils/config"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLoadFixtureFiles(t *testing.T) {
	n, err := LoadNetworkFile("../../testdata/SimpleStation/network.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, n.Vertices)
	assert.NotEmpty(t, n.Edges)

	tt, err := LoadTimetableFile("../../testdata/SimpleStation/timetable.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, tt.Trains)
	assert.Len(t, tt.Schedules, len(tt.Trains))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadNetworkFile("../../testdata/missing.yaml")
	assert.Error(t, err)
}

func TestInitFromFiles(t *testing.T) {
	c := config.Config{Input: config.Input{
		Network:   config.InputPath{File: "../../testdata/SimpleNetwork/network.yaml"},
		Timetable: config.InputPath{File: "../../testdata/SimpleNetwork/timetable.yaml"},
	}}
	in, err := Init(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, in.Timetable.Trains, 4)
}

func TestInitRequiresURIWithoutFiles(t *testing.T) {
	c := config.Config{Input: config.Input{
		Network: config.InputPath{DB: "rail", Col: "network"},
	}}
	_, err := Init(context.Background(), c)
	assert.Error(t, err)
}

func TestAppendDocDispatchesByClass(t *testing.T) {
	raw := func(v any) bson.Raw {
		b, err := bson.Marshal(v)
		require.NoError(t, err)
		return b
	}

	n := &NetworkData{}
	require.NoError(t, n.appendDoc(classVertex, raw(VertexRecord{Name: "v0"})))
	require.NoError(t, n.appendDoc(classEdge, raw(EdgeRecord{Source: "v0", Target: "v1", Length: 100, MaxSpeed: 30})))
	assert.Error(t, n.appendDoc("train", raw(TrainRecord{})))
	assert.Equal(t, "v0", n.Vertices[0].Name)
	assert.Equal(t, 30.0, n.Edges[0].MaxSpeed)

	tt := &TimetableData{}
	require.NoError(t, tt.appendDoc(classTrain, raw(TrainRecord{Name: "tr1", MaxSpeed: 50})))
	require.NoError(t, tt.appendDoc(classSchedule, raw(ScheduleRecord{Train: "tr1", T0: 120, Entry: "v0", Exit: "v1"})))
	assert.Error(t, tt.appendDoc(classVertex, raw(VertexRecord{})))
	assert.Equal(t, 120.0, tt.Schedules[0].T0)
}

func TestFindSortsByID(t *testing.T) {
	opts := findOptions()
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, opts.Sort)
}
