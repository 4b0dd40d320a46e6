package timetable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/entity/network"
	"github.com/tsinghua-fib-lab/railtraj/entity/timetable"
	"github.com/tsinghua-fib-lab/railtraj/utils/input"
)

func loadNetwork(t *testing.T) *network.NetworkManager {
	data, err := input.LoadNetworkFile("../../testdata/SimpleNetwork/network.yaml")
	require.NoError(t, err)
	m := network.NewManager()
	require.NoError(t, m.Init(data))
	return m
}

func TestInit(t *testing.T) {
	net := loadNetwork(t)
	data, err := input.LoadTimetableFile("../../testdata/SimpleNetwork/timetable.yaml")
	require.NoError(t, err)
	m := timetable.NewManager()
	require.NoError(t, m.Init(data, net))

	names := make([]string, 0)
	for _, tr := range m.Trains() {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"ice", "re", "freight", "sbahn"}, names)
	assert.Equal(t, 2400.0, m.MaxTime())

	s, err := m.Schedule("re")
	require.NoError(t, err)
	n0, _ := net.VertexByName("n0")
	x2, _ := net.VertexByName("x2")
	assert.Equal(t, n0.ID, s.Entry)
	assert.Equal(t, x2.ID, s.Exit)
	assert.Equal(t, 60.0, s.T0)

	_, err = m.Train("tgv")
	assert.Error(t, err)
	_, err = m.Schedule("tgv")
	assert.Error(t, err)
}

func TestInitRejectsBadInput(t *testing.T) {
	train := input.TrainRecord{Name: "tr", MaxSpeed: 30, Acceleration: 1, Deceleration: 1}
	schedule := input.ScheduleRecord{Train: "tr", Entry: "w0", Exit: "x1"}
	cases := map[string]*input.TimetableData{
		"missing schedule": {Trains: []input.TrainRecord{train}},
		"unknown train": {
			Trains:    []input.TrainRecord{train},
			Schedules: []input.ScheduleRecord{schedule, {Train: "other", Entry: "w0", Exit: "x1"}},
		},
		"unknown vertex": {
			Trains:    []input.TrainRecord{train},
			Schedules: []input.ScheduleRecord{{Train: "tr", Entry: "w9", Exit: "x1"}},
		},
		"entry without successors": {
			Trains:    []input.TrainRecord{train},
			Schedules: []input.ScheduleRecord{{Train: "tr", Entry: "x1", Exit: "x2"}},
		},
		"zero deceleration": {
			Trains:    []input.TrainRecord{{Name: "tr", MaxSpeed: 30, Acceleration: 1}},
			Schedules: []input.ScheduleRecord{schedule},
		},
		"duplicated schedule": {
			Trains:    []input.TrainRecord{train},
			Schedules: []input.ScheduleRecord{schedule, schedule},
		},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, timetable.NewManager().Init(data, loadNetwork(t)))
		})
	}
}
