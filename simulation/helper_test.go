package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/entity/network"
	"github.com/tsinghua-fib-lab/railtraj/entity/timetable"
	"github.com/tsinghua-fib-lab/railtraj/utils/input"
)

func loadFixture(t *testing.T, name string) (*network.NetworkManager, *timetable.TimetableManager) {
	t.Helper()
	netData, err := input.LoadNetworkFile("../testdata/" + name + "/network.yaml")
	require.NoError(t, err)
	net := network.NewManager()
	require.NoError(t, net.Init(netData))
	ttData, err := input.LoadTimetableFile("../testdata/" + name + "/timetable.yaml")
	require.NoError(t, err)
	tt := timetable.NewManager()
	require.NoError(t, tt.Init(ttData, net))
	return net, tt
}

func newFixtureContext(t *testing.T, name string) *Context {
	t.Helper()
	net, tt := loadFixture(t, name)
	ctx, err := NewContext(net, tt, 20)
	require.NoError(t, err)
	return ctx
}

func edgeByName(t *testing.T, ctx *Context, name string) EdgeState {
	t.Helper()
	for _, e := range ctx.Network.Edges() {
		if e.Name == name {
			return EdgeState{Edge: e.ID, Orientation: true}
		}
	}
	t.Fatalf("edge %s not found", name)
	return EdgeState{}
}

// requireContinuous 相邻区段轨迹首尾相接，时刻单调不减
func requireContinuous(t *testing.T, ctx *Context, tr *TrainTrajectory) {
	t.Helper()
	ets := tr.EdgeTrajectories()
	require.NotEmpty(t, ets)
	for i := 1; i < len(ets); i++ {
		prev, next := ets[i-1].Final(), ets[i].Initial()
		require.InDelta(t, prev.Timestep, next.Timestep, 1e-9)
		require.InDelta(t, prev.Speed, next.Speed, 1e-9)
		require.Equal(t, ets[i-1].Edge().Target, ets[i].Edge().Source)
		require.Zero(t, next.Position)
	}
	samples := tr.Samples()
	for i := 1; i < len(samples); i++ {
		require.GreaterOrEqual(t, samples[i].Timestep, samples[i-1].Timestep)
	}
	require.LessOrEqual(t, tr.Final().Timestep, float64(ctx.NTimesteps))
}

// requirePhysical 每步速度变化量都在列车的加减速能力内，且按修复后的决策重放时没有被截断的步
func requirePhysical(t *testing.T, tr *TrainTrajectory) {
	t.Helper()
	require.NoError(t, tr.CheckAcceleration())
	require.Zero(t, countCuts(t, tr))
}

// countCuts 按当前决策重新积分，统计被截断的步数
func countCuts(t *testing.T, tr *TrainTrajectory) int {
	t.Helper()
	cuts := 0
	_, err := tr.simulate(tr.decision.Intention(), func(step uint, requested, applied, speed float64) bool {
		if tr.isCut(requested, applied, speed) {
			cuts++
		}
		return true
	})
	require.NoError(t, err)
	return cuts
}
