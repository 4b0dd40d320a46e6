package simulation

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/utils/randengine"
)

func newRandomSet(t *testing.T, ctx *Context, seed uint64, nTargets int) (*RoutingDecisionSet, *TrainTrajectorySet) {
	t.Helper()
	decisions, err := NewRandomRoutingDecisionSet(ctx, randengine.New(seed), nTargets)
	require.NoError(t, err)
	set, err := NewTrainTrajectorySet(ctx, decisions)
	require.NoError(t, err)
	return decisions, set
}

func TestTrainTrajectorySet(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleNetwork")
	decisions, set := newRandomSet(t, ctx, 11, 25)
	assert.Equal(t, 4, set.Size())
	assert.Equal(t, decisions.Trains(), set.Trains())
	require.NoError(t, set.CheckSpeedLimits())

	total := 0
	for _, name := range set.Trains() {
		tr, ok := set.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, tr.Train().Name)
		requireContinuous(t, ctx, tr)
		total += tr.SampleCount()
	}
	assert.Equal(t, total, set.SampleCount())
	_, ok := set.Get("nobody")
	assert.False(t, ok)
}

func TestTrainTrajectorySetKeepsDecisions(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleStation")
	d, err := NewRoutingDecision("tr2", []uint{1}, []float64{50}, []SwitchDirection{0.2})
	require.NoError(t, err)
	decisions, err := NewRoutingDecisionSet([]*RoutingDecision{d})
	require.NoError(t, err)

	set, err := NewTrainTrajectorySet(ctx, decisions)
	require.NoError(t, err)
	assert.Equal(t, 1, set.RepairCount())
	assert.Equal(t, 50.0, d.Breakpoints()[0].Delta)
	tr, _ := set.Get("tr2")
	assert.Less(t, tr.Decision().Breakpoints()[0].Delta, 0.0)
}

func TestTrainTrajectorySetReproducible(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleNetwork")
	_, a := newRandomSet(t, ctx, 5, 30)
	_, b := newRandomSet(t, ctx, 5, 30)
	for _, name := range a.Trains() {
		ta, _ := a.Get(name)
		tb, _ := b.Get(name)
		assert.Equal(t, ta.Samples(), tb.Samples())
	}
}

func TestTrainTrajectorySetError(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleNetwork")
	d, err := NewRoutingDecision("ice", nil, nil, nil)
	require.NoError(t, err)
	decisions, err := NewRoutingDecisionSet([]*RoutingDecision{d})
	require.NoError(t, err)
	_, err = NewTrainTrajectorySet(ctx, decisions)
	assert.ErrorIs(t, err, ErrSwitchDecisionsExhausted)
}

func TestWriteCSV(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleNetwork")
	_, set := newRandomSet(t, ctx, 8, 12)

	var buf bytes.Buffer
	require.NoError(t, set.WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, set.SampleCount()+1)
	assert.Equal(t, []string{"train", "edge", "timestep", "position", "speed", "orientation"}, rows[0])
	assert.Equal(t, "ice", rows[1][0])
	assert.Equal(t, "w0-w1", rows[1][1])
	assert.Equal(t, "0", rows[1][2])
	assert.Equal(t, "true", rows[1][5])
}

func TestExportCSV(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleStation")
	_, set := newRandomSet(t, ctx, 1, 5)
	path := filepath.Join(t.TempDir(), "trajectory.csv")
	require.NoError(t, set.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, set.SampleCount()+1)

	assert.Error(t, set.ExportCSV(filepath.Join(t.TempDir(), "missing", "out.csv")))
}
