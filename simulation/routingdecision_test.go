package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/entity"
	"github.com/tsinghua-fib-lab/railtraj/utils/randengine"
)

func TestRandomRoutingDecisionBounds(t *testing.T) {
	e := randengine.New(7)
	train := entity.Train{Name: "ice", MaxSpeed: 83.33, Acceleration: 0.8, Deceleration: 1}
	for i := 0; i < 1000; i++ {
		nTargets := i%20 + 1
		d, err := NewRandomRoutingDecision(e, nTargets, 3, 120, train)
		require.NoError(t, err)
		assert.Equal(t, "ice", d.Train())

		bps := d.Breakpoints()
		require.Len(t, bps, nTargets)
		for j, bp := range bps {
			assert.GreaterOrEqual(t, bp.Timestep, uint(1))
			assert.LessOrEqual(t, bp.Timestep, uint(120))
			assert.GreaterOrEqual(t, bp.Delta, -MaxDelta)
			assert.LessOrEqual(t, bp.Delta, MaxDelta)
			if j > 0 {
				assert.Greater(t, bp.Timestep, bps[j-1].Timestep)
			}
		}
		switches := d.Switches()
		require.Len(t, switches, 3)
		for _, s := range switches {
			assert.GreaterOrEqual(t, float64(s), 0.0)
			assert.Less(t, float64(s), 1.0)
		}
	}
}

func TestRandomRoutingDecisionTooManyTargets(t *testing.T) {
	_, err := NewRandomRoutingDecision(randengine.New(1), 11, 0, 10, entity.Train{Name: "x"})
	assert.Error(t, err)
}

func TestRandomRoutingDecisionReproducible(t *testing.T) {
	train := entity.Train{Name: "re"}
	a, err := NewRandomRoutingDecision(randengine.New(99), 8, 2, 50, train)
	require.NoError(t, err)
	b, err := NewRandomRoutingDecision(randengine.New(99), 8, 2, 50, train)
	require.NoError(t, err)
	assert.Equal(t, a.Breakpoints(), b.Breakpoints())
	assert.Equal(t, a.Switches(), b.Switches())
}

func TestNewRoutingDecisionValidation(t *testing.T) {
	_, err := NewRoutingDecision("a", []uint{1}, []float64{50.5}, nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = NewRoutingDecision("a", []uint{1}, []float64{1}, []SwitchDirection{1})
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = NewRoutingDecision("a", []uint{1, 1}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrDuplicateBreakpoint)

	_, err = NewRoutingDecision("a", []uint{0, 4}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	d, err := NewRoutingDecision("a", []uint{4, 1}, []float64{-50, 50}, []SwitchDirection{0, 0.999})
	require.NoError(t, err)
	assert.Equal(t, []Breakpoint{{1, 50}, {4, -50}}, d.Breakpoints())
}

func TestSwitchDirectionPick(t *testing.T) {
	assert.Equal(t, 0, SwitchDirection(0).Pick(2))
	assert.Equal(t, 0, SwitchDirection(0.49).Pick(2))
	assert.Equal(t, 1, SwitchDirection(0.5).Pick(2))
	assert.Equal(t, 2, SwitchDirection(0.99).Pick(3))
	assert.Equal(t, 0, SwitchDirection(0.7).Pick(1))
}

func TestSwitchCursor(t *testing.T) {
	d, err := NewRoutingDecision("a", nil, nil, []SwitchDirection{0.6, 0.1})
	require.NoError(t, err)
	c := d.Cursor()

	// 非道岔不消耗决策
	i, err := c.Next(1)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, 0, c.Consumed())

	p, ok := c.Peek(2)
	require.True(t, ok)
	i, err = c.Next(2)
	require.NoError(t, err)
	assert.Equal(t, p, i)
	assert.Equal(t, 1, i)

	i, err = c.Next(3)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, 2, c.Consumed())

	_, ok = c.Peek(2)
	assert.False(t, ok)
	_, err = c.Next(2)
	assert.ErrorIs(t, err, ErrSwitchDecisionsExhausted)
}

func TestRoutingDecisionClone(t *testing.T) {
	d, err := NewRoutingDecision("a", []uint{1}, []float64{3}, []SwitchDirection{0.2})
	require.NoError(t, err)
	c := d.Clone()
	c.breakpoints[0].Delta = 5
	c.switches[0] = 0.9
	assert.Equal(t, 3.0, d.Breakpoints()[0].Delta)
	assert.Equal(t, SwitchDirection(0.2), d.Switches()[0])
}

func TestRoutingDecisionSet(t *testing.T) {
	ctx := newFixtureContext(t, "SimpleNetwork")
	s, err := NewRandomRoutingDecisionSet(ctx, randengine.New(3), 10)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, []string{"ice", "re", "freight", "sbahn"}, s.Trains())
	for _, name := range s.Trains() {
		d, ok := s.Get(name)
		require.True(t, ok)
		assert.Len(t, d.Breakpoints(), 10)
		assert.Len(t, d.Switches(), ctx.NSwitchVars)
	}
	_, ok := s.Get("nobody")
	assert.False(t, ok)

	a, _ := NewRoutingDecision("a", nil, nil, nil)
	b, _ := NewRoutingDecision("a", nil, nil, nil)
	_, err = NewRoutingDecisionSet([]*RoutingDecision{a, b})
	assert.Error(t, err)
}
