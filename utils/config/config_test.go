package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/railtraj/utils/config"
)

const sample = `
input:
  network:
    file: testdata/SimpleNetwork/network.yaml
  timetable:
    db: rail
    col: timetable
control:
  step:
    interval: 20
  seed: 7
  validate: true
output:
  csv: out/trajectory.csv
`

func TestParse(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.Control.Step.Interval)
	assert.Equal(t, uint64(7), c.Control.Seed)
	assert.Equal(t, "testdata/SimpleNetwork/network.yaml", c.Input.Network.String())
	assert.Equal(t, "rail.timetable", c.Input.Timetable.String())
	assert.Equal(t, "rail", c.Input.Timetable.GetDb())
	assert.Equal(t, "timetable", c.Input.Timetable.GetColl())
	assert.Equal(t, "out/trajectory.csv", c.Output.CSV)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := config.Parse([]byte("control:\n  step:\n    interval: 1\n  speed: 3\n"))
	assert.Error(t, err)
}

func TestRuntimeConfigDefaults(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 10, rc.C.Targets)
	assert.True(t, rc.C.Validate)

	c.Control.Step.Interval = 0
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)
}
