package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetray/internal/game/sim"
)

func TestTabulate(t *testing.T) {
	table := sim.Tabulate(sim.SampleSet{4, 2, 4, 3, 2, 4})
	assert.Equal(t, sim.FrequencyTable{
		{Total: 2, Count: 2},
		{Total: 3, Count: 1},
		{Total: 4, Count: 3},
	}, table)
	assert.Equal(t, 6, table.Samples())
	assert.Equal(t, 3, table.MaxCount())
	assert.InDelta(t, 50.0, table.Percent(4), 1e-9)
	assert.Zero(t, table.Percent(9))
	assert.InDelta(t, 19.0/6.0, table.Mean(), 1e-9)
}

func TestTabulate_Empty(t *testing.T) {
	table := sim.Tabulate(nil)
	assert.Empty(t, table)
	assert.Zero(t, table.Min())
	assert.Zero(t, table.Max())
	assert.Zero(t, table.Mean())
	assert.Zero(t, table.Percent(1))
}

// TestTabulate_Property verifies counts sum to the sample size and totals ascend.
func TestTabulate_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		samples := rapid.SliceOf(rapid.IntRange(-50, 50)).Draw(rt, "samples")
		table := sim.Tabulate(samples)
		assert.Equal(rt, len(samples), table.Samples())
		for i := 1; i < len(table); i++ {
			assert.Less(rt, table[i-1].Total, table[i].Total)
		}
	})
}
