package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicetray/internal/game/command"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/game/sim"
)

var plain = NewPalette(false)

func TestRenderRoll(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12\n  12", RenderRoll(plain, r))
}

func TestRenderRoll_EmptyExpression(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "nothing to roll", RenderRoll(plain, dice.RollResult{}))
	})
}

func TestRenderFrame(t *testing.T) {
	assert.Equal(t, "\r  17"+clearLine, RenderFrame(plain, 17))
}

func TestRenderHistogram(t *testing.T) {
	table := sim.Tabulate(sim.SampleSet{2, 3, 3, 3, 12, 12})
	out := RenderHistogram(plain, "2d6", table, 6)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "2d6: 6 samples, mean 5.83, range 2..12", lines[0])
	assert.Equal(t, "   2 ##     16.67%", lines[1])
	assert.Equal(t, "   3 ###### 50.00%", lines[2])
	assert.Equal(t, "  12 ####   33.33%", lines[3])
}

func TestRenderHistogram_SmallCountsStillVisible(t *testing.T) {
	samples := make(sim.SampleSet, 0, 1001)
	for range 1000 {
		samples = append(samples, 1)
	}
	samples = append(samples, 2)
	out := RenderHistogram(plain, "x", sim.Tabulate(samples), 0)
	assert.Contains(t, out, "  2 #"+strings.Repeat(" ", HistogramWidth-1))
}

func TestRenderHistogram_Empty(t *testing.T) {
	assert.Equal(t, "x: 0 samples, mean 0.00, range 0..0\n", RenderHistogram(plain, "x", nil, 10))
}

func TestRenderHelp_ListsEveryCommand(t *testing.T) {
	registry := command.DefaultRegistry()
	out := RenderHelp(plain, registry)
	for _, cmd := range registry.Commands() {
		assert.Contains(t, out, cmd.Name)
		assert.Contains(t, out, cmd.Help)
	}
	assert.Less(t, strings.Index(out, "Dice:"), strings.Index(out, "System:"))
}
