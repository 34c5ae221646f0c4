package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicetray/internal/game/command"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/game/preset"
	"github.com/cory-johannsen/dicetray/internal/game/sim"
)

// HistogramWidth is the bar length of the most frequent total.
const HistogramWidth = 40

// RenderRoll formats the audit line for a settled roll, e.g.
// "2d6+3 → [4 5] +3 = 12".
func RenderRoll(p Palette, r dice.RollResult) string {
	if r.Expression == "" {
		return p.Colorize(Yellow, "nothing to roll")
	}
	return p.Colorize(Dim, r.String()) + "\n" +
		p.Colorf(BrightYellow, "  %d", r.Total())
}

// RenderFrame formats one animation frame of the displayed total. The leading
// carriage return overwrites the previous frame.
func RenderFrame(p Palette, value int) string {
	return "\r" + p.Colorf(BrightYellow, "  %d", value) + clearLine
}

// RenderHistogram formats table as one bar per observed total, each scaled
// against the most frequent total and labelled with its percentage.
//
// Precondition: width < 1 selects HistogramWidth.
// Postcondition: Returns one header line plus one line per bucket.
func RenderHistogram(p Palette, expr string, table sim.FrequencyTable, width int) string {
	if width < 1 {
		width = HistogramWidth
	}
	var b strings.Builder
	b.WriteString(p.Colorf(BrightWhite, "%s: %d samples, mean %.2f, range %d..%d",
		expr, table.Samples(), table.Mean(), table.Min(), table.Max()))
	b.WriteString("\n")

	label := 1
	for _, bucket := range table {
		label = max(label, len(fmt.Sprint(bucket.Total)))
	}
	peak := table.MaxCount()
	for _, bucket := range table {
		n := 0
		if peak > 0 {
			n = bucket.Count * width / peak
		}
		if n == 0 && bucket.Count > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "  %*d %s %5.2f%%\n",
			label, bucket.Total,
			p.Colorize(Green, strings.Repeat("#", n)+strings.Repeat(" ", width-n)),
			table.Percent(bucket.Total))
	}
	return b.String()
}

// RenderPresets lists presets, one per line.
func RenderPresets(p Palette, presets []preset.Preset) string {
	if len(presets) == 0 {
		return p.Colorize(Yellow, "no presets defined") + "\n"
	}
	width := 0
	for _, ps := range presets {
		width = max(width, len(ps.Name))
	}
	var b strings.Builder
	b.WriteString(p.Colorize(BrightWhite, "Presets:"))
	b.WriteString("\n")
	for _, ps := range presets {
		line := fmt.Sprintf("  %s %s", p.Colorf(Green, "%-*s", width, ps.Name), ps.Expression)
		if ps.Description != "" {
			line += p.Colorf(Dim, "  %s", ps.Description)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// helpCategories orders the categories shown by RenderHelp.
var helpCategories = []struct {
	name  string
	label string
}{
	{command.CategoryDice, "Dice"},
	{command.CategorySystem, "System"},
}

// RenderHelp lists the registry's commands organized by category.
func RenderHelp(p Palette, registry *command.Registry) string {
	var b strings.Builder
	b.WriteString(p.Colorize(BrightWhite, "Available commands:"))
	b.WriteString("\n")

	byCategory := registry.CommandsByCategory()
	for _, cat := range helpCategories {
		cmds := byCategory[cat.name]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(p.Colorf(BrightYellow, "  %s:", cat.label))
		b.WriteString("\n")
		for _, cmd := range cmds {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage += " " + cmd.Usage
			}
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			b.WriteString(p.Colorf(Green, "    %-28s", usage) + cmd.Help + aliases)
			b.WriteString("\n")
		}
	}
	b.WriteString(p.Colorize(Dim, "  Any other line is rolled as an expression, e.g. 2d6+3."))
	b.WriteString("\n")
	return b.String()
}
