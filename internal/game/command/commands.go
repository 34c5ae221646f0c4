// Package command provides the dice tray's command registry, line parser, and
// built-in command definitions.
package command

// Categories for organizing commands in help output.
const (
	CategoryDice   = "dice"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to console handlers.
const (
	HandlerRoll     = "roll"
	HandlerExpr     = "expr"
	HandlerSimulate = "simulate"
	HandlerPresets  = "presets"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command defines a user-invocable console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown in help, e.g. "[expression|preset]".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command (dice, system).
	Category string
	// Handler maps to the console handler.
	Handler string
}

// BuiltinCommands returns all built-in console commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "roll", Aliases: []string{"r"}, Usage: "[expression|preset]", Help: "Roll the current expression, or roll and remember a new one", Category: CategoryDice, Handler: HandlerRoll},
		{Name: "expr", Aliases: []string{"e", "set"}, Usage: "<expression|preset>", Help: "Show or change the current expression without rolling", Category: CategoryDice, Handler: HandlerExpr},
		{Name: "sim", Aliases: []string{"s", "histogram"}, Usage: "[expression|preset]", Help: "Simulate an expression and draw its outcome histogram", Category: CategoryDice, Handler: HandlerSimulate},
		{Name: "presets", Aliases: []string{"p"}, Help: "List named expressions", Category: CategoryDice, Handler: HandlerPresets},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the dice tray", Category: CategorySystem, Handler: HandlerQuit},
	}
}
