// Package console provides the interactive dice tray: a line-oriented command
// loop that rolls, animates and simulates dice expressions on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/game/command"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/game/preset"
	"github.com/cory-johannsen/dicetray/internal/game/sim"
	"github.com/cory-johannsen/dicetray/internal/sound"
	"github.com/cory-johannsen/dicetray/internal/storage/preference"
	"github.com/cory-johannsen/dicetray/internal/tween"
)

// Deps carries the collaborators a Console drives.
type Deps struct {
	// Registry resolves command words; nil selects command.DefaultRegistry().
	Registry *command.Registry
	// Roller evaluates expressions for the roll command.
	Roller *dice.Roller
	// Simulator backs the sim command.
	Simulator *sim.Simulator
	// Expression is the persisted current expression.
	Expression *preference.Preference[string]
	// Display animates the shown total toward each new roll.
	Display *tween.Animator
	// Sound is played on every roll; nil disables sound.
	Sound *sound.Player
	// Presets are the named expressions accepted wherever an expression is.
	Presets []preset.Preset
	// Interactive enables ANSI color and live animation frames.
	Interactive bool
	// Logger receives command diagnostics.
	Logger *zap.Logger
}

// Console is a single-user dice tray session over a reader and writer.
type Console struct {
	in       io.Reader
	registry *command.Registry
	roller   *dice.Roller
	sim      *sim.Simulator
	expr     *preference.Preference[string]
	display  *tween.Animator
	sound    *sound.Player
	presets  []preset.Preset
	palette  Palette
	live     bool
	logger   *zap.Logger

	// running is held for the duration of every command.
	running sync.Mutex

	mu        sync.Mutex
	out       io.Writer
	animating bool
}

// HandlerFunc executes one resolved command against a Console.
type HandlerFunc func(c *Console, ctx context.Context, parsed command.ParseResult) (quit bool, err error)

// handlerMap is the single source of truth for console command dispatch.
// To add a command: add a Handler constant to commands.go AND an entry here.
var handlerMap = map[string]HandlerFunc{
	command.HandlerRoll:     handleRoll,
	command.HandlerExpr:     handleExpr,
	command.HandlerSimulate: handleSimulate,
	command.HandlerPresets:  handlePresets,
	command.HandlerHelp:     handleHelp,
	command.HandlerQuit:     handleQuit,
}

// Handlers returns the map from Handler constant to console handler.
// Exported so tests can verify every built-in command is wired.
func Handlers() map[string]HandlerFunc {
	return handlerMap
}

// New creates a Console reading commands from in and writing to out.
//
// Precondition: in, out and every Deps field except Registry and Sound must be non-nil.
func New(in io.Reader, out io.Writer, deps Deps) *Console {
	registry := deps.Registry
	if registry == nil {
		registry = command.DefaultRegistry()
	}
	return &Console{
		in:       in,
		out:      out,
		registry: registry,
		roller:   deps.Roller,
		sim:      deps.Simulator,
		expr:     deps.Expression,
		display:  deps.Display,
		sound:    deps.Sound,
		presets:  deps.Presets,
		palette:  NewPalette(deps.Interactive),
		live:     deps.Interactive,
		logger:   deps.Logger,
	}
}

// Run reads and executes commands until EOF, a quit command, or ctx is done.
//
// Postcondition: Returns nil on EOF, quit or cancellation; otherwise the
// first read or write error.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	if err := c.writeLine(c.palette.Colorf(BrightWhite, "Dice tray. Current expression: %s. Type help for commands.", c.current())); err != nil {
		return err
	}
	for {
		if err := c.write(c.palette.Colorize(BrightCyan, "> ")); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				_ = c.write("\n")
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			quit, err := c.Execute(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs a single input line. A line whose first word is not a command
// is rolled as an expression.
//
// Postcondition: quit is true when the line asked to end the session.
func (c *Console) Execute(ctx context.Context, line string) (quit bool, err error) {
	c.running.Lock()
	defer c.running.Unlock()

	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false, nil
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		c.logger.Debug("rolling bare line", zap.String("line", parsed.Line))
		return handleRoll(c, ctx, command.ParseResult{RawArgs: parsed.Line, Line: parsed.Line})
	}
	handler, ok := handlerMap[cmd.Handler]
	if !ok {
		return false, c.writeLine(c.palette.Colorf(Red, "command %q is not available here", cmd.Name))
	}
	c.logger.Debug("command",
		zap.String("command", cmd.Name),
		zap.String("args", parsed.RawArgs),
	)
	return handler(c, ctx, parsed)
}

// Stop halts any animation in progress and waits for the command being
// executed, if any, to return.
//
// Postcondition: No command is running when Stop returns, so collaborators
// such as the preference store may be released afterwards.
func (c *Console) Stop() {
	c.display.Stop()
	c.running.Lock()
	defer c.running.Unlock()
}

func (c *Console) current() string {
	return c.expr.Get()
}

// resolveExpression maps a preset name to its expression; any other argument
// is taken as an expression. An empty argument yields the current expression.
func (c *Console) resolveExpression(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return c.current()
	}
	if p, ok := preset.Find(c.presets, arg); ok {
		return p.Expression
	}
	return arg
}

// remember persists expr as the current expression. A store failure is
// reported but does not abort the command.
func (c *Console) remember(ctx context.Context, expr string) error {
	if expr == c.current() {
		return nil
	}
	if err := c.expr.Set(ctx, expr); err != nil {
		c.logger.Warn("saving current expression",
			zap.String("expression", expr),
			zap.Error(err),
		)
		return c.writeLine(c.palette.Colorf(Yellow, "could not save %s as the current expression", expr))
	}
	return nil
}

func handleRoll(c *Console, ctx context.Context, parsed command.ParseResult) (bool, error) {
	expr := c.resolveExpression(parsed.RawArgs)
	if strings.TrimSpace(expr) == "" {
		return false, c.writeLine(c.palette.Colorize(Yellow, "nothing to roll"))
	}
	if err := c.remember(ctx, expr); err != nil {
		return false, err
	}

	result := c.roller.RollExpr(expr)
	c.sound.Play()
	if err := c.animate(ctx, result.Total()); err != nil {
		return false, err
	}
	return false, c.writeLine(RenderRoll(c.palette, result))
}

// animate moves the displayed total to total and blocks until it settles.
// When live, every frame overwrites the current terminal line.
func (c *Console) animate(ctx context.Context, total int) error {
	c.mu.Lock()
	c.animating = c.live
	c.mu.Unlock()

	unsubscribe := c.display.Subscribe(func(f tween.Frame) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.animating {
			_, _ = io.WriteString(c.out, RenderFrame(c.palette, f.Value))
		}
	})
	defer unsubscribe()

	c.display.Set(total)
	err := c.display.Wait(ctx)

	c.mu.Lock()
	wasLive := c.animating
	c.animating = false
	var werr error
	if wasLive {
		_, werr = io.WriteString(c.out, "\r"+clearLine)
	}
	c.mu.Unlock()

	if err != nil {
		c.display.Stop()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	return werr
}

func handleExpr(c *Console, ctx context.Context, parsed command.ParseResult) (bool, error) {
	if parsed.RawArgs == "" {
		return false, c.writeLine(c.palette.Colorf(White, "current expression: %s", c.current()))
	}
	expr := c.resolveExpression(parsed.RawArgs)
	if err := c.remember(ctx, expr); err != nil {
		return false, err
	}
	return false, c.writeLine(c.palette.Colorf(Green, "current expression: %s", expr))
}

func handleSimulate(c *Console, _ context.Context, parsed command.ParseResult) (bool, error) {
	expr := c.resolveExpression(parsed.RawArgs)
	table := c.sim.RunSimulation(expr)
	return false, c.write(RenderHistogram(c.palette, expr, table, HistogramWidth))
}

func handlePresets(c *Console, _ context.Context, _ command.ParseResult) (bool, error) {
	return false, c.write(RenderPresets(c.palette, c.presets))
}

func handleHelp(c *Console, _ context.Context, _ command.ParseResult) (bool, error) {
	return false, c.write(RenderHelp(c.palette, c.registry))
}

func handleQuit(c *Console, _ context.Context, _ command.ParseResult) (bool, error) {
	return true, c.writeLine(c.palette.Colorize(Dim, "Goodbye."))
}

func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (c *Console) writeLine(s string) error {
	return c.write(s + "\n")
}
