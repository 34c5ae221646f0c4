// Package sound owns the roll-sound resource: one player handle created at
// startup and replayed from the beginning on every roll.
package sound

import (
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/config"
)

// Player plays a single sound file through an external command.
//
// A nil *Player is valid and every method on it is a no-op.
type Player struct {
	path    string
	command []string
	logger  *zap.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewPlayer returns a Player for cfg, or nil when sound is disabled, the sound
// file is absent, or the player command cannot be found.
//
// Precondition: logger must be non-nil.
func NewPlayer(cfg config.SoundConfig, logger *zap.Logger) *Player {
	if !cfg.Enabled || len(cfg.Command) == 0 {
		return nil
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		logger.Info("roll sound unavailable", zap.String("path", cfg.Path), zap.Error(err))
		return nil
	}
	bin, err := exec.LookPath(cfg.Command[0])
	if err != nil {
		logger.Info("sound player unavailable", zap.String("command", cfg.Command[0]), zap.Error(err))
		return nil
	}
	command := append([]string{bin}, cfg.Command[1:]...)
	return &Player{path: cfg.Path, command: command, logger: logger}
}

// Play stops any playback in progress and starts the sound from the beginning.
// Failures are logged and otherwise ignored.
func (p *Player) Play() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	args := append(append([]string{}, p.command[1:]...), p.path)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		p.logger.Warn("starting roll sound", zap.Error(err))
		return
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	p.cmd = cmd
	p.done = done
}

// Playing reports whether a playback process is still running.
func (p *Player) Playing() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Close stops any playback in progress.
func (p *Player) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cmd == nil {
		return
	}
	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Kill()
		<-p.done
	}
	p.cmd = nil
	p.done = nil
}
