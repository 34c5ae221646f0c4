// Package tween animates a displayed integer toward a source value one frame
// at a time on a pluggable Scheduler and Curve.
package tween

import (
	"context"
	"math"
	"sync"
	"time"
)

// Frame is the state delivered to subscribers after every update.
type Frame struct {
	Value     int
	Target    int
	Animating bool
}

// Animator holds a displayed value that follows its source over a fixed duration.
//
// Invariant: when Animating() is false, Value() == Source().
type Animator struct {
	sched    Scheduler
	curve    Curve
	duration time.Duration

	mu        sync.Mutex
	source    int
	value     int
	animating bool
	motion    Motion
	frame     FrameID
	gen       uint64
	idle      chan struct{}
	nextSub   int
	subs      map[int]func(Frame)
}

// New returns an idle Animator displaying source.
//
// Precondition: sched and curve must be non-nil.
func New(source int, duration time.Duration, sched Scheduler, curve Curve) *Animator {
	idle := make(chan struct{})
	close(idle)
	return &Animator{
		sched:    sched,
		curve:    curve,
		duration: duration,
		source:   source,
		value:    source,
		idle:     idle,
		subs:     make(map[int]func(Frame)),
	}
}

// Source returns the most recent target.
func (a *Animator) Source() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

// Value returns the displayed value.
func (a *Animator) Value() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Animating reports whether a transition is in progress.
func (a *Animator) Animating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.animating
}

// Subscribe registers fn to receive every Frame and returns a function that
// removes it. fn runs on the scheduler's goroutine and must not block.
func (a *Animator) Subscribe(fn func(Frame)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextSub++
	id := a.nextSub
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// Set changes the source. A changed source starts a transition from the
// displayed value; a transition already in flight is cancelled and retargeted.
// Setting the current source is a no-op.
//
// Postcondition: Source() == target.
func (a *Animator) Set(target int) {
	a.mu.Lock()
	if target == a.source {
		a.mu.Unlock()
		return
	}
	a.source = target
	if a.animating {
		a.sched.CancelFrame(a.frame)
	} else {
		a.idle = make(chan struct{})
	}
	a.animating = true
	a.gen++
	a.motion = a.curve.Start(float64(a.value), float64(target), a.sched.Now(), a.duration)
	a.frame = a.sched.RequestFrame(a.tick(a.gen))
	f, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, f)
}

// Stop cancels any transition and snaps the displayed value to the source.
func (a *Animator) Stop() {
	a.mu.Lock()
	if !a.animating {
		a.mu.Unlock()
		return
	}
	a.sched.CancelFrame(a.frame)
	a.finishLocked()
	f, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, f)
}

// Wait blocks until no transition is in progress or ctx is done.
func (a *Animator) Wait(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Animator) tick(gen uint64) func(time.Time) {
	return func(now time.Time) {
		a.mu.Lock()
		if gen != a.gen || !a.animating {
			a.mu.Unlock()
			return
		}
		v, done := a.motion.At(now)
		a.value = int(math.Round(v))
		if done {
			a.finishLocked()
		} else {
			a.frame = a.sched.RequestFrame(a.tick(gen))
		}
		f, subs := a.snapshotLocked()
		a.mu.Unlock()

		notify(subs, f)
	}
}

func (a *Animator) finishLocked() {
	a.value = a.source
	a.animating = false
	a.motion = nil
	close(a.idle)
}

func (a *Animator) snapshotLocked() (Frame, []func(Frame)) {
	subs := make([]func(Frame), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	return Frame{Value: a.value, Target: a.source, Animating: a.animating}, subs
}

func notify(subs []func(Frame), f Frame) {
	for _, fn := range subs {
		fn(f)
	}
}
