package tween_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetray/internal/tween"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newLinear(source int) (*tween.Animator, *tween.ManualScheduler) {
	sched := tween.NewManualScheduler(epoch)
	return tween.New(source, 500*time.Millisecond, sched, tween.Linear()), sched
}

func TestAnimator_StartsIdle(t *testing.T) {
	a, sched := newLinear(7)
	assert.Equal(t, 7, a.Value())
	assert.Equal(t, 7, a.Source())
	assert.False(t, a.Animating())
	assert.Zero(t, sched.Pending())
	assert.NoError(t, a.Wait(context.Background()))
}

func TestAnimator_LinearReachesTarget(t *testing.T) {
	a, sched := newLinear(0)
	a.Set(100)
	assert.True(t, a.Animating())
	assert.Equal(t, 0, a.Value())
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(250 * time.Millisecond)
	assert.Equal(t, 50, a.Value())
	assert.True(t, a.Animating())

	sched.Advance(250 * time.Millisecond)
	assert.Equal(t, 100, a.Value())
	assert.False(t, a.Animating())
	assert.Zero(t, sched.Pending(), "completion must not schedule another frame")
}

func TestAnimator_RoundsEveryFrame(t *testing.T) {
	a, sched := newLinear(0)
	a.Set(3)
	sched.Advance(100 * time.Millisecond) // 0.6
	assert.Equal(t, 1, a.Value())
	sched.Advance(200 * time.Millisecond) // 1.8
	assert.Equal(t, 2, a.Value())
}

func TestAnimator_RetargetStartsFromDisplayedValue(t *testing.T) {
	a, sched := newLinear(0)
	a.Set(100)
	sched.Advance(250 * time.Millisecond)
	require.Equal(t, 50, a.Value())

	a.Set(0)
	assert.Equal(t, 1, sched.Pending(), "retarget must cancel the previous frame")
	sched.Advance(250 * time.Millisecond)
	assert.Equal(t, 25, a.Value())
	sched.Advance(250 * time.Millisecond)
	assert.Equal(t, 0, a.Value())
	assert.False(t, a.Animating())
}

func TestAnimator_SetSameSourceIsNoop(t *testing.T) {
	a, sched := newLinear(5)
	a.Set(5)
	assert.False(t, a.Animating())
	assert.Zero(t, sched.Pending())
}

func TestAnimator_Stop(t *testing.T) {
	a, sched := newLinear(0)
	a.Set(40)
	a.Stop()
	assert.False(t, a.Animating())
	assert.Equal(t, 40, a.Value())
	assert.Zero(t, sched.Pending())
}

func TestAnimator_SubscribeReceivesFrames(t *testing.T) {
	a, sched := newLinear(0)
	var mu sync.Mutex
	var frames []tween.Frame
	unsubscribe := a.Subscribe(func(f tween.Frame) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, f)
	})

	a.Set(10)
	sched.Advance(250 * time.Millisecond)
	sched.Advance(250 * time.Millisecond)
	unsubscribe()
	a.Set(20)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, frames, 3)
	assert.Equal(t, tween.Frame{Value: 0, Target: 10, Animating: true}, frames[0])
	assert.Equal(t, tween.Frame{Value: 5, Target: 10, Animating: true}, frames[1])
	assert.Equal(t, tween.Frame{Value: 10, Target: 10, Animating: false}, frames[2])
}

func TestAnimator_WaitUnblocksOnCompletion(t *testing.T) {
	a, sched := newLinear(0)
	a.Set(10)

	done := make(chan error, 1)
	go func() { done <- a.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned while animating")
	case <-time.After(20 * time.Millisecond):
	}

	sched.Advance(time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after completion")
	}
}

func TestAnimator_WaitHonoursContext(t *testing.T) {
	a, _ := newLinear(0)
	a.Set(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Wait(ctx), context.Canceled)
}

func TestAnimator_SpringSettlesOnTarget(t *testing.T) {
	sched := tween.NewManualScheduler(epoch)
	a := tween.New(0, 500*time.Millisecond, sched, tween.Spring(60, 6, 0.5))
	a.Set(12)

	for i := 0; i < 1000 && a.Animating(); i++ {
		sched.Advance(16 * time.Millisecond)
	}
	assert.False(t, a.Animating())
	assert.Equal(t, 12, a.Value())
}

func TestAnimator_TickerScheduler(t *testing.T) {
	sched := tween.NewTickerScheduler(time.Millisecond)
	a := tween.New(0, 20*time.Millisecond, sched, tween.Linear())
	a.Set(9)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Wait(ctx))
	assert.Equal(t, 9, a.Value())
}

// Property: a linear transition always ends exactly on its target with no
// frame left pending, whatever the step sizes.
func TestAnimator_Linear_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.IntRange(-1000, 1000).Draw(rt, "from")
		to := rapid.IntRange(-1000, 1000).Draw(rt, "to")
		steps := rapid.SliceOfN(rapid.IntRange(1, 200), 1, 50).Draw(rt, "steps")

		a, sched := newLinear(from)
		a.Set(to)
		lo, hi := min(from, to), max(from, to)
		for _, ms := range steps {
			sched.Advance(time.Duration(ms) * time.Millisecond)
			v := a.Value()
			assert.GreaterOrEqual(rt, v, lo)
			assert.LessOrEqual(rt, v, hi)
		}
		sched.Advance(time.Second)
		assert.Equal(rt, to, a.Value())
		assert.False(rt, a.Animating())
		assert.Zero(rt, sched.Pending())
	})
}
