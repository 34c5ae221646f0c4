package tween

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Motion is one in-flight transition.
type Motion interface {
	// At returns the interpolated value at now and whether the transition is complete.
	At(now time.Time) (value float64, done bool)
}

// Curve starts Motions between two values.
type Curve interface {
	Start(from, to float64, start time.Time, duration time.Duration) Motion
}

// Linear returns a Curve that moves at constant speed and completes after exactly duration.
func Linear() Curve {
	return linearCurve{}
}

type linearCurve struct{}

func (linearCurve) Start(from, to float64, start time.Time, duration time.Duration) Motion {
	return &linearMotion{from: from, to: to, start: start, duration: duration}
}

type linearMotion struct {
	from, to float64
	start    time.Time
	duration time.Duration
}

func (m *linearMotion) At(now time.Time) (float64, bool) {
	if m.duration <= 0 {
		return m.to, true
	}
	p := float64(now.Sub(m.start)) / float64(m.duration)
	if p >= 1 {
		return m.to, true
	}
	if p < 0 {
		p = 0
	}
	return m.from + (m.to-m.from)*p, false
}

// Spring returns a Curve driven by a harmonica damped spring stepped at fps.
// It completes once the spring settles within half a unit of the target, or
// after ten durations, whichever comes first.
//
// Precondition: fps > 0, frequency > 0, damping > 0.
func Spring(fps int, frequency, damping float64) Curve {
	return springCurve{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		step:   time.Second / time.Duration(fps),
	}
}

type springCurve struct {
	spring harmonica.Spring
	step   time.Duration
}

func (c springCurve) Start(from, to float64, start time.Time, duration time.Duration) Motion {
	return &springMotion{
		spring:   c.spring,
		step:     c.step,
		pos:      from,
		to:       to,
		last:     start,
		deadline: start.Add(10 * duration),
	}
}

type springMotion struct {
	spring   harmonica.Spring
	step     time.Duration
	pos, vel float64
	to       float64
	last     time.Time
	deadline time.Time
}

func (m *springMotion) At(now time.Time) (float64, bool) {
	if !now.Before(m.deadline) {
		return m.to, true
	}
	steps := int(now.Sub(m.last) / m.step)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.to)
	}
	m.last = now
	if math.Abs(m.to-m.pos) < 0.5 && math.Abs(m.vel) < 0.5 {
		return m.to, true
	}
	return m.pos, false
}
