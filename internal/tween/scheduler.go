package tween

import (
	"slices"
	"sync"
	"time"
)

// FrameID identifies a pending frame callback.
type FrameID uint64

// Scheduler is the "schedule next frame" primitive driving an Animator.
//
// Implementations MUST be safe for concurrent use.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// RequestFrame schedules fn to run once on the next frame.
	RequestFrame(fn func(now time.Time)) FrameID
	// CancelFrame drops a pending callback. Unknown or fired IDs are ignored.
	CancelFrame(id FrameID)
}

// TickerScheduler fires each requested frame after a fixed interval on its own timer.
type TickerScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	next   FrameID
	timers map[FrameID]*time.Timer
}

// NewTickerScheduler returns a Scheduler firing frames every interval.
//
// Precondition: interval > 0.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{interval: interval, timers: make(map[FrameID]*time.Timer)}
}

// Now returns the wall clock.
func (s *TickerScheduler) Now() time.Time {
	return time.Now()
}

// RequestFrame runs fn after one interval.
func (s *TickerScheduler) RequestFrame(fn func(now time.Time)) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			fn(time.Now())
		}
	})
	return id
}

// CancelFrame stops a pending frame.
func (s *TickerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// ManualScheduler is a Scheduler whose clock only moves when Advance is called.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	next    FrameID
	pending map[FrameID]func(time.Time)
}

// NewManualScheduler returns a ManualScheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start, pending: make(map[FrameID]func(time.Time))}
}

// Now returns the manual clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// RequestFrame queues fn for the next Advance.
func (s *ManualScheduler) RequestFrame(fn func(now time.Time)) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.pending[s.next] = fn
	return s.next
}

// CancelFrame removes a queued callback.
func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Advance moves the clock forward by d and runs every callback queued before
// the call, in request order. Callbacks requested while running wait for the
// next Advance.
//
// Postcondition: Returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now
	ids := make([]FrameID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(time.Time), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.pending[id])
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}
