// Package anim provides time-bounded eased scalar transitions. Every visual
// transition in the chart is driven by a Source polled once per frame.
package anim

import (
	"time"
)

// Easing maps linear progress in [0,1] to visual progress in [0,1].
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 {
	return t
}

// CubicInOut accelerates through the first half of the transition and
// decelerates through the second.
func CubicInOut(t float64) float64 {
	if t < .5 {
		return 4 * t * t * t
	}
	u := 1 - t
	return 1 - 4*u*u*u
}

// Options configures a Source. The zero value produces a cubic ease-in-out
// transition starting now.
type Options struct {
	// Linear selects linear easing instead of cubic ease-in-out.
	Linear bool
	// StartTime overrides the moment the transition begins.
	StartTime time.Time
	// OnComplete is invoked exactly once, when the source first observes
	// that its transition has finished.
	OnComplete func()
	// Now supplies the clock used by Value. Defaults to time.Now.
	Now func() time.Time
}

// Source is a single transition from one value to another. A Source is
// never retargeted; callers replace it with a new one built by Retarget.
type Source struct {
	from, to   float64
	start      time.Time
	duration   time.Duration
	easing     Easing
	now        func() time.Time
	onComplete func()
	finished   bool
}

// Start begins a transition from from to to lasting d.
func Start(from, to float64, d time.Duration, opts Options) *Source {
	s := &Source{
		from:       from,
		to:         to,
		start:      opts.StartTime,
		duration:   d,
		easing:     CubicInOut,
		now:        opts.Now,
		onComplete: opts.OnComplete,
	}
	if opts.Linear {
		s.easing = Linear
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.start.IsZero() {
		s.start = s.now()
	}
	if from == to || d <= 0 {
		// Nothing to interpolate, and dividing by a zero duration would
		// poison the progress computation.
		s.finish()
	}
	return s
}

// Static returns a finished source that always reports v.
func Static(v float64) *Source {
	return Start(v, v, 0, Options{})
}

// Retarget replaces src with a transition towards to that begins at the
// value src has at the new start time, so the visible value never jumps.
// A nil src starts from to.
func Retarget(src *Source, to float64, d time.Duration, opts Options) *Source {
	if opts.Now == nil && src != nil {
		opts.Now = src.now
	}
	if opts.StartTime.IsZero() {
		if opts.Now != nil {
			opts.StartTime = opts.Now()
		} else {
			opts.StartTime = time.Now()
		}
	}
	from := to
	if src != nil {
		from = src.ValueAt(opts.StartTime)
	}
	return Start(from, to, d, opts)
}

func (s *Source) finish() {
	if s.finished {
		return
	}
	s.finished = true
	if s.onComplete != nil {
		s.onComplete()
	}
}

// Value returns the eased value of the transition now.
func (s *Source) Value() float64 {
	if s.finished {
		return s.to
	}
	return s.ValueAt(s.now())
}

// ValueAt returns the eased value of the transition at t. Querying a time
// at or after the end commits the source to its finished state.
func (s *Source) ValueAt(t time.Time) float64 {
	if s.finished {
		return s.to
	}
	progress := float64(t.Sub(s.start)) / float64(s.duration)
	if progress >= 1 {
		s.finish()
		return s.to
	}
	if progress <= 0 {
		return s.from
	}
	return s.from + (s.to-s.from)*s.easing(progress)
}

// From returns the value the transition started at.
func (s *Source) From() float64 { return s.from }

// To returns the value the transition settles at.
func (s *Source) To() float64 { return s.to }

// Finished reports whether the transition has completed as of now.
func (s *Source) Finished() bool {
	if !s.finished {
		s.Value()
	}
	return s.finished
}

// Duration returns the length of the transition.
func (s *Source) Duration() time.Duration { return s.duration }
