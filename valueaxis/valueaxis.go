// Package valueaxis animates the value range of a chart as the visible
// data changes and derives the tick labels for it.
package valueaxis

import (
	"math"
	"time"

	"git.sr.ht/~whereswaldon/brushchart/anim"
)

const (
	// DefaultDuration is how long a rescale takes.
	DefaultDuration = 330 * time.Millisecond
	// DefaultTicks is the number of tick labels on the axis.
	DefaultTicks = 5
)

// Direction is the way the previous tick labels leave the axis during a
// rescale.
type Direction int8

const (
	DirectionNone Direction = iota
	// DirectionUp means the maximum shrank and the old labels slide up.
	DirectionUp
	// DirectionDown means the maximum grew and the old labels slide down.
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// Options configures a Tracker.
type Options struct {
	Duration time.Duration
	// Linear selects linear easing instead of cubic ease-in-out.
	Linear bool
	Ticks  int
	// TrackMinimum follows the smallest visible value. Otherwise the range
	// always includes zero.
	TrackMinimum bool
	Now          func() time.Time
}

// Tick is one label on the axis.
type Tick struct {
	Value float64
	// Fraction is the position of the label from the bottom of the axis,
	// in [0,1).
	Fraction float64
}

// Tracker follows a target range with continuous animated transitions.
type Tracker struct {
	opts     Options
	max, min *anim.Source
	// shift runs from 0 to 1 while the labels change.
	shift     *anim.Source
	ticks     []Tick
	prevTicks []Tick
	direction Direction
	started   bool
}

// New returns a tracker that settles at its first Update.
func New(opts Options) *Tracker {
	if opts.Duration < 0 {
		opts.Duration = 0
	}
	if opts.Ticks <= 0 {
		opts.Ticks = DefaultTicks
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{opts: opts}
}

func (t *Tracker) animOpts() anim.Options {
	return anim.Options{Linear: t.opts.Linear, Now: t.opts.Now}
}

// OneTick returns the spacing of n tick labels for an axis topping out at
// max.
func OneTick(max float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Floor(max / float64(n))
}

// Update sets the range the axis should show. Unless TrackMinimum is set,
// minimum is lowered to zero when it is positive. It reports whether the
// target changed.
func (t *Tracker) Update(minimum, maximum float64) bool {
	if !t.opts.TrackMinimum {
		minimum = min(minimum, 0)
	}
	if !t.started {
		t.started = true
		t.max = anim.Static(maximum)
		t.min = anim.Static(minimum)
		t.shift = anim.Static(1)
		t.ticks = t.computeTicks(minimum, maximum)
		return true
	}
	if maximum == t.max.To() && minimum == t.min.To() {
		return false
	}
	switch {
	case maximum < t.max.To():
		t.direction = DirectionUp
	case maximum > t.max.To():
		t.direction = DirectionDown
	}
	t.max = anim.Retarget(t.max, maximum, t.opts.Duration, t.animOpts())
	t.min = anim.Retarget(t.min, minimum, t.opts.Duration, t.animOpts())
	t.prevTicks = t.ticks
	t.ticks = t.computeTicks(minimum, maximum)
	t.shift = anim.Start(0, 1, t.opts.Duration, t.animOpts())
	return true
}

func (t *Tracker) computeTicks(minimum, maximum float64) []Tick {
	n := t.opts.Ticks
	span := maximum - minimum
	oneTick := OneTick(span, n)
	ticks := make([]Tick, 0, n)
	for i := 0; i < n; i++ {
		ticks = append(ticks, Tick{
			Value:    minimum + oneTick*float64(i),
			Fraction: float64(i) / float64(n),
		})
	}
	return ticks
}

// Max returns the animated top of the range.
func (t *Tracker) Max() float64 {
	if t.max == nil {
		return 0
	}
	return t.max.Value()
}

// Min returns the animated bottom of the range.
func (t *Tracker) Min() float64 {
	if t.min == nil {
		return 0
	}
	return t.min.Value()
}

// ExactMax returns the range top the tracker is settling at.
func (t *Tracker) ExactMax() float64 {
	if t.max == nil {
		return 0
	}
	return t.max.To()
}

// Normalize maps v into [0,1] over the animated range. A degenerate range
// maps everything to zero.
func (t *Tracker) Normalize(v float64) float64 {
	lo, hi := t.Min(), t.Max()
	if !(hi > lo) {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// Ticks returns the labels of the settled range.
func (t *Tracker) Ticks() []Tick { return t.ticks }

// Transition describes the label change in flight: the labels being
// replaced, the way they leave, and progress in [0,1].
func (t *Tracker) Transition() (prev []Tick, dir Direction, progress float64) {
	if t.shift == nil {
		return nil, DirectionNone, 1
	}
	progress = t.shift.Value()
	if progress >= 1 {
		return nil, t.direction, 1
	}
	return t.prevTicks, t.direction, progress
}

// Animating reports whether the range or its labels are still moving.
func (t *Tracker) Animating() bool {
	if !t.started {
		return false
	}
	return !t.max.Finished() || !t.min.Finished() || !t.shift.Finished()
}
