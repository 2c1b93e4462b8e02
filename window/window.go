// Package window holds the visible portion of a data series as a pair of
// animated endpoints measured in fractional data-index units.
package window

import (
	"errors"
	"fmt"
	"math"
	"time"

	"git.sr.ht/~whereswaldon/brushchart/anim"
)

var (
	// ErrEmptySeries is returned when a window is requested for a series
	// without any points.
	ErrEmptySeries = errors.New("window: empty series")
	// ErrSeriesTooShort is returned when a series cannot hold the minimum
	// number of points in view.
	ErrSeriesTooShort = errors.New("window: series shorter than minimum window")
	// ErrNonPositiveLength reports a window whose endpoints have crossed.
	ErrNonPositiveLength = errors.New("window: non-positive length")
)

const (
	// DefaultMinPointsInView is the narrowest window a brush may select.
	DefaultMinPointsInView = 1
	// DefaultDuration is how long an endpoint takes to reach a new target.
	DefaultDuration = 100 * time.Millisecond
)

// Options configures a Model.
type Options struct {
	// MinPointsInView is the minimum span, in points, of a settled window.
	MinPointsInView float64
	// Duration of endpoint transitions.
	Duration time.Duration
	// Cubic eases endpoint transitions instead of tracking linearly.
	Cubic bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MinPointsInView <= 0 {
		o.MinPointsInView = DefaultMinPointsInView
	}
	if o.Duration < 0 {
		o.Duration = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Exact describes the settled window, the targets of both endpoints.
type Exact struct {
	StartWith, EndAt, Length float64
}

// Snapshot is a read of the window at one instant.
type Snapshot struct {
	// StartWith and EndAt are the live, possibly animating, endpoints.
	StartWith, EndAt float64
	// Length is EndAt-StartWith.
	Length float64
	Exact  Exact
	// StartPointIndex is the first data point touched by the window.
	StartPointIndex int
	// EndPointIndex is the last data point touched by the window.
	EndPointIndex int
	// LeftPad and RightPad are the fractional parts of the endpoints.
	LeftPad, RightPad float64
}

// Reader is the read-only view of a window handed to renderers, axes and
// popovers.
type Reader interface {
	Window() Snapshot
	WholeWindow() Snapshot
	HasActiveAnimation() bool
}

// Model is the mutable window. Only the brush writes to it.
type Model struct {
	n           int
	opts        Options
	start, end  *anim.Source
	exactLength float64
}

var _ Reader = (*Model)(nil)

// New creates the window [startWith, endAt] over a series of n points.
// The endpoints are clamped to the window invariants and start settled.
func New(n int, startWith, endAt float64, opts Options) (*Model, error) {
	opts = opts.withDefaults()
	if n <= 0 {
		return nil, ErrEmptySeries
	}
	maxIndex := float64(n - 1)
	if maxIndex < opts.MinPointsInView {
		return nil, fmt.Errorf("%w: %d points, need %v", ErrSeriesTooShort, n, opts.MinPointsInView+1)
	}
	endAt = clamp(endAt, opts.MinPointsInView, maxIndex)
	startWith = clamp(startWith, 0, endAt-opts.MinPointsInView)
	m := &Model{
		n:     n,
		opts:  opts,
		start: anim.Static(startWith),
		end:   anim.Static(endAt),
	}
	m.exactLength = m.end.To() - m.start.To()
	return m, nil
}

// Len returns the number of points in the underlying series.
func (m *Model) Len() int { return m.n }

// MaxIndex returns the index of the last point, N-1.
func (m *Model) MaxIndex() float64 { return float64(m.n - 1) }

// MinPointsInView returns the configured minimum span.
func (m *Model) MinPointsInView() float64 { return m.opts.MinPointsInView }

// ExactLength returns the span of the settled window.
func (m *Model) ExactLength() float64 { return m.exactLength }

// Exact returns the settled window without consulting the animations.
func (m *Model) Exact() Exact {
	return Exact{
		StartWith: m.start.To(),
		EndAt:     m.end.To(),
		Length:    m.exactLength,
	}
}

// transition retargets src from its value at at. Both endpoints are
// retargeted together so they share one timeline and the live start stays
// below the live end.
func (m *Model) transition(src *anim.Source, to float64, at time.Time) *anim.Source {
	return anim.Retarget(src, to, m.opts.Duration, anim.Options{
		Linear:    !m.opts.Cubic,
		StartTime: at,
		Now:       m.opts.Now,
	})
}

// UpdateStartWith moves the start of the window towards points and returns
// the committed start.
func (m *Model) UpdateStartWith(points float64) float64 {
	return m.UpdateStartWithAt(points, m.opts.Now())
}

// UpdateStartWithAt is UpdateStartWith with an explicit transition start.
func (m *Model) UpdateStartWithAt(points float64, at time.Time) float64 {
	if math.IsNaN(points) {
		return m.start.To()
	}
	target := clamp(points, 0, m.MaxIndex())
	target = min(target, m.end.To()-m.opts.MinPointsInView)
	target = max(target, 0)
	if target != m.start.To() {
		m.start = m.transition(m.start, target, at)
		m.end = m.transition(m.end, m.end.To(), at)
	}
	m.exactLength = m.end.To() - m.start.To()
	return m.start.To()
}

// UpdateEndAt moves the end of the window towards points and returns the
// committed end.
func (m *Model) UpdateEndAt(points float64) float64 {
	return m.UpdateEndAtAt(points, m.opts.Now())
}

// UpdateEndAtAt is UpdateEndAt with an explicit transition start.
func (m *Model) UpdateEndAtAt(points float64, at time.Time) float64 {
	if math.IsNaN(points) {
		return m.end.To()
	}
	target := clamp(points, m.opts.MinPointsInView, m.MaxIndex())
	target = max(target, m.start.To()+m.opts.MinPointsInView)
	target = min(target, m.MaxIndex())
	if target != m.end.To() {
		m.end = m.transition(m.end, target, at)
		m.start = m.transition(m.start, m.start.To(), at)
	}
	m.exactLength = m.end.To() - m.start.To()
	return m.end.To()
}

// Window reads the live window. It panics if the endpoints have crossed,
// which can only happen if the clamps above are broken.
func (m *Model) Window() Snapshot {
	return m.snapshot(m.start.Value(), m.end.Value(), m.Exact())
}

// WholeWindow returns the settled window covering the entire series.
func (m *Model) WholeWindow() Snapshot {
	maxIndex := m.MaxIndex()
	return m.snapshot(0, maxIndex, Exact{StartWith: 0, EndAt: maxIndex, Length: maxIndex})
}

func (m *Model) snapshot(startWith, endAt float64, exact Exact) Snapshot {
	length := endAt - startWith
	if !(length > 0) || !(exact.Length > 0) {
		panic(fmt.Errorf("%w: [%v, %v] (settled [%v, %v])", ErrNonPositiveLength, startWith, endAt, exact.StartWith, exact.EndAt))
	}
	return Snapshot{
		StartWith:       startWith,
		EndAt:           endAt,
		Length:          length,
		Exact:           exact,
		StartPointIndex: int(math.Floor(startWith)),
		EndPointIndex:   int(math.Ceil(endAt)),
		LeftPad:         math.Mod(startWith, 1),
		RightPad:        math.Mod(endAt, 1),
	}
}

// HasActiveAnimation reports whether either endpoint is still moving.
func (m *Model) HasActiveAnimation() bool {
	return !m.start.Finished() || !m.end.Finished()
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
