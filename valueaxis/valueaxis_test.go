package valueaxis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/brushchart/valueaxis"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTracker(opts valueaxis.Options) (*valueaxis.Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	opts.Now = clock.Now
	if opts.Duration == 0 {
		opts.Duration = valueaxis.DefaultDuration
	}
	return valueaxis.New(opts), clock
}

func TestOneTick(t *testing.T) {
	require.Equal(t, 20.0, valueaxis.OneTick(103, 5))
	require.Equal(t, 0.0, valueaxis.OneTick(4, 5))
	require.Equal(t, 0.0, valueaxis.OneTick(10, 0))
}

func TestTracker_FirstUpdateSettles(t *testing.T) {
	tr, _ := newTracker(valueaxis.Options{})
	require.True(t, tr.Update(3, 100))
	require.False(t, tr.Animating())
	require.Equal(t, 100.0, tr.Max())
	require.Equal(t, 0.0, tr.Min(), "range floors at zero")

	ticks := tr.Ticks()
	require.Len(t, ticks, 5)
	for i, tick := range ticks {
		require.Equal(t, 20.0*float64(i), tick.Value)
		require.InDelta(t, float64(i)/5, tick.Fraction, 1e-12)
	}
}

func TestTracker_RescaleAnimatesWithContinuity(t *testing.T) {
	tr, clock := newTracker(valueaxis.Options{})
	tr.Update(0, 100)
	require.True(t, tr.Update(0, 200))
	require.True(t, tr.Animating())
	require.Equal(t, 200.0, tr.ExactMax())
	require.Equal(t, 100.0, tr.Max())

	prev, dir, progress := tr.Transition()
	require.Equal(t, valueaxis.DirectionDown, dir)
	require.Equal(t, 0.0, progress)
	require.Equal(t, 20.0, prev[1].Value)
	require.Equal(t, 40.0, tr.Ticks()[1].Value)

	clock.Advance(165 * time.Millisecond)
	mid := tr.Max()
	require.Greater(t, mid, 100.0)
	require.Less(t, mid, 200.0)

	// Retargeting mid-flight starts from where the range currently is.
	tr.Update(0, 50)
	require.InDelta(t, mid, tr.Max(), 1e-9)
	_, dir, _ = tr.Transition()
	require.Equal(t, valueaxis.DirectionUp, dir)

	clock.Advance(valueaxis.DefaultDuration)
	require.Equal(t, 50.0, tr.Max())
	require.False(t, tr.Animating())
	prev, _, progress = tr.Transition()
	require.Nil(t, prev)
	require.Equal(t, 1.0, progress)
}

func TestTracker_UnchangedTargetIsIgnored(t *testing.T) {
	tr, _ := newTracker(valueaxis.Options{})
	tr.Update(0, 10)
	require.False(t, tr.Update(0, 10))
	require.False(t, tr.Update(5, 10), "positive minimum floors to zero")
	require.False(t, tr.Animating())
}

func TestTracker_TrackMinimum(t *testing.T) {
	tr, _ := newTracker(valueaxis.Options{TrackMinimum: true})
	tr.Update(50, 100)
	require.Equal(t, 50.0, tr.Min())
	require.Equal(t, 50.0, tr.Ticks()[0].Value)
	require.Equal(t, 60.0, tr.Ticks()[1].Value)
	require.Equal(t, 0.5, tr.Normalize(75))
}

func TestTracker_NegativeDataExtendsBelowZero(t *testing.T) {
	tr, _ := newTracker(valueaxis.Options{})
	tr.Update(-20, 80)
	require.Equal(t, -20.0, tr.Min())
	require.Equal(t, 0.2, tr.Normalize(0))
}

func TestTracker_DegenerateRange(t *testing.T) {
	tr, _ := newTracker(valueaxis.Options{})
	tr.Update(0, 0)
	require.Equal(t, 0.0, tr.Normalize(5))
}
