package anim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/brushchart/anim"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStart_EqualEndpointsFinishImmediately(t *testing.T) {
	src := anim.Start(5, 5, time.Second, anim.Options{})
	require.True(t, src.Finished())
	require.Equal(t, 5.0, src.Value())
}

func TestStart_ZeroDurationFinishesImmediately(t *testing.T) {
	src := anim.Start(0, 10, 0, anim.Options{})
	require.True(t, src.Finished())
	require.Equal(t, 10.0, src.Value())
}

func TestStart_DegenerateFiresOnCompleteOnce(t *testing.T) {
	calls := 0
	src := anim.Start(3, 3, time.Second, anim.Options{OnComplete: func() { calls++ }})
	src.Value()
	src.Value()
	require.Equal(t, 1, calls)
}

func TestSource_ProgressFollowsWallClock(t *testing.T) {
	clock := newFakeClock()
	src := anim.Start(0, 100, time.Second, anim.Options{Linear: true, Now: clock.Now})

	require.Equal(t, 0.0, src.Value())
	clock.Advance(250 * time.Millisecond)
	require.InDelta(t, 25.0, src.Value(), 1e-9)
	// Skipping frames must not matter, only elapsed time does.
	clock.Advance(500 * time.Millisecond)
	require.InDelta(t, 75.0, src.Value(), 1e-9)
	require.False(t, src.Finished())

	clock.Advance(time.Hour)
	require.Equal(t, 100.0, src.Value())
	require.True(t, src.Finished())
}

func TestSource_CubicEasing(t *testing.T) {
	clock := newFakeClock()
	src := anim.Start(0, 1, time.Second, anim.Options{Now: clock.Now})

	clock.Advance(250 * time.Millisecond)
	require.InDelta(t, 4*0.25*0.25*0.25, src.Value(), 1e-9)
	clock.Advance(250 * time.Millisecond)
	require.InDelta(t, 0.5, src.Value(), 1e-9)
	clock.Advance(250 * time.Millisecond)
	require.InDelta(t, 1-4*0.25*0.25*0.25, src.Value(), 1e-9)
}

func TestSource_MonotonicAndBounded(t *testing.T) {
	for _, linear := range []bool{true, false} {
		for _, tc := range []struct{ from, to float64 }{{0, 10}, {10, 0}, {-3, 7.5}} {
			clock := newFakeClock()
			src := anim.Start(tc.from, tc.to, 300*time.Millisecond, anim.Options{Linear: linear, Now: clock.Now})
			lo, hi := min(tc.from, tc.to), max(tc.from, tc.to)
			prev := src.Value()
			for i := 0; i < 40; i++ {
				clock.Advance(10 * time.Millisecond)
				v := src.Value()
				require.GreaterOrEqual(t, v, lo)
				require.LessOrEqual(t, v, hi)
				if tc.to > tc.from {
					require.GreaterOrEqual(t, v, prev)
				} else {
					require.LessOrEqual(t, v, prev)
				}
				prev = v
			}
			require.Equal(t, tc.to, src.Value())
		}
	}
}

func TestSource_OnCompleteExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	src := anim.Start(0, 1, 100*time.Millisecond, anim.Options{
		Now:        clock.Now,
		OnComplete: func() { calls++ },
	})
	src.Value()
	require.Equal(t, 0, calls)
	clock.Advance(time.Second)
	for i := 0; i < 5; i++ {
		require.Equal(t, 1.0, src.Value())
	}
	require.True(t, src.Finished())
	require.Equal(t, 1, calls)
}

func TestSource_StartTimeOverride(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now().Add(-500 * time.Millisecond)
	src := anim.Start(0, 10, time.Second, anim.Options{Linear: true, StartTime: start, Now: clock.Now})
	require.InDelta(t, 5.0, src.Value(), 1e-9)
}

func TestRetarget_Continuity(t *testing.T) {
	clock := newFakeClock()
	old := anim.Start(0, 100, time.Second, anim.Options{Now: clock.Now})
	for _, step := range []time.Duration{130, 270, 190} {
		clock.Advance(step * time.Millisecond)
		before := old.Value()
		next := anim.Retarget(old, -50, time.Second, anim.Options{})
		require.InDelta(t, before, next.From(), 1e-3)
		require.InDelta(t, before, next.Value(), 1e-3)
		require.Equal(t, -50.0, next.To())
		old = next
	}
}

func TestRetarget_NilSourceStartsSettled(t *testing.T) {
	next := anim.Retarget(nil, 42, time.Second, anim.Options{})
	require.True(t, next.Finished())
	require.Equal(t, 42.0, next.Value())
}

func TestStatic(t *testing.T) {
	src := anim.Static(7)
	require.True(t, src.Finished())
	require.Equal(t, 7.0, src.From())
	require.Equal(t, 7.0, src.To())
}
