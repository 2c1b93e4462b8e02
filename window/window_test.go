package window_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/brushchart/window"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newModel(t *testing.T, n int, start, end float64) (*window.Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m, err := window.New(n, start, end, window.Options{
		MinPointsInView: 1,
		Duration:        100 * time.Millisecond,
		Now:             clock.Now,
	})
	require.NoError(t, err)
	return m, clock
}

func TestNew_RejectsEmptySeries(t *testing.T) {
	_, err := window.New(0, 0, 0, window.Options{})
	require.ErrorIs(t, err, window.ErrEmptySeries)
}

func TestNew_RejectsSeriesShorterThanMinimum(t *testing.T) {
	_, err := window.New(3, 0, 2, window.Options{MinPointsInView: 5})
	require.ErrorIs(t, err, window.ErrSeriesTooShort)
}

func TestNew_StartsSettled(t *testing.T) {
	m, _ := newModel(t, 101, 75, 100)
	require.False(t, m.HasActiveAnimation())
	w := m.Window()
	require.Equal(t, 75.0, w.StartWith)
	require.Equal(t, 100.0, w.EndAt)
	require.Equal(t, 25.0, w.Length)
	require.Equal(t, window.Exact{StartWith: 75, EndAt: 100, Length: 25}, w.Exact)
}

func TestUpdate_AnimatesTowardsCommittedTarget(t *testing.T) {
	m, clock := newModel(t, 101, 20, 50)

	committed := m.UpdateStartWith(10)
	require.Equal(t, 10.0, committed)
	require.Equal(t, 40.0, m.ExactLength())
	require.True(t, m.HasActiveAnimation())

	clock.Advance(50 * time.Millisecond)
	w := m.Window()
	require.InDelta(t, 15.0, w.StartWith, 1e-9, "linear tracking should be halfway")
	require.Equal(t, 10.0, w.Exact.StartWith)

	clock.Advance(50 * time.Millisecond)
	w = m.Window()
	require.Equal(t, 10.0, w.StartWith)
	require.False(t, m.HasActiveAnimation())
}

func TestUpdate_RetargetKeepsContinuity(t *testing.T) {
	m, clock := newModel(t, 101, 20, 50)
	m.UpdateEndAt(90)
	clock.Advance(30 * time.Millisecond)
	before := m.Window().EndAt
	m.UpdateEndAt(60)
	require.InDelta(t, before, m.Window().EndAt, 1e-3)
}

func TestSnapshot_DerivedAccessors(t *testing.T) {
	m, _ := newModel(t, 101, 20.25, 50.75)
	w := m.Window()
	require.Equal(t, 20, w.StartPointIndex)
	require.Equal(t, 51, w.EndPointIndex)
	require.InDelta(t, 0.25, w.LeftPad, 1e-12)
	require.InDelta(t, 0.75, w.RightPad, 1e-12)
}

func TestUpdate_Clamps(t *testing.T) {
	m, _ := newModel(t, 101, 20, 50)

	require.Equal(t, 0.0, m.UpdateStartWith(-30))
	require.Equal(t, 100.0, m.UpdateEndAt(1e9))
	require.Equal(t, 99.0, m.UpdateStartWith(500))
	require.Equal(t, 100.0, m.UpdateEndAt(3))
	require.Equal(t, 99.0, m.Exact().StartWith)

	m.UpdateStartWith(0)
	require.Equal(t, 1.0, m.UpdateEndAt(-5))
	require.Equal(t, 0.0, m.UpdateStartWith(math.NaN()))
	require.Equal(t, 1.0, m.UpdateEndAt(math.NaN()))
}

func TestUpdate_InvariantsHoldForArbitraryInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{2, 5, 101, 1000} {
		m, clock := newModel(t, n, 0, float64(n-1))
		maxIndex := float64(n - 1)
		for i := 0; i < 2000; i++ {
			v := (rng.Float64()*3 - 1) * maxIndex
			if rng.Intn(2) == 0 {
				m.UpdateStartWith(v)
			} else {
				m.UpdateEndAt(v)
			}
			// Read the live window across the transition, not just the
			// settled targets.
			for step := 0; step < 4; step++ {
				clock.Advance(time.Duration(rng.Intn(50)) * time.Millisecond)
				w := m.Window()
				require.Greater(t, w.Length, 0.0)
				require.GreaterOrEqual(t, w.StartWith, 0.0)
				require.LessOrEqual(t, w.EndAt, maxIndex)
			}

			e := m.Exact()
			require.GreaterOrEqual(t, e.StartWith, 0.0)
			require.LessOrEqual(t, e.StartWith, e.EndAt)
			require.LessOrEqual(t, e.EndAt, maxIndex)
			require.GreaterOrEqual(t, e.EndAt-e.StartWith, m.MinPointsInView())
			require.Equal(t, e.EndAt-e.StartWith, e.Length)
		}
	}
}

func TestUpdate_OpposingRetargetsNeverCross(t *testing.T) {
	m, clock := newModel(t, 101, 50, 100)
	// Start races right, then the end is pulled back in behind it before
	// the start has arrived.
	m.UpdateEndAt(56)
	clock.Advance(90 * time.Millisecond)
	m.UpdateStartWith(55)
	clock.Advance(60 * time.Millisecond)
	m.UpdateStartWith(50)
	m.UpdateEndAt(51)
	for i := 0; i < 12; i++ {
		w := m.Window()
		require.Greater(t, w.Length, 0.0, "at step %d: [%v, %v]", i, w.StartWith, w.EndAt)
		clock.Advance(10 * time.Millisecond)
	}
	require.False(t, m.HasActiveAnimation())
	require.Equal(t, window.Exact{StartWith: 50, EndAt: 51, Length: 1}, m.Window().Exact)
}

func TestUpdate_RetargetingOneEndpointRebasesTheOther(t *testing.T) {
	m, clock := newModel(t, 101, 20, 50)
	m.UpdateEndAt(90)
	clock.Advance(50 * time.Millisecond)
	midEnd := m.Window().EndAt
	require.InDelta(t, 70.0, midEnd, 1e-9)

	// Both endpoints now share one timeline starting here.
	m.UpdateStartWith(30)
	require.InDelta(t, midEnd, m.Window().EndAt, 1e-9)
	clock.Advance(50 * time.Millisecond)
	w := m.Window()
	require.InDelta(t, 25.0, w.StartWith, 1e-9)
	require.InDelta(t, 80.0, w.EndAt, 1e-9)
	require.True(t, m.HasActiveAnimation())
	clock.Advance(50 * time.Millisecond)
	require.False(t, m.HasActiveAnimation())
}

func TestWholeWindow(t *testing.T) {
	m, _ := newModel(t, 101, 75, 100)
	w := m.WholeWindow()
	require.Equal(t, 0.0, w.StartWith)
	require.Equal(t, 100.0, w.EndAt)
	require.Equal(t, 100.0, w.Exact.Length)
}
