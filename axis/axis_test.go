package axis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapper_Affine(t *testing.T) {
	for _, m := range []Mapper{New(0, 1), New(0, 640), New(10, -30), New(-5, 5)} {
		for i := 0; i <= 20; i++ {
			frac := float64(i) / 20
			require.InDelta(t, m.Min+(m.Max-m.Min)*frac, m.Map(frac), 1e-12)
		}
	}
}

func TestMapper_Extrapolates(t *testing.T) {
	m := New(0, 100)
	require.InDelta(t, -10.0, m.Map(-0.1), 1e-12)
	require.InDelta(t, 150.0, m.Map(1.5), 1e-12)
}

func TestMapper_InvertDegenerate(t *testing.T) {
	require.Equal(t, 0.0, New(3, 3).Invert(10))
}

func TestScale_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		width float64
		n     int
	}{
		{width: 320, n: 100},
		{width: 1234.5, n: 7},
		{width: 99, n: 100},
		{width: 1, n: 10_000},
	} {
		s := NewScale(tc.width, tc.n)
		for i := 0; i < tc.n; i += max(1, tc.n/50) {
			require.InDelta(t, float64(i), s.PixelToIndex(s.IndexToPixel(float64(i))), 1e-6)
		}
		require.InDelta(t, 0.0, s.IndexToPixel(0), 1e-9)
		require.InDelta(t, tc.width, s.IndexToPixel(float64(tc.n-1)), 1e-9)
	}
}
