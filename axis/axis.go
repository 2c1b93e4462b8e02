// Package axis maps between normalized fractions, pixels and data indices.
package axis

// Mapper is an affine map from a fraction t to the domain [Min, Max]. Values
// of t outside [0,1] extrapolate; callers clamp.
type Mapper struct {
	Min, Max float64
}

// New returns the mapper for [min, max].
func New(min, max float64) Mapper {
	return Mapper{Min: min, Max: max}
}

// Map returns Min + (Max-Min)*t.
func (m Mapper) Map(t float64) float64 {
	return m.Min + (m.Max-m.Min)*t
}

// Invert returns the fraction t for which Map(t) == v. A degenerate
// domain inverts to zero.
func (m Mapper) Invert(v float64) float64 {
	span := m.Max - m.Min
	if span == 0 {
		return 0
	}
	return (v - m.Min) / span
}

// Span returns Max-Min.
func (m Mapper) Span() float64 {
	return m.Max - m.Min
}

// Scale pairs the pixel-width mapper of a chart with the data index mapper
// of its series.
type Scale struct {
	Pixels Mapper
	Index  Mapper
}

// NewScale builds the scale for a container widthPx wide holding a series
// of n points.
func NewScale(widthPx float64, n int) Scale {
	return Scale{
		Pixels: New(0, widthPx),
		Index:  New(0, float64(n-1)),
	}
}

// IndexToPixel converts a fractional data index to a pixel offset.
func (s Scale) IndexToPixel(i float64) float64 {
	return s.Pixels.Map(s.Index.Invert(i))
}

// PixelToIndex converts a pixel offset to a fractional data index.
func (s Scale) PixelToIndex(px float64) float64 {
	return s.Index.Map(s.Pixels.Invert(px))
}
