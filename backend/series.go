package backend

import (
	"image/color"
	"math"
)

// Series represents one data set in a visualization. Samples are addressed
// by their index in the dataset's time column. A Series is immutable once
// its dataset has been published.
type Series struct {
	name        string
	color       color.NRGBA
	values      []float64
	rangeMax    float64
	rangeMin    float64
	sum         float64
	initialized bool
}

// NewSeries returns an empty series with the given display name and color.
func NewSeries(name string, c color.NRGBA) *Series {
	return &Series{name: name, color: c}
}

func (s *Series) Name() string { return s.name }

func (s *Series) Color() color.NRGBA { return s.color }

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.values) }

// At returns the sample at index i, clamped into the series.
func (s *Series) At(i int) float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[max(0, min(i, len(s.values)-1))]
}

// Values returns the underlying samples. The slice must not be modified.
func (s *Series) Values() []float64 { return s.values }

// RangeMax returns the largest sample in the series.
func (s *Series) RangeMax() float64 { return s.rangeMax }

// RangeMin returns the smallest sample in the series.
func (s *Series) RangeMin() float64 { return s.rangeMin }

func (s *Series) Sum() float64 { return s.sum }

// Insert appends a sample. NaN samples (empty cells) repeat the previous
// sample, or zero if there is none.
func (s *Series) Insert(value float64) {
	if math.IsNaN(value) {
		value = 0
		if len(s.values) > 0 {
			value = s.values[len(s.values)-1]
		}
	}
	if !s.initialized {
		s.rangeMax = value
		s.rangeMin = value
		s.initialized = true
	}
	s.rangeMax = max(s.rangeMax, value)
	s.rangeMin = min(s.rangeMin, value)
	s.values = append(s.values, value)
	s.sum += value
}

// RangeBetween returns the extrema of the samples with indices in the
// closed interval [indexA, indexB]. The interval is clamped to the series
// and may be given in either order. ok is false if the series is empty.
func (s *Series) RangeBetween(indexA, indexB int) (minimum, maximum float64, ok bool) {
	if len(s.values) < 1 {
		return 0, 0, false
	}
	if indexB < indexA {
		indexA, indexB = indexB, indexA
	}
	indexA = max(indexA, 0)
	indexB = min(indexB, len(s.values)-1)
	if indexA > indexB {
		return 0, 0, false
	}
	values := s.values[indexA : indexB+1]
	minimum, maximum = values[0], values[0]
	for _, v := range values[1:] {
		maximum = max(maximum, v)
		minimum = min(minimum, v)
	}
	return minimum, maximum, true
}
