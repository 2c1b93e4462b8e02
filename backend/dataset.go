package backend

import (
	"time"
)

// Dataset is one loaded trace: a time column and the series sampled at
// each of its instants.
type Dataset struct {
	// Source names where the data came from, usually a file path.
	Source string
	// X holds the sample instants. Every series has len(X) samples.
	X      []time.Time
	Series []*Series
	// Err reports the most recent failure to load or reload Source. A
	// dataset with an error may still carry the last good data.
	Err error
}

// Initialized reports whether the dataset holds any samples.
func (d *Dataset) Initialized() bool {
	return len(d.X) != 0 && len(d.Series) != 0
}

// Len returns the number of samples in each series.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Domain returns the first and last sample instants.
func (d *Dataset) Domain() (start, end time.Time) {
	if len(d.X) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.X[0], d.X[len(d.X)-1]
}

// At returns the instant of sample i, clamped into the dataset.
func (d *Dataset) At(i int) time.Time {
	if len(d.X) == 0 {
		return time.Time{}
	}
	return d.X[max(0, min(i, len(d.X)-1))]
}

// RangeBetween returns the extrema over the samples [indexA, indexB] of
// the series for which enabled returns true. A nil enabled includes every
// series.
func (d *Dataset) RangeBetween(indexA, indexB int, enabled func(int) bool) (minimum, maximum float64, ok bool) {
	for i, s := range d.Series {
		if enabled != nil && !enabled(i) {
			continue
		}
		sMin, sMax, sOK := s.RangeBetween(indexA, indexB)
		if !sOK {
			continue
		}
		if !ok {
			minimum, maximum, ok = sMin, sMax, true
			continue
		}
		minimum = min(minimum, sMin)
		maximum = max(maximum, sMax)
	}
	return minimum, maximum, ok
}

// Range returns the extrema over every sample of the enabled series.
func (d *Dataset) Range(enabled func(int) bool) (minimum, maximum float64, ok bool) {
	for i, s := range d.Series {
		if enabled != nil && !enabled(i) {
			continue
		}
		if s.Len() == 0 {
			continue
		}
		if !ok {
			minimum, maximum, ok = s.RangeMin(), s.RangeMax(), true
			continue
		}
		minimum = min(minimum, s.RangeMin())
		maximum = max(maximum, s.RangeMax())
	}
	return minimum, maximum, ok
}
