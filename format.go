package main

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func clamp[T constraints.Ordered](lo, v, hi T) T {
	return max(lo, min(v, hi))
}

// humanNumber abbreviates v with a K, M or B suffix.
func humanNumber(v float64) string {
	abs := math.Abs(v)
	var (
		scaled float64
		suffix string
	)
	switch {
	case abs >= 1e9:
		scaled, suffix = v/1e9, "B"
	case abs >= 1e6:
		scaled, suffix = v/1e6, "M"
	case abs >= 1e3:
		scaled, suffix = v/1e3, "K"
	default:
		if v == math.Trunc(v) {
			return strconv.FormatFloat(v, 'f', 0, 64)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	s := strconv.FormatFloat(scaled, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + suffix
}

// timeFormats picks the x axis and popover layouts for samples step apart.
func timeFormats(step time.Duration) (axis, popover string) {
	switch {
	case step >= 24*time.Hour:
		return "Jan 2", "Mon, Jan 2"
	case step >= time.Minute:
		return "15:04", "Mon, Jan 2 15:04"
	default:
		return "15:04:05", "Mon, Jan 2 15:04:05.000"
	}
}
