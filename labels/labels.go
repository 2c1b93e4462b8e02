// Package labels decides which x axis labels are shown at the current zoom
// level. Density is adjusted by reversible halving and doubling steps so the
// work done per drag frame stays small and the chosen labels stay evenly
// spaced.
package labels

import (
	"math"
	"slices"

	"git.sr.ht/~whereswaldon/brushchart/axis"
	"git.sr.ht/~whereswaldon/brushchart/window"
)

// DefaultLabelWidth is the horizontal space reserved for one label in pixels.
const DefaultLabelWidth = 70

// Set partitions the label indices 0..n-1 into the visible labels and a
// stack of batches hidden together.
type Set struct {
	n       int
	visible []int
	hidden  [][]int
}

// NewSet returns a set over n labels, all visible.
func NewSet(n int) *Set {
	s := &Set{n: n, visible: make([]int, n)}
	for i := range s.visible {
		s.visible[i] = i
	}
	return s
}

// Len returns the total number of labels.
func (s *Set) Len() int { return s.n }

// Visible returns the visible labels in ascending order. The slice must not
// be modified.
func (s *Set) Visible() []int { return s.visible }

// HiddenBatches returns the number of batches on the hidden stack.
func (s *Set) HiddenBatches() int { return len(s.hidden) }

// IsVisible reports whether label i is visible.
func (s *Set) IsVisible(i int) bool {
	_, found := slices.BinarySearch(s.visible, i)
	return found
}

// IsLastHidden reports whether label i belongs to the most recently hidden
// batch.
func (s *Set) IsLastHidden(i int) bool {
	if len(s.hidden) == 0 {
		return false
	}
	_, found := slices.BinarySearch(s.hidden[len(s.hidden)-1], i)
	return found
}

// HideItems hides every other visible label, keeping the first and the
// last, and pushes them as one batch. It returns how many were hidden.
func (s *Set) HideItems() int {
	if len(s.visible) < 3 {
		return 0
	}
	inner := s.visible[1 : len(s.visible)-1]
	batch := make([]int, 0, (len(inner)+1)/2)
	kept := make([]int, 0, len(s.visible)-cap(batch))
	kept = append(kept, s.visible[0])
	for i, id := range inner {
		if i%2 == 0 {
			batch = append(batch, id)
		} else {
			kept = append(kept, id)
		}
	}
	kept = append(kept, s.visible[len(s.visible)-1])
	s.visible = kept
	s.hidden = append(s.hidden, batch)
	return len(batch)
}

// ShowItems restores the most recently hidden batch and returns how many
// labels became visible.
func (s *Set) ShowItems() int {
	if len(s.hidden) == 0 {
		return 0
	}
	last := s.hidden[len(s.hidden)-1]
	s.hidden = s.hidden[:len(s.hidden)-1]
	s.visible = append(s.visible, last...)
	slices.Sort(s.visible)
	return len(last)
}

// Controller keeps roughly one visible label per LabelWidth pixels inside
// the current window.
type Controller struct {
	set        *Set
	labelWidth float64
	ratio      float64
}

// NewController returns a controller over n labels each needing labelWidth
// pixels.
func NewController(n int, labelWidth float64) *Controller {
	if labelWidth <= 0 {
		labelWidth = DefaultLabelWidth
	}
	return &Controller{
		set:        NewSet(n),
		labelWidth: labelWidth,
	}
}

// Set returns the visibility partition.
func (c *Controller) Set() *Set { return c.set }

// Ratio returns the density measured by the last Check: visible labels
// inside the window divided by the number that fit.
func (c *Controller) Ratio() float64 { return c.ratio }

// Target returns how many labels fit in a viewport widthPx wide.
func (c *Controller) Target(widthPx float64) int {
	return max(int(math.Floor(widthPx/c.labelWidth)), 1)
}

// Offset returns the x position, relative to the viewport, of label i when
// the settled window w is shown widthPx wide.
func Offset(w window.Exact, widthPx float64, i int) float64 {
	pixels := axis.New(0, widthPx)
	return pixels.Map((float64(i) - w.StartWith) / w.Length)
}

func (c *Controller) visibleInWindow(w window.Exact, widthPx float64) int {
	count := 0
	for _, i := range c.set.visible {
		x := Offset(w, widthPx, i)
		if x >= 0 && x <= widthPx {
			count++
		}
	}
	return count
}

// Check adjusts the visible labels for the settled window w shown widthPx
// wide. A single check only coarsens, or refines and then possibly coarsens
// once it overshoots, so it always terminates.
func (c *Controller) Check(w window.Exact, widthPx float64) {
	if !(w.Length > 0) {
		return
	}
	target := float64(c.Target(widthPx))
	coarsened := false
	for {
		c.ratio = float64(c.visibleInWindow(w, widthPx)) / target
		switch {
		case c.ratio > 1:
			coarsened = true
			if c.set.HideItems() == 0 {
				return
			}
		case c.ratio < .5 && !coarsened:
			if c.set.ShowItems() == 0 {
				return
			}
		default:
			return
		}
	}
}

// Opacity returns how opaque label i should be drawn. Labels in the batch
// hidden most recently fade with the density ratio.
func (c *Controller) Opacity(i int) float64 {
	if c.set.IsVisible(i) {
		return 1
	}
	if c.set.IsLastHidden(i) {
		return max(0, min(1, 1-c.ratio))
	}
	return 0
}
