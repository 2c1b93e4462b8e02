package main

import (
	"image"

	"gioui.org/layout"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/brushchart/backend"
)

var checkedIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ToggleCheckBox)
	return icon
}()

var uncheckedIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ToggleCheckBoxOutlineBlank)
	return icon
}()

// visibility tracks which series are drawn. At least one series always
// stays visible.
type visibility struct {
	enabled []bool
}

func newVisibility(n int) *visibility {
	v := &visibility{enabled: make([]bool, n)}
	for i := range v.enabled {
		v.enabled[i] = true
	}
	return v
}

func (v *visibility) Enabled(i int) bool {
	return i >= 0 && i < len(v.enabled) && v.enabled[i]
}

func (v *visibility) Count() int {
	n := 0
	for _, e := range v.enabled {
		if e {
			n++
		}
	}
	return n
}

// Toggle flips series i and reports whether it changed. Hiding the last
// visible series is refused.
func (v *visibility) Toggle(i int) bool {
	if i < 0 || i >= len(v.enabled) {
		return false
	}
	if v.enabled[i] && v.Count() == 1 {
		return false
	}
	v.enabled[i] = !v.enabled[i]
	return true
}

// Legend lists the series of a dataset and toggles their visibility.
type Legend struct {
	vis     *visibility
	buttons []widget.Clickable
}

func NewLegend(n int) *Legend {
	return &Legend{
		vis:     newVisibility(n),
		buttons: make([]widget.Clickable, n),
	}
}

// Len returns the number of series in the legend.
func (l *Legend) Len() int { return len(l.buttons) }

// Enabled reports whether series i is drawn.
func (l *Legend) Enabled(i int) bool {
	return l.vis.Enabled(i)
}

// Update processes clicks and reports whether visibility changed.
func (l *Legend) Update(gtx C) bool {
	changed := false
	for i := range l.buttons {
		for l.buttons[i].Clicked(gtx) {
			if l.vis.Toggle(i) {
				changed = true
			}
		}
	}
	return changed
}

func (l *Legend) Layout(gtx C, th *material.Theme, ds *backend.Dataset) D {
	children := make([]layout.FlexChild, 0, len(ds.Series))
	for i, s := range ds.Series {
		i, s := i, s
		children = append(children, layout.Rigid(func(gtx C) D {
			return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
				return material.Clickable(gtx, &l.buttons[i], func(gtx C) D {
					return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
						return l.layoutEntry(gtx, th, i, s)
					})
				})
			})
		}))
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx, children...)
}

func (l *Legend) layoutEntry(gtx C, th *material.Theme, i int, s *backend.Series) D {
	col := s.Color()
	icon := checkedIcon
	label := material.Body2(th, s.Name())
	if !l.Enabled(i) {
		icon = uncheckedIcon
		label.Color.A = 120
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			sz := gtx.Dp(20)
			gtx.Constraints = layout.Exact(image.Pt(sz, sz))
			return icon.Layout(gtx, col)
		}),
		layout.Rigid(layout.Spacer{Width: 4}.Layout),
		layout.Rigid(label.Layout),
		layout.Rigid(layout.Spacer{Width: 4}.Layout),
		layout.Rigid(func(gtx C) D {
			// Swatch doubles as the line sample.
			return component.Rect{
				Color: col,
				Size:  image.Pt(gtx.Dp(12), gtx.Dp(2)),
			}.Layout(gtx)
		}),
	)
}
