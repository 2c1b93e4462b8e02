package main

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/charmbracelet/log"

	"git.sr.ht/~whereswaldon/brushchart/backend"
	"git.sr.ht/~whereswaldon/brushchart/brush"
	"git.sr.ht/~whereswaldon/brushchart/valueaxis"
)

// BrushView draws the overview strip and feeds pointer input into the brush
// controller. It doubles as the controller's geometry source, reporting
// where it last painted the window.
type BrushView struct {
	ctrl   *brush.Controller
	logger *log.Logger

	// Distinct tags so the press target identifies the dragged element.
	body, left, right int

	container brush.Rect
	painted   brush.Rect
}

var _ brush.Geometry = (*BrushView)(nil)

func (b *BrushView) ContainerRect() brush.Rect { return b.container }

func (b *BrushView) WindowRect() brush.Rect { return b.painted }

func (b *BrushView) target(tag event.Tag) brush.Target {
	switch tag {
	case &b.body:
		return brush.TargetWindow
	case &b.left:
		return brush.TargetLeftHandle
	case &b.right:
		return brush.TargetRightHandle
	default:
		return brush.TargetNone
	}
}

// Update delivers pending pointer events to the controller.
func (b *BrushView) Update(gtx C) {
	if b.ctrl == nil || !b.ctrl.Loaded() {
		return
	}
	for _, tag := range []event.Tag{&b.body, &b.left, &b.right} {
		for {
			ev, ok := gtx.Event(pointer.Filter{
				Target: tag,
				Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
			})
			if !ok {
				break
			}
			e, ok := ev.(pointer.Event)
			if !ok {
				continue
			}
			p := brush.Pointer{ClientX: float64(e.Position.X), Target: b.target(tag)}
			switch e.Kind {
			case pointer.Press:
				if _, err := b.ctrl.PointerDown(p); err != nil {
					b.logger.Warn("ignoring drag", "error", err)
				}
			case pointer.Drag:
				b.ctrl.PointerMove(p)
			case pointer.Release:
				b.ctrl.PointerUp()
			case pointer.Cancel:
				b.ctrl.PointerCancel()
			}
		}
	}
}

var (
	brushShade  = color.NRGBA{R: 0xf2, G: 0xf5, B: 0xf7, A: 0xc0}
	brushBorder = color.NRGBA{R: 0xc0, G: 0xd1, B: 0xe1, A: 0xff}
)

// Layout paints the whole series scaled to the global value range, shades
// everything outside the window and registers the drag areas.
func (b *BrushView) Layout(gtx C, ds *backend.Dataset, legend *Legend, va *valueaxis.Tracker) D {
	size := gtx.Constraints.Max
	b.container = brush.Rect{Right: float64(size.X), Bottom: float64(size.Y)}
	if b.ctrl == nil || !b.ctrl.Loaded() || size.X <= 0 || size.Y <= 0 {
		return D{Size: size}
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()

	whole := b.ctrl.WholeWindow()
	for i, s := range ds.Series {
		if !legend.Enabled(i) {
			continue
		}
		strokeSeries(gtx, s, whole.StartWith, whole.Length, 0, ds.Len()-1, va, size, float32(gtx.Dp(1)))
	}

	pos := b.ctrl.Position()
	b.painted = brush.Rect{
		Left:   pos.Left,
		Right:  pos.Left + pos.Width,
		Bottom: float64(size.Y),
	}
	left := int(round(pos.Left))
	right := max(int(round(pos.Left+pos.Width)), left+1)
	handle := gtx.Dp(8)
	border := gtx.Dp(1)

	paint.FillShape(gtx.Ops, brushShade, clip.Rect{Max: image.Pt(left, size.Y)}.Op())
	paint.FillShape(gtx.Ops, brushShade, clip.Rect{Min: image.Pt(right, 0), Max: size}.Op())
	paint.FillShape(gtx.Ops, brushBorder, clip.Rect{Min: image.Pt(left, 0), Max: image.Pt(right, border)}.Op())
	paint.FillShape(gtx.Ops, brushBorder, clip.Rect{Min: image.Pt(left, size.Y-border), Max: image.Pt(right, size.Y)}.Op())

	leftHandle := image.Rect(left-handle/2, 0, left+handle/2, size.Y)
	rightHandle := image.Rect(right-handle/2, 0, right+handle/2, size.Y)
	paint.FillShape(gtx.Ops, brushBorder, clip.Rect{Min: image.Pt(left, 0), Max: image.Pt(left+handle/2, size.Y)}.Op())
	paint.FillShape(gtx.Ops, brushBorder, clip.Rect{Min: image.Pt(right-handle/2, 0), Max: image.Pt(right, size.Y)}.Op())

	// The handles are registered after the body so they win where they
	// overlap it.
	area := clip.Rect{Min: image.Pt(left, 0), Max: image.Pt(right, size.Y)}.Push(gtx.Ops)
	pointer.CursorGrab.Add(gtx.Ops)
	event.Op(gtx.Ops, &b.body)
	area.Pop()
	for _, h := range []struct {
		tag  *int
		rect image.Rectangle
	}{{&b.left, leftHandle}, {&b.right, rightHandle}} {
		area := clip.Rect(h.rect).Push(gtx.Ops)
		pointer.CursorColResize.Add(gtx.Ops)
		event.Op(gtx.Ops, h.tag)
		area.Pop()
	}
	return D{Size: size}
}

func round(v float64) float64 {
	return floor(v + .5)
}

// strokeSeries draws points [from, to] of s as a polyline with the window
// [startWith, startWith+length] spanning the width of size.
func strokeSeries(gtx C, s *backend.Series, startWith, length float64, from, to int, va *valueaxis.Tracker, size image.Point, width float32) {
	if to <= from || !(length > 0) {
		return
	}
	w, h := float32(size.X), float32(size.Y)
	var p clip.Path
	p.Begin(gtx.Ops)
	for i := from; i <= to; i++ {
		x := w * float32((float64(i)-startWith)/length)
		y := h - h*float32(va.Normalize(s.At(i)))
		if i == from {
			p.MoveTo(f32.Pt(x, y))
			continue
		}
		p.LineTo(f32.Pt(x, y))
	}
	paint.FillShape(gtx.Ops, s.Color(), clip.Stroke{Path: p.End(), Width: width}.Op())
}
