package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"github.com/charmbracelet/log"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/brushchart/backend"
	"git.sr.ht/~whereswaldon/brushchart/brush"
	"git.sr.ht/~whereswaldon/brushchart/config"
	"git.sr.ht/~whereswaldon/brushchart/labels"
	"git.sr.ht/~whereswaldon/brushchart/schedule"
	"git.sr.ht/~whereswaldon/brushchart/valueaxis"
)

var resetIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.NavigationFullscreen)
	return icon
}()

// Scheduler keys.
const (
	taskRender = "chart lines render"
	taskXAxis  = "x-axis"
	taskYAxis  = "y-axis"
)

// Chart is the interactive view of one dataset: the main plot of the brush
// window, its axes, the overview strip and the legend.
type Chart struct {
	opts   config.Options
	logger *log.Logger
	sched  *schedule.Scheduler

	ds     *backend.Dataset
	ctrl   *brush.Controller
	view   *BrushView
	legend *Legend
	labels *labels.Controller
	// current tracks the visible window, overall the whole series.
	current, overall *valueaxis.Tracker

	axisFormat, popoverFormat string

	plotWidth float64
	resetBtn  widget.Clickable

	// hover state of the main plot
	pos       f32.Point
	isHovered bool
}

// NewChart builds the chart for ds. Frames are requested through
// invalidate.
func NewChart(ds *backend.Dataset, opts config.Options, logger *log.Logger, invalidate func()) (*Chart, error) {
	c := &Chart{
		opts:    opts,
		logger:  logger,
		sched:   schedule.New(invalidate),
		ds:      ds,
		legend:  NewLegend(len(ds.Series)),
		labels:  labels.NewController(ds.Len(), opts.LabelWidth),
		current: valueaxis.New(opts.ValueAxisOptions()),
		overall: valueaxis.New(opts.ValueAxisOptions()),
	}
	c.view = &BrushView{logger: logger.WithPrefix("brush view")}
	ctrl, err := brush.New(c.view, opts.BrushOptions(logger))
	if err != nil {
		return nil, err
	}
	c.ctrl = ctrl
	c.view.ctrl = ctrl
	ctrl.OnChange(c.handleWindowChange)

	c.pickTimeFormats()
	if err := ctrl.Load(ds.Len()); err != nil {
		return nil, fmt.Errorf("failed loading %q: %w", ds.Source, err)
	}
	c.updateValueAxes()
	return c, nil
}

// Reload picks up a new revision of the dataset the chart was built for,
// which the caller has already written through the chart's dataset pointer.
// The brush window is kept and so are the legend toggles, unless the number
// of series changed.
func (c *Chart) Reload() error {
	if len(c.ds.Series) != c.legend.Len() {
		c.legend = NewLegend(len(c.ds.Series))
	}
	c.labels = labels.NewController(c.ds.Len(), c.opts.LabelWidth)
	c.pickTimeFormats()
	if err := c.ctrl.Reload(c.ds.Len()); err != nil {
		return fmt.Errorf("failed reloading %q: %w", c.ds.Source, err)
	}
	return nil
}

func (c *Chart) pickTimeFormats() {
	var step time.Duration
	if c.ds.Len() > 1 {
		start, end := c.ds.Domain()
		step = end.Sub(start) / time.Duration(c.ds.Len()-1)
	}
	c.axisFormat, c.popoverFormat = timeFormats(step)
}

// Close drops any frame work still queued.
func (c *Chart) Close() {
	c.sched.Close()
}

func (c *Chart) handleWindowChange(ch brush.Change) {
	// Moving does not change the density of labels.
	if ch.Action != brush.ActionMove {
		c.sched.Schedule(taskXAxis, c.checkLabels)
	}
	c.sched.Schedule(taskYAxis, c.updateValueAxes)
	c.sched.Schedule(taskRender, c.render)
}

func (c *Chart) checkLabels() {
	if c.plotWidth > 0 {
		c.labels.Check(c.ctrl.Window().Exact, c.plotWidth)
	}
}

func (c *Chart) updateValueAxes() {
	exact := c.ctrl.Window().Exact
	from, to := int(math.Floor(exact.StartWith)), int(math.Ceil(exact.EndAt))
	if lo, hi, ok := c.ds.RangeBetween(from, to, c.legend.Enabled); ok {
		c.current.Update(lo, hi)
	}
	if lo, hi, ok := c.ds.Range(c.legend.Enabled); ok {
		c.overall.Update(lo, hi)
	}
}

// render keeps frames coming for as long as anything is animating.
func (c *Chart) render() {
	if c.ctrl.HasActiveAnimation() || c.current.Animating() || c.overall.Animating() {
		c.sched.Schedule(taskRender, c.render)
	}
}

func (c *Chart) Update(gtx C) {
	c.view.Update(gtx)
	if c.legend.Update(gtx) {
		c.sched.Schedule(taskYAxis, c.updateValueAxes)
		c.sched.Schedule(taskRender, c.render)
	}
	if c.resetBtn.Clicked(gtx) {
		whole := c.ctrl.WholeWindow()
		c.ctrl.Select(whole.StartWith, whole.EndAt)
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Enter, pointer.Move:
			c.isHovered = true
			c.pos = e.Position
		case pointer.Leave, pointer.Cancel:
			c.isHovered = false
		}
	}
}

func (c *Chart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	c.sched.Flush()
	labelDims, _ := rec(gtx, material.Body2(th, "Mon, Jan 20").Layout)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return c.layoutPlot(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints = layout.Exact(image.Pt(gtx.Constraints.Max.X, labelDims.Size.Y))
			return c.layoutXAxis(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints = layout.Exact(image.Pt(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(c.opts.BrushHeight))))
			return c.view.Layout(gtx, c.ds, c.legend, c.overall)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx C) D {
					return c.legend.Layout(gtx, th, c.ds)
				}),
				layout.Rigid(func(gtx C) D {
					return material.Clickable(gtx, &c.resetBtn, func(gtx C) D {
						return layout.UniformInset(6).Layout(gtx, func(gtx C) D {
							gtx.Constraints = layout.Exact(image.Pt(gtx.Dp(20), gtx.Dp(20)))
							return resetIcon.Layout(gtx, th.Fg)
						})
					})
				}),
			)
		}),
	)
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	gtx.Constraints.Min = image.Point{}
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

var gridColor = color.NRGBA{A: 30}

func (c *Chart) layoutPlot(gtx C, th *material.Theme) D {
	size := gtx.Constraints.Max
	if width := float64(size.X); width != c.plotWidth {
		c.plotWidth = width
		c.sched.Schedule(taskXAxis, c.checkLabels)
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, c)

	c.layoutYAxis(gtx, th, size)

	win := c.ctrl.Window()
	from := max(win.StartPointIndex-1, 0)
	to := min(win.EndPointIndex+1, c.ds.Len()-1)
	for i, s := range c.ds.Series {
		if !c.legend.Enabled(i) {
			continue
		}
		strokeSeries(gtx, s, win.StartWith, win.Length, from, to, c.current, size, float32(gtx.Dp(2)))
	}
	if c.isHovered {
		c.layoutPopover(gtx, th, size)
	}
	return D{Size: size}
}

// layoutYAxis draws the grid and tick labels. During a rescale the old
// labels slide out while the new ones slide in from the other side.
func (c *Chart) layoutYAxis(gtx C, th *material.Theme, size image.Point) {
	h := float64(size.Y)
	ticks := c.current.Ticks()
	prev, dir, progress := c.current.Transition()
	shift := h / float64(2*max(len(ticks), 1))
	if dir == valueaxis.DirectionDown {
		shift = -shift
	}
	draw := func(ticks []valueaxis.Tick, offset float64, alpha float64) {
		for _, tick := range ticks {
			y := int(h - tick.Fraction*h + offset)
			grid := gridColor
			grid.A = uint8(float64(grid.A) * alpha)
			paint.FillShape(gtx.Ops, grid, clip.Rect{Min: image.Pt(0, y-gtx.Dp(1)), Max: image.Pt(size.X, y)}.Op())
			l := material.Body2(th, humanNumber(tick.Value))
			l.Color.A = uint8(float64(l.Color.A) * alpha)
			dims, call := rec(gtx, l.Layout)
			stack := op.Offset(image.Pt(gtx.Dp(2), y-dims.Size.Y-gtx.Dp(2))).Push(gtx.Ops)
			call.Add(gtx.Ops)
			stack.Pop()
		}
	}
	if len(prev) > 0 {
		draw(prev, -shift*progress, 1-progress)
	}
	draw(ticks, shift*(1-progress), progress)
}

// layoutXAxis draws the date labels of the live window. Labels are right
// aligned to their sample.
func (c *Chart) layoutXAxis(gtx C, th *material.Theme) D {
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	win := c.ctrl.Window()
	width := float64(size.X)
	overhang := c.opts.LabelWidth * win.Length / width
	first := max(int(math.Floor(win.StartWith)), 0)
	last := min(int(math.Ceil(win.EndAt+overhang)), c.ds.Len()-1)
	for i := first; i <= last; i++ {
		alpha := c.labels.Opacity(i)
		if alpha <= 0 {
			continue
		}
		x := width * (float64(i) - win.StartWith) / win.Length
		l := material.Body2(th, c.ds.At(i).Format(c.axisFormat))
		l.MaxLines = 1
		l.Color.A = uint8(float64(l.Color.A) * alpha)
		dims, call := rec(gtx, l.Layout)
		stack := op.Offset(image.Pt(int(x)-dims.Size.X, 0)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
	return D{Size: size}
}

// layoutPopover shows the values of the sample nearest the pointer.
func (c *Chart) layoutPopover(gtx C, th *material.Theme, size image.Point) {
	win := c.ctrl.Window()
	exact := win.Exact
	t := float64(c.pos.X) / float64(size.X)
	point := int(math.Round(exact.StartWith + (exact.EndAt-exact.StartWith)*t))
	if point < 0 || point >= c.ds.Len() {
		return
	}
	px := float32(float64(size.X) * (float64(point) - win.StartWith) / win.Length)
	cursorX := int(clamp(1, px, float32(size.X-1)))
	paint.FillShape(gtx.Ops, color.NRGBA{A: 60}, clip.Rect{
		Min: image.Pt(cursorX, 0),
		Max: image.Pt(cursorX+gtx.Dp(1), size.Y),
	}.Op())

	children := []layout.FlexChild{
		layout.Rigid(material.Body2(th, c.ds.At(point).Format(c.popoverFormat)).Layout),
	}
	dot := float32(gtx.Dp(4))
	for i, s := range c.ds.Series {
		if !c.legend.Enabled(i) {
			continue
		}
		v := s.At(point)
		y := float32(size.Y) - float32(size.Y)*float32(c.current.Normalize(v))
		paint.FillShape(gtx.Ops, s.Color(), clip.Ellipse{
			Min: image.Pt(int(px-dot), int(y-dot)),
			Max: image.Pt(int(px+dot), int(y+dot)),
		}.Op(gtx.Ops))
		l := material.Body1(th, humanNumber(v))
		l.Color = s.Color()
		name := material.Caption(th, s.Name())
		name.Color = s.Color()
		children = append(children, layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Baseline}.Layout(gtx,
				layout.Rigid(l.Layout),
				layout.Rigid(layout.Spacer{Width: 6}.Layout),
				layout.Rigid(name.Layout),
			)
		}))
	}
	dims, call := rec(gtx, func(gtx C) D {
		return component.Surface(th).Layout(gtx, func(gtx C) D {
			return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
			})
		})
	})
	pad := gtx.Dp(8)
	x := clamp(pad, int(px)-dims.Size.X/2, max(size.X-dims.Size.X-pad, pad))
	defer op.Offset(image.Pt(x, pad)).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}
