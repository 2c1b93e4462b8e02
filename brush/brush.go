// Package brush implements the pointer-drag state machine of the chart's
// overview brush. The brush turns raw pointer motion into a window over the
// data series, and is the only writer of that window.
package brush

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"git.sr.ht/~whereswaldon/brushchart/axis"
	"git.sr.ht/~whereswaldon/brushchart/window"
)

var (
	// ErrNoGeometry is returned when a controller is built without a
	// geometry source.
	ErrNoGeometry = errors.New("brush: no geometry provided")
	// ErrNotLoaded reports use of the window before any series was loaded.
	ErrNotLoaded = errors.New("brush: no series loaded")
	// ErrStaleGeometry is returned when a drag starts against a container
	// or window element that has no extent.
	ErrStaleGeometry = errors.New("brush: stale geometry")
)

// DefaultInitialFraction is where the window starts after a load, as a
// fraction of the series.
const DefaultInitialFraction = 0.75

// Action identifies what an active drag is doing to the window.
type Action uint8

const (
	// ActionNone means no drag is in progress, or the change was not caused
	// by a drag.
	ActionNone Action = iota
	ActionMove
	ActionGrowLeft
	ActionGrowRight
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionGrowLeft:
		return "grow left"
	case ActionGrowRight:
		return "grow right"
	default:
		return "unknown"
	}
}

// Resizes reports whether the action changes the length of the window.
func (a Action) Resizes() bool {
	return a != ActionMove
}

// Target is the element under the pointer when it went down.
type Target uint8

const (
	TargetNone Target = iota
	TargetWindow
	TargetLeftHandle
	TargetRightHandle
)

func (t Target) action() Action {
	switch t {
	case TargetWindow:
		return ActionMove
	case TargetLeftHandle:
		return ActionGrowLeft
	case TargetRightHandle:
		return ActionGrowRight
	default:
		return ActionNone
	}
}

// Pointer is a normalized mouse or single-touch event.
type Pointer struct {
	ClientX float64
	Target  Target
}

// Rect is an element's bounding box in pixels.
type Rect struct {
	Left, Right, Top, Bottom float64
}

// Width returns Right-Left.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Geometry supplies element bounds on demand. It is queried at the start of
// every drag and never cached across sessions.
type Geometry interface {
	ContainerRect() Rect
	WindowRect() Rect
}

// Position is the painted placement of the window inside the container,
// relative to the container's left edge.
type Position struct {
	Left, Width float64
}

// Change is delivered to listeners after every committed mutation.
type Change struct {
	Window   window.Snapshot
	Position Position
	Action   Action
}

// Listener receives window changes.
type Listener func(Change)

// Options configures a Controller.
type Options struct {
	Window window.Options
	// InitialFraction positions the start of the window after a load.
	InitialFraction float64
	Logger          *log.Logger
}

// session is the state of one pointer-down..pointer-up interval.
type session struct {
	originClientX float64
	lastClientX   float64
	action        Action
	container     Rect
	windowAtStart Rect
	// length is the window length when the drag began. A move preserves it
	// exactly.
	length float64
}

// Controller is the brush state machine. It is Idle when no session is
// active and Dragging otherwise.
type Controller struct {
	geom      Geometry
	opts      Options
	logger    *log.Logger
	model     *window.Model
	session   *session
	listeners []Listener
}

var _ window.Reader = (*Controller)(nil)

// New creates an idle controller. Load must be called before the window is
// read.
func New(geom Geometry, opts Options) (*Controller, error) {
	if geom == nil {
		return nil, ErrNoGeometry
	}
	if opts.InitialFraction <= 0 || opts.InitialFraction >= 1 {
		opts.InitialFraction = DefaultInitialFraction
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		geom:   geom,
		opts:   opts,
		logger: logger.WithPrefix("brush"),
	}, nil
}

// OnChange registers l to be called after every committed window change.
func (c *Controller) OnChange(l Listener) {
	if l == nil {
		panic(errors.New("brush: nil listener"))
	}
	c.listeners = append(c.listeners, l)
}

// Load installs a window over a freshly loaded series of n points and
// notifies listeners once. Any drag in progress is abandoned.
func (c *Controller) Load(n int) error {
	maxIndex := float64(n - 1)
	start := math.Round(maxIndex * c.opts.InitialFraction)
	model, err := window.New(n, start, maxIndex, c.opts.Window)
	if err != nil {
		return fmt.Errorf("brush: loading %d points: %w", n, err)
	}
	c.model = model
	c.session = nil
	c.logger.Debug("loaded series", "points", n, "start", model.Exact().StartWith, "end", model.Exact().EndAt)
	c.notify(ActionNone)
	return nil
}

// Reload swaps in a new series of n points for the same source. The settled
// window is kept, clamped to the new series, and a window that ended on the
// last point keeps following it with the same length. A drag in progress
// continues from the pointer's current position. Without a loaded series
// Reload is Load.
func (c *Controller) Reload(n int) error {
	if c.model == nil {
		return c.Load(n)
	}
	prev := c.model.Exact()
	start, end := prev.StartWith, prev.EndAt
	if end >= c.model.MaxIndex() {
		end = float64(n - 1)
		start = end - prev.Length
	}
	model, err := window.New(n, start, end, c.opts.Window)
	if err != nil {
		return fmt.Errorf("brush: reloading %d points: %w", n, err)
	}
	c.model = model
	if s := c.session; s != nil {
		scale := axis.NewScale(s.container.Width(), n)
		exact := model.Exact()
		s.originClientX = s.lastClientX
		s.windowAtStart.Left = s.container.Left + scale.IndexToPixel(exact.StartWith)
		s.windowAtStart.Right = s.container.Left + scale.IndexToPixel(exact.EndAt)
		s.length = exact.Length
	}
	c.logger.Debug("reloaded series", "points", n, "start", model.Exact().StartWith, "end", model.Exact().EndAt)
	c.notify(ActionNone)
	return nil
}

// Loaded reports whether a series has been loaded.
func (c *Controller) Loaded() bool {
	return c.model != nil
}

func (c *Controller) mustModel() *window.Model {
	if c.model == nil {
		panic(ErrNotLoaded)
	}
	return c.model
}

// Window returns the live window.
func (c *Controller) Window() window.Snapshot {
	return c.mustModel().Window()
}

// WholeWindow returns the window spanning the whole series.
func (c *Controller) WholeWindow() window.Snapshot {
	return c.mustModel().WholeWindow()
}

// HasActiveAnimation reports whether the window is still moving.
func (c *Controller) HasActiveAnimation() bool {
	return c.model != nil && c.model.HasActiveAnimation()
}

// Len returns the number of points in the loaded series.
func (c *Controller) Len() int {
	return c.mustModel().Len()
}

// Action returns the action of the active drag, or ActionNone when idle.
func (c *Controller) Action() Action {
	if c.session == nil {
		return ActionNone
	}
	return c.session.action
}

// Dragging reports whether a drag session is active.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

// Position computes where the settled window should be painted inside a
// container of the current width.
func (c *Controller) Position() Position {
	m := c.mustModel()
	scale := axis.NewScale(c.geom.ContainerRect().Width(), m.Len())
	exact := m.Exact()
	left := scale.IndexToPixel(exact.StartWith)
	return Position{
		Left:  left,
		Width: scale.IndexToPixel(exact.EndAt) - left,
	}
}

// PointerDown starts a drag if p landed on the window body or one of its
// handles. It reports whether a drag began.
func (c *Controller) PointerDown(p Pointer) (bool, error) {
	action := p.Target.action()
	if action == ActionNone || c.model == nil {
		return false, nil
	}
	container := c.geom.ContainerRect()
	win := c.geom.WindowRect()
	if !(container.Width() > 0) || !(win.Width() > 0) {
		return false, fmt.Errorf("%w: container %+v, window %+v", ErrStaleGeometry, container, win)
	}
	c.session = &session{
		originClientX: p.ClientX,
		lastClientX:   p.ClientX,
		action:        action,
		container:     container,
		windowAtStart: win,
		length:        c.model.ExactLength(),
	}
	c.logger.Debug("drag started", "action", action, "x", p.ClientX)
	return true, nil
}

// PointerMove advances the active drag, if any.
func (c *Controller) PointerMove(p Pointer) {
	s := c.session
	if s == nil || p.ClientX == s.lastClientX {
		return
	}
	step := p.ClientX - s.lastClientX
	s.lastClientX = p.ClientX
	delta := p.ClientX - s.originClientX

	m := c.model
	scale := axis.NewScale(s.container.Width(), m.Len())
	exact := m.Exact()
	minPoints := m.MinPointsInView()
	switch s.action {
	case ActionGrowLeft:
		idx := scale.PixelToIndex(p.ClientX - s.container.Left)
		m.UpdateStartWith(min(idx, exact.EndAt-minPoints))
	case ActionGrowRight:
		idx := scale.PixelToIndex(p.ClientX - s.container.Left)
		m.UpdateEndAt(max(idx, exact.StartWith+minPoints))
	case ActionMove:
		c.move(scale, s, delta, step)
	}
	c.notify(s.action)
}

// move shifts the window without changing its length. The edge in the
// direction of travel is committed first and the other edge is derived from
// it, so rounding never accumulates into the length.
func (c *Controller) move(scale axis.Scale, s *session, delta, step float64) {
	m := c.model
	maxIndex := m.MaxIndex()
	length := s.length
	if step > 0 {
		right := s.windowAtStart.Right - s.container.Left + delta
		end := min(scale.PixelToIndex(right), maxIndex)
		end = max(end, length)
		end = m.UpdateEndAt(end)
		m.UpdateStartWith(end - length)
		return
	}
	left := s.windowAtStart.Left - s.container.Left + delta
	start := max(scale.PixelToIndex(left), 0)
	start = min(start, maxIndex-length)
	start = m.UpdateStartWith(start)
	m.UpdateEndAt(start + length)
}

// PointerUp ends the active drag.
func (c *Controller) PointerUp() {
	if c.session == nil {
		return
	}
	c.logger.Debug("drag finished", "action", c.session.action)
	c.session = nil
}

// PointerCancel abandons the active drag. The window keeps whatever the
// drag already committed.
func (c *Controller) PointerCancel() {
	c.PointerUp()
}

// Select moves the window to [start, end] outside of any drag.
func (c *Controller) Select(start, end float64) {
	m := c.mustModel()
	m.UpdateStartWith(min(start, m.Exact().StartWith))
	m.UpdateEndAt(end)
	m.UpdateStartWith(start)
	c.notify(ActionNone)
}

func (c *Controller) notify(action Action) {
	ch := Change{
		Window:   c.model.Window(),
		Position: c.Position(),
		Action:   action,
	}
	for _, l := range c.listeners {
		l(ch)
	}
}
