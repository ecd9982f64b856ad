// Package viewport maps pointer gestures onto pan/zoom state for the editing
// surface.
//
// The controller only changes how the scene is looked at. It never touches
// scene content, and every editing session owns its own [Controller].
//
// # Zoom to point
//
// [Controller.ZoomAt] keeps the world point under the pointer fixed on screen:
//
//	worldX = (pointerX - panX) / scale
//	scale' = clamp(scale + sign*step, MinScale, MaxScale)
//	panX'  = pointerX - worldX*scale'
//
// # Fit to view
//
// [Controller.FitToView] is run once per logical-size change. It scales the
// content to 95% of the container and centres it.
package viewport

import (
	"math"

	"github.com/matzehuels/printframe/pkg/geom"
)

const (
	// MinScale is the smallest zoom factor a session may reach.
	MinScale = 0.1

	// MaxScale is the largest zoom factor a session may reach.
	MaxScale = 5.0

	// DefaultStep is the additive zoom increment per wheel notch.
	DefaultStep = 0.1

	// FitMargin leaves a small border around fitted content.
	FitMargin = 0.95
)

// State is the affine view transform: screen = world*Scale + Pan.
type State struct {
	Scale float64 `json:"scale"`
	PanX  float64 `json:"pan_x"`
	PanY  float64 `json:"pan_y"`
}

// Identity returns the untransformed view.
func Identity() State { return State{Scale: 1} }

// WorldToScreen maps a logical canvas point to screen space.
func (s State) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.Scale + s.PanX, Y: p.Y*s.Scale + s.PanY}
}

// ScreenToWorld maps a screen point back to logical canvas space.
func (s State) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - s.PanX) / s.Scale, Y: (p.Y - s.PanY) / s.Scale}
}

// Option configures a Controller.
type Option func(*Controller)

// WithStep overrides the zoom increment (default [DefaultStep]).
func WithStep(step float64) Option {
	return func(c *Controller) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithState seeds the controller with an existing view.
func WithState(s State) Option {
	return func(c *Controller) { c.state = s }
}

// Controller owns the view state of one editing session.
// It is not safe for concurrent use; sessions are single-threaded.
type Controller struct {
	state State
	step  float64
}

// New creates a controller at the identity transform.
func New(opts ...Option) *Controller {
	c := &Controller{state: Identity(), step: DefaultStep}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Scale = geom.Clamp(c.state.Scale, MinScale, MaxScale)
	return c
}

// State returns a copy of the current view.
func (c *Controller) State() State { return c.state }

// Set replaces the view, clamping the scale into range.
func (c *Controller) Set(s State) {
	s.Scale = geom.Clamp(s.Scale, MinScale, MaxScale)
	c.state = s
}

// Reset returns the view to identity.
func (c *Controller) Reset() { c.state = Identity() }

// ZoomAt zooms one step in (deltaSign > 0) or out (deltaSign < 0) around the
// pointer. Only the sign of deltaSign matters.
func (c *Controller) ZoomAt(pointerX, pointerY float64, deltaSign int) {
	sign := 0.0
	switch {
	case deltaSign > 0:
		sign = 1
	case deltaSign < 0:
		sign = -1
	default:
		return
	}

	s := c.state
	worldX := (pointerX - s.PanX) / s.Scale
	worldY := (pointerY - s.PanY) / s.Scale

	next := geom.Clamp(roundScale(s.Scale+sign*c.step), MinScale, MaxScale)
	c.state = State{
		Scale: next,
		PanX:  pointerX - worldX*next,
		PanY:  pointerY - worldY*next,
	}
}

// PanBy translates the view. There is no clamping: the surface may be panned
// arbitrarily far.
func (c *Controller) PanBy(dx, dy float64) {
	c.state.PanX += dx
	c.state.PanY += dy
}

// FitToView scales content of size (cw, ch) to fit a container of size (w, h)
// with a [FitMargin] border and centres it. Degenerate sizes leave the view
// unchanged.
func (c *Controller) FitToView(w, h, cw, ch float64) {
	if w <= 0 || h <= 0 || cw <= 0 || ch <= 0 {
		return
	}
	scale := geom.Clamp(math.Min(w/cw, h/ch)*FitMargin, MinScale, MaxScale)
	c.state = State{
		Scale: scale,
		PanX:  (w - cw*scale) / 2,
		PanY:  (h - ch*scale) / 2,
	}
}

// roundScale strips accumulated float noise from repeated additive steps so
// that ten zoom-ins from 1.0 land on exactly 2.0.
func roundScale(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
