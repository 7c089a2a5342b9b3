// Package viewport owns zoom and pan of the canvas: wheel zoom, two-finger
// pinch and single-pointer panning.
package viewport

import (
	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
)

const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 5.0
)

// gestureKey is the gesture.Controller key of a viewport pan.
const gestureKey = "viewport"

// View is the rendering transform: screen = origin + pan + canvas*scale.
type View struct {
	Scale float64    `json:"scale"`
	Pan   geom.Point `json:"pan"`
}

type pinch struct {
	a, b       int
	startDist  float64
	startScale float64
	anchor     geom.Point // canvas point under the start midpoint
}

// Controller holds the current view. It is not safe for concurrent use.
type Controller struct {
	min, max float64
	view     View
	origin   geom.Point
	size     geom.Size

	gestures *gesture.Controller
	pointers map[int]geom.Point
	pinch    *pinch
	onChange func(View)
}

func New(gestures *gesture.Controller, minScale, maxScale float64) *Controller {
	c := &Controller{
		view:     View{Scale: 1},
		gestures: gestures,
		pointers: make(map[int]geom.Point),
	}
	c.SetLimits(minScale, maxScale)
	return c
}

// OnChange registers a callback fired after every view change.
func (c *Controller) OnChange(fn func(View)) { c.onChange = fn }

// SetLimits changes the zoom range; invalid ranges fall back to the
// defaults. The current scale is re-clamped.
func (c *Controller) SetLimits(minScale, maxScale float64) {
	if minScale <= 0 || maxScale < minScale {
		minScale, maxScale = DefaultMinScale, DefaultMaxScale
	}
	c.min, c.max = minScale, maxScale
	c.SetScale(c.view.Scale)
}

func (c *Controller) Limits() (float64, float64) { return c.min, c.max }
func (c *Controller) View() View                 { return c.view }
func (c *Controller) Scale() float64             { return c.view.Scale }

// SetContainer records the untransformed container position and size in
// client px.
func (c *Controller) SetContainer(origin geom.Point, size geom.Size) {
	c.origin, c.size = origin, size
}

// ContainerRect is the measured rect of the transformed canvas element, the
// input CoordinateMapper expects.
func (c *Controller) ContainerRect() geom.Rect {
	return geom.Rect{
		Left:   c.origin.X + c.view.Pan.X,
		Top:    c.origin.Y + c.view.Pan.Y,
		Width:  c.size.Width * c.view.Scale,
		Height: c.size.Height * c.view.Scale,
	}
}

// ToCanvas maps a client position into canvas px under the current view.
func (c *Controller) ToCanvas(client geom.Point) geom.Point {
	return geom.ScreenToCanvas(client, c.ContainerRect(), c.view.Scale)
}

// SetScale sets the zoom, clamped to the configured range.
func (c *Controller) SetScale(s float64) {
	c.set(View{Scale: geom.Clamp(s, c.min, c.max), Pan: c.view.Pan})
}

// SetPan sets the pan offset. Pan is not constrained.
func (c *Controller) SetPan(p geom.Point) {
	c.set(View{Scale: c.view.Scale, Pan: p})
}

// ZoomAt multiplies the scale by factor keeping the canvas point under
// focus (client px) in place.
func (c *Controller) ZoomAt(factor float64, focus geom.Point) {
	if factor <= 0 {
		return
	}
	anchor := c.ToCanvas(focus)
	c.zoomAround(c.view.Scale*factor, anchor, focus)
}

func (c *Controller) zoomAround(scale float64, anchor, focus geom.Point) {
	scale = geom.Clamp(scale, c.min, c.max)
	c.set(View{
		Scale: scale,
		Pan: geom.Point{
			X: focus.X - c.origin.X - anchor.X*scale,
			Y: focus.Y - c.origin.Y - anchor.Y*scale,
		},
	})
}

// BeginPan starts a single-pointer pan. The raw client delta is added to
// the pan offset; it is not divided by the scale.
func (c *Controller) BeginPan(ev gesture.PointerEvent) bool {
	startPan := c.view.Pan
	_, ok := c.gestures.Begin(gestureKey, ev, domain.CanvasObject{}, gesture.Handlers{
		Move: func(s *gesture.Session, ev gesture.PointerEvent) error {
			c.SetPan(startPan.Add(s.Delta(ev)))
			return nil
		},
	})
	return ok
}

// Panning reports whether a pan gesture is active.
func (c *Controller) Panning() bool {
	_, ok := c.gestures.Active(gestureKey)
	return ok
}

// PointerDown tracks a pointer for pinch detection. It returns true once
// two pointers are down and a pinch has started.
func (c *Controller) PointerDown(ev gesture.PointerEvent) bool {
	c.pointers[ev.PointerID] = ev.Client
	if c.pinch != nil || len(c.pointers) != 2 {
		return c.pinch != nil
	}
	if s, ok := c.gestures.Active(gestureKey); ok {
		s.Cancel()
	}
	ids := make([]int, 0, 2)
	for id := range c.pointers {
		ids = append(ids, id)
	}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	pa, pb := c.pointers[ids[0]], c.pointers[ids[1]]
	dist := pa.Dist(pb)
	if dist == 0 {
		return false
	}
	c.pinch = &pinch{
		a:          ids[0],
		b:          ids[1],
		startDist:  dist,
		startScale: c.view.Scale,
		anchor:     c.ToCanvas(pa.Mid(pb)),
	}
	return true
}

// PointerMove updates a tracked pointer. During a pinch the distance ratio
// drives the scale and the midpoint stays over the same canvas point.
func (c *Controller) PointerMove(ev gesture.PointerEvent) bool {
	if _, ok := c.pointers[ev.PointerID]; !ok {
		return false
	}
	c.pointers[ev.PointerID] = ev.Client
	p := c.pinch
	if p == nil || (ev.PointerID != p.a && ev.PointerID != p.b) {
		return false
	}
	pa, pb := c.pointers[p.a], c.pointers[p.b]
	c.zoomAround(p.startScale*pa.Dist(pb)/p.startDist, p.anchor, pa.Mid(pb))
	return true
}

// PointerUp forgets a pointer; lifting either pinch pointer ends the pinch.
func (c *Controller) PointerUp(ev gesture.PointerEvent) {
	delete(c.pointers, ev.PointerID)
	if p := c.pinch; p != nil && (ev.PointerID == p.a || ev.PointerID == p.b) {
		c.pinch = nil
	}
}

// Pinching reports whether a pinch is in progress.
func (c *Controller) Pinching() bool { return c.pinch != nil }

func (c *Controller) set(v View) {
	if v == c.view {
		return
	}
	c.view = v
	if c.onChange != nil {
		c.onChange(v)
	}
}
