// Package transform turns pointer gestures on a canvas object into geometry
// patches: move, rotate, resize from any of the eight handles, and panning
// the content of an image inside its frame.
package transform

import (
	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
)

// Observer receives every committed gesture step. Patches replace the
// touched fields; they are not diffs.
type Observer interface {
	GeometryCommitted(objectID string, patch domain.GeometryPatch)
}

// Snapper corrects move results against alignment candidates.
type Snapper interface {
	Start(canvas geom.Size, siblings []domain.CanvasObject, excludeID string, scale float64)
	Update(x, y, width, height float64) (float64, float64)
	End()
}

// Layout measures rendered objects in client coordinates. ok is false when
// the object is no longer mounted.
type Layout interface {
	BoundingRect(objectID string) (r geom.Rect, ok bool)
}

// Deps are the collaborators of an Engine. Snapper and Layout are optional.
type Deps struct {
	Gestures *gesture.Controller
	Observer Observer
	Snapper  Snapper
	Layout   Layout
	Scale    func() float64
}

// MoveOptions configures snapping for one move gesture.
type MoveOptions struct {
	Snap     bool
	Canvas   geom.Size
	Siblings []domain.CanvasObject
}

// Engine starts transform gestures and commits their results.
type Engine struct {
	gestures *gesture.Controller
	observer Observer
	snapper  Snapper
	layout   Layout
	scale    func() float64

	snapOwner string // object whose move currently drives the snapper
}

func NewEngine(d Deps) *Engine {
	scale := d.Scale
	if scale == nil {
		scale = func() float64 { return 1 }
	}
	return &Engine{
		gestures: d.Gestures,
		observer: d.Observer,
		snapper:  d.Snapper,
		layout:   d.Layout,
		scale:    scale,
	}
}

// BeginMove starts dragging obj. Only one move at a time drives the
// snapper; concurrent moves on other pointers commit unsnapped.
func (e *Engine) BeginMove(obj domain.CanvasObject, ev gesture.PointerEvent, opts MoveOptions) bool {
	snapping := opts.Snap && e.snapper != nil && e.snapOwner == ""
	_, ok := e.gestures.Begin(obj.ID, ev, obj, gesture.Handlers{
		Move: func(s *gesture.Session, ev gesture.PointerEvent) error {
			if !e.mounted(s.Key) {
				return gesture.ErrAbort
			}
			d := s.Delta(ev)
			x, y := Move(s.Start.Frame, d.X, d.Y, e.scale())
			if snapping {
				x, y = e.snapper.Update(x, y, s.Start.Frame.Width, s.Start.Frame.Height)
			}
			e.commit(s.Key, domain.GeometryPatch{X: domain.F(x), Y: domain.F(y)})
			return nil
		},
		End: func(s *gesture.Session, _ bool) {
			if snapping {
				e.snapper.End()
				e.snapOwner = ""
			}
		},
	})
	if ok && snapping {
		e.snapOwner = obj.ID
		e.snapper.Start(opts.Canvas, opts.Siblings, obj.ID, e.scale())
	}
	return ok
}

// BeginRotate starts rotating obj around the center of its measured
// bounding rect. Without a measurement the gesture does not start.
func (e *Engine) BeginRotate(obj domain.CanvasObject, ev gesture.PointerEvent) bool {
	if e.layout == nil {
		return false
	}
	rect, ok := e.layout.BoundingRect(obj.ID)
	if !ok {
		return false
	}
	center := rect.Center()
	startAngle := geom.AngleDeg(center, ev.Client)

	_, ok = e.gestures.Begin(obj.ID, ev, obj, gesture.Handlers{
		Move: func(s *gesture.Session, ev gesture.PointerEvent) error {
			if !e.mounted(s.Key) {
				return gesture.ErrAbort
			}
			r := Rotate(s.Start.Frame.Rotation, startAngle, geom.AngleDeg(center, ev.Client))
			e.commit(s.Key, domain.GeometryPatch{Rotation: domain.F(r)})
			return nil
		},
	})
	return ok
}

// BeginResize starts resizing obj from handle h.
func (e *Engine) BeginResize(obj domain.CanvasObject, h Handle, ev gesture.PointerEvent) bool {
	_, ok := e.gestures.Begin(obj.ID, ev, obj, gesture.Handlers{
		Move: func(s *gesture.Session, ev gesture.PointerEvent) error {
			if !e.mounted(s.Key) {
				return gesture.ErrAbort
			}
			ldx, ldy := e.localDelta(s, ev)
			if h.IsCorner() {
				e.commit(s.Key, ResizeCorner(s.Start, h, ldx))
			} else {
				e.commit(s.Key, ResizeEdge(s.Start, h, ldx, ldy))
			}
			return nil
		},
	})
	return ok
}

// BeginPan starts moving the content of obj inside its frame. It refuses
// objects whose content does not exceed the frame.
func (e *Engine) BeginPan(obj domain.CanvasObject, ev gesture.PointerEvent) bool {
	if !CanPan(obj) {
		return false
	}
	_, ok := e.gestures.Begin(obj.ID, ev, obj, gesture.Handlers{
		Move: func(s *gesture.Session, ev gesture.PointerEvent) error {
			if !e.mounted(s.Key) {
				return gesture.ErrAbort
			}
			ldx, ldy := e.localDelta(s, ev)
			e.commit(s.Key, PanContent(s.Start, ldx, ldy))
			return nil
		},
	})
	return ok
}

// localDelta rotates the raw pointer travel onto the object's unrotated
// axes, using the rotation captured at gesture start. Unlike Move it does
// not divide by the zoom scale.
func (e *Engine) localDelta(s *gesture.Session, ev gesture.PointerEvent) (float64, float64) {
	d := s.Delta(ev)
	return geom.ToLocal(d.X, d.Y, s.Start.Frame.Rotation)
}

func (e *Engine) mounted(objectID string) bool {
	if e.layout == nil {
		return true
	}
	_, ok := e.layout.BoundingRect(objectID)
	return ok
}

func (e *Engine) commit(objectID string, p domain.GeometryPatch) {
	if p.IsEmpty() || e.observer == nil {
		return
	}
	e.observer.GeometryCommitted(objectID, p)
}
