package editor

import (
	"math"

	"photodesigner/internal/geom"
)

// sceneLayout measures objects from the model instead of a rendered DOM:
// the axis-aligned bounds of the rotated frame, in client px under the
// current view. Used when the host reports no measurements of its own,
// e.g. for gestures driven over MCP.
type sceneLayout struct{ e *Editor }

func (l sceneLayout) BoundingRect(objectID string) (geom.Rect, bool) {
	o, ok := l.e.scene.Get(objectID)
	if !ok {
		return geom.Rect{}, false
	}
	f := o.Frame
	sin, cos := math.Sincos(geom.Radians(f.Rotation))
	w := math.Abs(f.Width*cos) + math.Abs(f.Height*sin)
	h := math.Abs(f.Width*sin) + math.Abs(f.Height*cos)

	scale := l.e.view.Scale()
	c := l.e.view.ContainerRect()
	cx := c.Left + (f.X+f.Width/2)*scale
	cy := c.Top + (f.Y+f.Height/2)*scale
	return geom.Rect{
		Left:   cx - w*scale/2,
		Top:    cy - h*scale/2,
		Width:  w * scale,
		Height: h * scale,
	}, true
}

// hostLayout prefers measurements pushed by the host and falls back to the
// model for objects it has not measured. Objects missing from the scene are
// never mounted.
type hostLayout struct {
	e     *Editor
	rects map[string]geom.Rect
}

func (l hostLayout) BoundingRect(objectID string) (geom.Rect, bool) {
	if _, ok := l.e.scene.Get(objectID); !ok {
		return geom.Rect{}, false
	}
	if r, ok := l.rects[objectID]; ok {
		return r, true
	}
	return sceneLayout{l.e}.BoundingRect(objectID)
}
