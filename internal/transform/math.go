package transform

import (
	"math"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
)

// Minimum frame sizes. Corner handles keep the aspect ratio and need more
// room; edge handles only shrink one axis.
const (
	MinCornerSize = 50.0
	MinEdgeSize   = 20.0
)

// Move translates the frame in world space. The delta is not rotated: an
// object is dragged along the screen axes whatever its rotation.
func Move(start domain.Frame, screenDx, screenDy, scale float64) (x, y float64) {
	if scale <= 0 {
		scale = 1
	}
	return math.Round(start.X + screenDx/scale), math.Round(start.Y + screenDy/scale)
}

// Rotate applies the pointer's angular travel around the frame center to
// the starting rotation. The result is not clamped or normalised.
func Rotate(startRotation, startAngle, currentAngle float64) float64 {
	return math.Round(startRotation + (currentAngle - startAngle))
}

// ResizeCorner resizes from a corner handle keeping the start aspect ratio.
// localDx is the pointer travel along the object's own x axis. The content
// rect scales with the frame; the corner opposite the handle stays put.
func ResizeCorner(start domain.CanvasObject, h Handle, localDx float64) domain.GeometryPatch {
	f := start.Frame
	if f.Width <= 0 || f.Height <= 0 {
		return domain.GeometryPatch{}
	}
	ratio := f.Width / f.Height

	var w float64
	if h.Has('e') {
		w = math.Max(MinCornerSize, f.Width+localDx)
	} else {
		w = math.Max(MinCornerSize, f.Width-localDx)
	}
	// Height derives from the rounded width so frame and content share one
	// scale factor.
	w = math.Round(w)
	hgt := math.Round(w / ratio)
	dW, dH := w-f.Width, hgt-f.Height

	sin, cos := math.Sincos(geom.Radians(f.Rotation))
	x, y := f.X, f.Y
	if h.Has('w') {
		x -= dW * cos
		y -= dW * sin
	}
	if h.Has('n') {
		x += dH * sin
		y -= dH * cos
	}

	p := domain.GeometryPatch{
		X:      domain.F(math.Round(x)),
		Y:      domain.F(math.Round(y)),
		Width:  domain.F(w),
		Height: domain.F(hgt),
	}
	if c := start.Content; c != nil {
		sf := w / f.Width
		// Rounding can leave the content a pixel short of the frame.
		cw := math.Max(math.Round(c.Width*sf), w)
		ch := math.Max(math.Round(c.Height*sf), hgt)
		p.ContentWidth = domain.F(cw)
		p.ContentHeight = domain.F(ch)
		p.ContentX = domain.F(geom.Clamp(math.Round(c.X*sf), w-cw, 0))
		p.ContentY = domain.F(geom.Clamp(math.Round(c.Y*sf), hgt-ch, 0))
	}
	return p
}

// ResizeEdge resizes a single axis from an edge handle. With a content rect
// the frame can never grow past the content, so no empty space is exposed.
func ResizeEdge(start domain.CanvasObject, h Handle, localDx, localDy float64) domain.GeometryPatch {
	f, c := start.Frame, start.Content
	sin, cos := math.Sincos(geom.Radians(f.Rotation))
	var p domain.GeometryPatch

	switch h {
	case HandleE:
		w := math.Round(math.Max(MinEdgeSize, f.Width+localDx))
		if c != nil {
			w = math.Min(w, c.X+c.Width)
		}
		p.Width = domain.F(w)

	case HandleS:
		hgt := math.Round(math.Max(MinEdgeSize, f.Height+localDy))
		if c != nil {
			hgt = math.Min(hgt, c.Y+c.Height)
		}
		p.Height = domain.F(hgt)

	case HandleW:
		lo := math.Inf(-1)
		if c != nil {
			lo = c.X
		}
		dx := geom.Clamp(math.Round(localDx), lo, f.Width-MinEdgeSize)
		p.Width = domain.F(f.Width - dx)
		p.X = domain.F(math.Round(f.X + dx*cos))
		p.Y = domain.F(math.Round(f.Y + dx*sin))
		if c != nil {
			p.ContentX = domain.F(c.X - dx)
		}

	case HandleN:
		lo := math.Inf(-1)
		if c != nil {
			lo = c.Y
		}
		dy := geom.Clamp(math.Round(localDy), lo, f.Height-MinEdgeSize)
		p.Height = domain.F(f.Height - dy)
		p.X = domain.F(math.Round(f.X - dy*sin))
		p.Y = domain.F(math.Round(f.Y + dy*cos))
		if c != nil {
			p.ContentY = domain.F(c.Y - dy)
		}
	}
	return p
}

// PanContent moves the content rect inside the frame, clamped so that the
// content keeps covering it.
func PanContent(start domain.CanvasObject, localDx, localDy float64) domain.GeometryPatch {
	c := start.Content
	if c == nil {
		return domain.GeometryPatch{}
	}
	f := start.Frame
	return domain.GeometryPatch{
		ContentX: domain.F(geom.Clamp(math.Round(c.X+localDx), f.Width-c.Width, 0)),
		ContentY: domain.F(geom.Clamp(math.Round(c.Y+localDy), f.Height-c.Height, 0)),
	}
}

// CanPan reports whether the content is larger than the frame on either axis.
func CanPan(o domain.CanvasObject) bool {
	c := o.Content
	return c != nil && (c.Width > o.Frame.Width || c.Height > o.Frame.Height)
}
