// Package snap aligns a moving object with the canvas and its siblings and
// reports the guide lines to draw while it is snapped.
package snap

import (
	"math"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
)

// DefaultThreshold is the snap distance in screen px.
const DefaultThreshold = 5.0

// Axis names the coordinate a guide fixes: AxisX guides are vertical lines
// at x = Position, AxisY guides horizontal lines at y = Position.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Span is the extent of a guide along the other axis.
type Span struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Guide is one alignment line for the overlay.
type Guide struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
	Span     Span    `json:"span"`
}

type candidate struct {
	pos  float64
	span Span
}

// Engine holds the candidate set of one move gesture.
type Engine struct {
	threshold float64
	scale     float64
	xs, ys    []candidate
	guides    []Guide
}

func NewEngine(threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold, scale: 1}
}

// Threshold returns the configured screen-space threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// SetThreshold changes the screen-space threshold; non-positive values are ignored.
func (e *Engine) SetThreshold(v float64) {
	if v > 0 {
		e.threshold = v
	}
}

// SetScale updates the zoom used to convert the threshold to canvas px.
func (e *Engine) SetScale(scale float64) {
	if scale > 0 {
		e.scale = scale
	}
}

// Start builds the candidate set: canvas edges and center lines plus the
// edges and centers of every sibling except excludeID.
func (e *Engine) Start(canvas geom.Size, siblings []domain.CanvasObject, excludeID string, scale float64) {
	e.End()
	e.SetScale(scale)

	full := func(to float64) Span { return Span{From: 0, To: to} }
	e.xs = append(e.xs,
		candidate{0, full(canvas.Height)},
		candidate{canvas.Width / 2, full(canvas.Height)},
		candidate{canvas.Width, full(canvas.Height)},
	)
	e.ys = append(e.ys,
		candidate{0, full(canvas.Width)},
		candidate{canvas.Height / 2, full(canvas.Width)},
		candidate{canvas.Height, full(canvas.Width)},
	)

	for _, o := range siblings {
		if o.ID == excludeID {
			continue
		}
		f := o.Frame
		vs := Span{From: f.Y, To: f.Y + f.Height}
		hs := Span{From: f.X, To: f.X + f.Width}
		e.xs = append(e.xs,
			candidate{f.X, vs},
			candidate{f.X + f.Width, vs},
			candidate{f.X + f.Width/2, vs},
		)
		e.ys = append(e.ys,
			candidate{f.Y, hs},
			candidate{f.Y + f.Height, hs},
			candidate{f.Y + f.Height/2, hs},
		)
	}
}

// Update snaps a proposed frame position. Each axis snaps on its own to the
// nearest candidate within threshold/scale canvas px; the corrected
// position is returned and the active guides replaced.
func (e *Engine) Update(x, y, width, height float64) (float64, float64) {
	e.guides = e.guides[:0]
	limit := e.threshold / e.scale

	if d, c, ok := nearest(e.xs, []float64{x, x + width, x + width/2}, limit); ok {
		x += d
		e.guides = append(e.guides, Guide{
			Axis:     AxisX,
			Position: c.pos,
			Span:     Span{From: math.Min(y, c.span.From), To: math.Max(y+height, c.span.To)},
		})
	}
	if d, c, ok := nearest(e.ys, []float64{y, y + height, y + height/2}, limit); ok {
		y += d
		e.guides = append(e.guides, Guide{
			Axis:     AxisY,
			Position: c.pos,
			Span:     Span{From: math.Min(x, c.span.From), To: math.Max(x+width, c.span.To)},
		})
	}
	return x, y
}

// nearest finds the smallest correction that puts one of the edges on a
// candidate. Ties keep the first candidate found.
func nearest(cands []candidate, edges []float64, limit float64) (float64, candidate, bool) {
	best, bestDist := candidate{}, math.Inf(1)
	var delta float64
	for _, c := range cands {
		for _, edge := range edges {
			d := c.pos - edge
			if dist := math.Abs(d); dist < bestDist {
				best, bestDist, delta = c, dist, d
			}
		}
	}
	if bestDist > limit {
		return 0, candidate{}, false
	}
	return delta, best, true
}

// Guides returns the guides produced by the last Update.
func (e *Engine) Guides() []Guide {
	return append([]Guide(nil), e.guides...)
}

// End drops the guides and the candidate cache.
func (e *Engine) End() {
	e.xs, e.ys, e.guides = nil, nil, nil
}
