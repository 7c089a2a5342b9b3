package mcpserver

import (
	"math"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
)

const (
	GridSize = 10.0
	Padding  = 20.0 // gap kept around existing objects and the page edge
)

// LayoutEngine picks free spots on the page for objects added over MCP
// without explicit coordinates.
type LayoutEngine struct {
	gridSize float64
	padding  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

// bounds is the axis-aligned box of the rotated frame.
func bounds(f domain.Frame) rect {
	sin, cos := math.Sincos(geom.Radians(f.Rotation))
	w := math.Abs(f.Width*cos) + math.Abs(f.Height*sin)
	h := math.Abs(f.Width*sin) + math.Abs(f.Height*cos)
	cx, cy := f.X+f.Width/2, f.Y+f.Height/2
	return rect{cx - w/2, cy - h/2, w, h}
}

// NextPosition finds the first grid position, scanning rows top to bottom,
// where a newW x newH object fits inside the page without touching the
// existing objects. A page with no room gets the object centered.
func (le *LayoutEngine) NextPosition(existing []domain.CanvasObject, canvas geom.Size, newW, newH float64) (float64, float64) {
	occupied := make([]rect, len(existing))
	for i, o := range existing {
		b := bounds(o.Frame)
		occupied[i] = rect{b.x - le.padding, b.y - le.padding, b.w + le.padding*2, b.h + le.padding*2}
	}

	candidate := rect{w: newW, h: newH}
	for y := le.padding; y+newH <= canvas.Height-le.padding; y += le.gridSize {
		for x := le.padding; x+newW <= canvas.Width-le.padding; x += le.gridSize {
			candidate.x = le.snap(x)
			candidate.y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.x, candidate.y
			}
		}
	}

	return math.Round((canvas.Width - newW) / 2), math.Round((canvas.Height - newH) / 2)
}
