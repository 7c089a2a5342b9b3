// Package geom converts between screen and canvas space and holds the small
// amount of trigonometry the editor needs.
package geom

import "math"

// Point is a position in either client (screen) or canvas px.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle, typically a measured element rect in
// client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Center() Point {
	return Point{r.Left + r.Width/2, r.Top + r.Height/2}
}

// ScreenToCanvas maps a client position into canvas px given the measured
// container rect and the zoom scale. A non-positive scale is treated as 1.
func ScreenToCanvas(client Point, container Rect, scale float64) Point {
	if scale <= 0 {
		scale = 1
	}
	return Point{
		X: (client.X - container.Left) / scale,
		Y: (client.Y - container.Top) / scale,
	}
}

// ToLocal rotates a screen-space delta into the unrotated frame of an object
// rotated by rotationDeg (clockwise, screen y down).
func ToLocal(dx, dy, rotationDeg float64) (float64, float64) {
	sin, cos := math.Sincos(Radians(rotationDeg))
	return dx*cos + dy*sin, dy*cos - dx*sin
}

// AngleDeg returns the angle of p around center in degrees.
func AngleDeg(center, p Point) float64 {
	return Degrees(math.Atan2(p.Y-center.Y, p.X-center.X))
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeDegrees maps d into [0, 360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Clamp limits v to [lo, hi]. When lo > hi, lo wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
