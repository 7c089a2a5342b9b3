package domain

// GeometryPatch carries the geometry fields touched by one gesture step.
// Nil fields are untouched; set fields replace the stored value.
type GeometryPatch struct {
	X             *float64 `json:"x,omitempty"`
	Y             *float64 `json:"y,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Rotation      *float64 `json:"rotation,omitempty"`
	ContentX      *float64 `json:"contentX,omitempty"`
	ContentY      *float64 `json:"contentY,omitempty"`
	ContentWidth  *float64 `json:"contentWidth,omitempty"`
	ContentHeight *float64 `json:"contentHeight,omitempty"`
}

// F returns a pointer to v, for building patches.
func F(v float64) *float64 { return &v }

// IsEmpty reports whether the patch touches no field.
func (p GeometryPatch) IsEmpty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.ContentX == nil && p.ContentY == nil &&
		p.ContentWidth == nil && p.ContentHeight == nil
}

// TouchesContent reports whether any content-rect field is set.
func (p GeometryPatch) TouchesContent() bool {
	return p.ContentX != nil || p.ContentY != nil || p.ContentWidth != nil || p.ContentHeight != nil
}

// Apply replaces the touched fields on o. Content fields are ignored for
// objects without a content rect.
func (p GeometryPatch) Apply(o *CanvasObject) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&o.Frame.X, p.X)
	set(&o.Frame.Y, p.Y)
	set(&o.Frame.Width, p.Width)
	set(&o.Frame.Height, p.Height)
	set(&o.Frame.Rotation, p.Rotation)
	if o.Content != nil {
		set(&o.Content.X, p.ContentX)
		set(&o.Content.Y, p.ContentY)
		set(&o.Content.Width, p.ContentWidth)
		set(&o.Content.Height, p.ContentHeight)
	}
}
