package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

type ObjectType string

const (
	ObjectTypeImage   ObjectType = "image"
	ObjectTypeText    ObjectType = "text"
	ObjectTypeShape   ObjectType = "shape"
	ObjectTypeSticker ObjectType = "sticker"
)

// HasContent reports whether objects of this type carry a content rect.
func (t ObjectType) HasContent() bool {
	return t == ObjectTypeImage
}

// Frame is an object's outer rectangle. X/Y is the top-left corner in
// canvas px; Rotation is in degrees, clockwise about the frame center.
type Frame struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// ContentRect is the inner crop rectangle of an image object, relative to
// the frame. It always covers the frame:
// Width >= frame.Width, X in [frame.Width-Width, 0] (same for Y/Height).
type ContentRect struct {
	X      float64 `json:"contentX"`
	Y      float64 `json:"contentY"`
	Width  float64 `json:"contentWidth"`
	Height float64 `json:"contentHeight"`
}

// Covers reports whether c fully covers a frame of the given size.
func (c ContentRect) Covers(width, height float64) bool {
	return c.Width >= width && c.Height >= height &&
		c.X <= 0 && c.X >= width-c.Width &&
		c.Y <= 0 && c.Y >= height-c.Height
}

// CanvasObject is a single element on a design page.
// Content is nil for objects without a crop rect (text, shapes).
type CanvasObject struct {
	ID         string
	DesignID   string
	Type       ObjectType
	Frame      Frame
	Content    *ContentRect
	ZIndex     int
	Opacity    float64
	IsFlippedX bool
	Payload    string // type-specific JSON: asset url, text, fill
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Right and Bottom return the unrotated frame edges.
func (o CanvasObject) Right() float64  { return o.Frame.X + o.Frame.Width }
func (o CanvasObject) Bottom() float64 { return o.Frame.Y + o.Frame.Height }

// Clone returns a deep copy; the content rect is not shared.
func (o CanvasObject) Clone() CanvasObject {
	if o.Content != nil {
		c := *o.Content
		o.Content = &c
	}
	return o
}

// objectJSON is the flat wire shape shared with the web canvas, the
// persistence layer and the export renderer.
type objectJSON struct {
	ID            string     `json:"id"`
	DesignID      string     `json:"designId,omitempty"`
	Type          ObjectType `json:"type"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Rotation      float64    `json:"rotation"`
	ZIndex        int        `json:"zIndex"`
	Opacity       float64    `json:"opacity"`
	IsFlippedX    bool       `json:"isFlippedX"`
	ContentX      *float64   `json:"contentX,omitempty"`
	ContentY      *float64   `json:"contentY,omitempty"`
	ContentWidth  *float64   `json:"contentWidth,omitempty"`
	ContentHeight *float64   `json:"contentHeight,omitempty"`
	Payload       string     `json:"payload,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (o CanvasObject) MarshalJSON() ([]byte, error) {
	v := objectJSON{
		ID:         o.ID,
		DesignID:   o.DesignID,
		Type:       o.Type,
		X:          o.Frame.X,
		Y:          o.Frame.Y,
		Width:      o.Frame.Width,
		Height:     o.Frame.Height,
		Rotation:   o.Frame.Rotation,
		ZIndex:     o.ZIndex,
		Opacity:    o.Opacity,
		IsFlippedX: o.IsFlippedX,
		Payload:    o.Payload,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if c := o.Content; c != nil {
		v.ContentX, v.ContentY = &c.X, &c.Y
		v.ContentWidth, v.ContentHeight = &c.Width, &c.Height
	}
	return json.Marshal(v)
}

func (o *CanvasObject) UnmarshalJSON(data []byte) error {
	var v objectJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = CanvasObject{
		ID:         v.ID,
		DesignID:   v.DesignID,
		Type:       v.Type,
		Frame:      Frame{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height, Rotation: v.Rotation},
		ZIndex:     v.ZIndex,
		Opacity:    v.Opacity,
		IsFlippedX: v.IsFlippedX,
		Payload:    v.Payload,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	// A content rect needs both dimensions; partial records are treated as absent.
	if v.ContentWidth != nil && v.ContentHeight != nil {
		c := &ContentRect{Width: *v.ContentWidth, Height: *v.ContentHeight}
		if v.ContentX != nil {
			c.X = *v.ContentX
		}
		if v.ContentY != nil {
			c.Y = *v.ContentY
		}
		o.Content = c
	}
	return nil
}
