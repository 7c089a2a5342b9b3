// Package scene holds the objects of one open design, their paint order
// and the current selection.
package scene

import (
	"sort"

	"github.com/google/uuid"

	"photodesigner/internal/domain"
)

// DefaultDuplicateOffset is how far a duplicate is shifted from its source.
const DefaultDuplicateOffset = 10.0

// Direction of a z-order change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Scene is the ordered object collection of a design. It is not safe for
// concurrent use.
type Scene struct {
	designID        string
	objects         []domain.CanvasObject // insertion order
	selected        string
	duplicateOffset float64
	newID           func() string
}

// New creates a scene from stored objects.
func New(designID string, objects []domain.CanvasObject) *Scene {
	s := &Scene{
		designID:        designID,
		duplicateOffset: DefaultDuplicateOffset,
		newID:           func() string { return uuid.New().String() },
	}
	for _, o := range objects {
		s.objects = append(s.objects, o.Clone())
	}
	return s
}

func (s *Scene) DesignID() string { return s.designID }
func (s *Scene) Len() int         { return len(s.objects) }

// SetDuplicateOffset changes the shift applied by Duplicate.
func (s *Scene) SetDuplicateOffset(v float64) { s.duplicateOffset = v }

// Objects returns copies of all objects in paint order (zIndex ascending,
// insertion order among equal values).
func (s *Scene) Objects() []domain.CanvasObject {
	out := make([]domain.CanvasObject, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Get returns a copy of the object with the given id.
func (s *Scene) Get(id string) (domain.CanvasObject, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.objects[i].Clone(), true
	}
	return domain.CanvasObject{}, false
}

// Add places a new object on top of the paint order: one above the highest
// zIndex, which can exceed the count after imports or deletes. Missing ids
// are generated.
func (s *Scene) Add(o domain.CanvasObject) domain.CanvasObject {
	top := len(s.objects)
	for _, existing := range s.objects {
		top = max(top, existing.ZIndex)
	}
	return s.insert(o, top+1)
}

func (s *Scene) insert(o domain.CanvasObject, z int) domain.CanvasObject {
	o = o.Clone()
	if o.ID == "" {
		o.ID = s.newID()
	}
	o.DesignID = s.designID
	o.ZIndex = z
	s.objects = append(s.objects, o)
	return o.Clone()
}

// Apply replaces the patched geometry fields of an object.
func (s *Scene) Apply(id string, p domain.GeometryPatch) (domain.CanvasObject, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.CanvasObject{}, false
	}
	p.Apply(&s.objects[i])
	return s.objects[i].Clone(), true
}

// ChangeOrder swaps the zIndex of id with its neighbour in paint order.
// It returns both touched objects, or nil when id is already at that end.
func (s *Scene) ChangeOrder(id string, dir Direction) []domain.CanvasObject {
	sorted := s.Objects()
	pos := -1
	for i, o := range sorted {
		if o.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	other := pos + 1
	if dir == Down {
		other = pos - 1
	}
	if other < 0 || other >= len(sorted) {
		return nil
	}

	a, b := s.indexOf(sorted[pos].ID), s.indexOf(sorted[other].ID)
	s.objects[a].ZIndex, s.objects[b].ZIndex = s.objects[b].ZIndex, s.objects[a].ZIndex
	if s.objects[a].ZIndex == s.objects[b].ZIndex {
		// Equal values would leave the order unchanged; separate them.
		if dir == Up {
			s.objects[a].ZIndex++
		} else {
			s.objects[b].ZIndex++
		}
	}
	return []domain.CanvasObject{s.objects[a].Clone(), s.objects[b].Clone()}
}

// BringForward moves id one step up in paint order.
func (s *Scene) BringForward(id string) bool { return s.ChangeOrder(id, Up) != nil }

// SendBackward moves id one step down in paint order.
func (s *Scene) SendBackward(id string) bool { return s.ChangeOrder(id, Down) != nil }

// Duplicate copies an object with a new id, shifted by the duplicate
// offset and placed at zIndex count+1. With non-contiguous zIndex values
// the copy can land below existing objects; drops use Add instead.
func (s *Scene) Duplicate(id string) (domain.CanvasObject, bool) {
	src, ok := s.Get(id)
	if !ok {
		return domain.CanvasObject{}, false
	}
	dup := src.Clone()
	dup.ID = s.newID()
	dup.Frame.X += s.duplicateOffset
	dup.Frame.Y += s.duplicateOffset
	return s.insert(dup, len(s.objects)+1), true
}

// Delete removes an object and clears the selection if it was selected.
func (s *Scene) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	return true
}

// Select sets the selection; an empty id clears it. Unknown ids are refused.
func (s *Scene) Select(id string) bool {
	if id != "" && s.indexOf(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the selected object id, or "".
func (s *Scene) Selected() string { return s.selected }

func (s *Scene) indexOf(id string) int {
	for i := range s.objects {
		if s.objects[i].ID == id {
			return i
		}
	}
	return -1
}
