package app

import (
	"photodesigner/internal/domain"
	"photodesigner/internal/editor"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
	"photodesigner/internal/scene"
	"photodesigner/internal/viewport"
)

// ============================================================
// Editor
// ============================================================
//
// The web canvas forwards raw pointer events here; geometry comes back
// through object:updated events. Every binding takes the design id so a
// stale canvas cannot drive another design's editor.

// EditorState is what the canvas needs to render an opened design.
type EditorState struct {
	Design   domain.Design         `json:"design"`
	Objects  []domain.CanvasObject `json:"objects"`
	Selected string                `json:"selected"`
	View     viewport.View         `json:"view"`
	Mode     editor.Mode           `json:"mode"`
}

// OpenDesign opens a design in the editor and starts watching it for
// external changes.
func (a *App) OpenDesign(designID string) (*EditorState, error) {
	ed, err := a.stack.Editors.Open(a.ctx, designID)
	if err != nil {
		return nil, err
	}
	a.watcher.SetDesign(designID)
	return stateOf(ed), nil
}

// CloseDesign cancels gestures and releases the editor.
func (a *App) CloseDesign(designID string) {
	a.stack.Editors.Close(designID)
	a.watcher.SetDesign("")
}

func stateOf(ed *editor.Editor) *EditorState {
	objects := ed.Objects()
	if objects == nil {
		objects = []domain.CanvasObject{}
	}
	return &EditorState{
		Design:   ed.Design(),
		Objects:  objects,
		Selected: ed.Selected(),
		View:     ed.View(),
		Mode:     ed.Mode(),
	}
}

// SetContainer reports the untransformed canvas element rect.
func (a *App) SetContainer(designID string, x, y, width, height float64) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	ed.SetContainer(geom.Point{X: x, Y: y}, geom.Size{Width: width, Height: height})
	return nil
}

// MeasureObject reports the rendered bounding rect of an object. A zero
// rect forgets it.
func (a *App) MeasureObject(designID, objectID string, rect geom.Rect) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	ed.Measure(objectID, rect)
	return nil
}

func (a *App) SetMode(designID string, mode editor.Mode) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	ed.SetMode(mode)
	return nil
}

func (a *App) SetZoom(designID string, scale float64) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	ed.SetScale(scale)
	return nil
}

// ZoomAt zooms by factor keeping the client point under the cursor fixed.
func (a *App) ZoomAt(designID string, factor, clientX, clientY float64) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	ed.ZoomAt(factor, geom.Point{X: clientX, Y: clientY})
	return nil
}

// ── Pointer events ─────────────────────────────────────────

func (a *App) PointerDown(designID string, target editor.Target, ev gesture.PointerEvent) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	return ed.PointerDown(target, ev)
}

func (a *App) PointerMove(designID string, ev gesture.PointerEvent) {
	if ed, err := a.stack.Editors.Get(designID); err == nil {
		ed.PointerMove(ev)
	}
}

func (a *App) PointerUp(designID string, ev gesture.PointerEvent) {
	if ed, err := a.stack.Editors.Get(designID); err == nil {
		ed.PointerUp(ev)
	}
}

func (a *App) PointerCancel(designID string, ev gesture.PointerEvent) {
	if ed, err := a.stack.Editors.Get(designID); err == nil {
		ed.PointerCancel(ev)
	}
}

// ── Objects ────────────────────────────────────────────────

// DropObject creates an object centered on a client position, e.g. a
// photo dragged in from the asset panel.
func (a *App) DropObject(designID, objectType string, clientX, clientY, width, height float64, payload string) (domain.CanvasObject, error) {
	return a.stack.Editors.Drop(a.ctx, designID, domain.ObjectType(objectType),
		geom.Point{X: clientX, Y: clientY}, geom.Size{Width: width, Height: height}, payload)
}

func (a *App) SelectObject(designID, objectID string) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	return ed.Select(objectID)
}

func (a *App) DeleteObject(designID, objectID string) error {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return err
	}
	return ed.Delete(objectID)
}

func (a *App) DuplicateObject(designID, objectID string) (domain.CanvasObject, error) {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return domain.CanvasObject{}, err
	}
	return ed.Duplicate(objectID)
}

// ChangeOrder moves an object one step "up" or "down" in paint order.
func (a *App) ChangeOrder(designID, objectID, direction string) (bool, error) {
	ed, err := a.stack.Editors.Get(designID)
	if err != nil {
		return false, err
	}
	return ed.ChangeOrder(objectID, scene.Direction(direction))
}
