// Package editor composes the interaction core for one open design: the
// scene, the viewport, the gesture controller, transforms and snapping.
//
// Host calls are serialised by a mutex. Observer callbacks run while it is
// held and must not call back into the Editor.
package editor

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
	"photodesigner/internal/scene"
	"photodesigner/internal/snap"
	"photodesigner/internal/transform"
	"photodesigner/internal/viewport"
)

// ErrRefused is returned when a gesture cannot start: the object or pointer
// is busy, or the target does not support it.
var ErrRefused = errors.New("gesture refused")

// TargetKind is the entry point a pointer went down on.
type TargetKind string

const (
	TargetBody    TargetKind = "body"
	TargetRotate  TargetKind = "rotate"
	TargetResize  TargetKind = "resize"
	TargetContent TargetKind = "content"
)

// Target identifies what was pressed. An empty ObjectID is the background.
type Target struct {
	ObjectID string           `json:"objectId"`
	Kind     TargetKind       `json:"kind"`
	Handle   transform.Handle `json:"handle,omitempty"`
}

// Mode flags set by the toolbar.
type Mode struct {
	Panning   bool `json:"panning"`
	Magnifier bool `json:"magnifier"`
}

// Observer receives the editor's outbound notifications.
type Observer interface {
	OnUpdate(objectID string, patch domain.GeometryPatch)
	OnSelect(objectID string)
	OnDelete(objectID string)
	OnDuplicate(sourceID string, dup domain.CanvasObject)
	OnChangeOrder(objectID string, dir scene.Direction, touched []domain.CanvasObject)
	OnGuides(guides []snap.Guide)
	OnViewport(v viewport.View)
}

// NopObserver can be embedded to implement only some callbacks.
type NopObserver struct{}

func (NopObserver) OnUpdate(string, domain.GeometryPatch)                        {}
func (NopObserver) OnSelect(string)                                              {}
func (NopObserver) OnDelete(string)                                              {}
func (NopObserver) OnDuplicate(string, domain.CanvasObject)                      {}
func (NopObserver) OnChangeOrder(string, scene.Direction, []domain.CanvasObject) {}
func (NopObserver) OnGuides([]snap.Guide)                                        {}
func (NopObserver) OnViewport(viewport.View)                                     {}

// Config tunes an Editor. Zero values select the package defaults.
type Config struct {
	SnapThreshold   float64
	MinScale        float64
	MaxScale        float64
	DuplicateOffset float64
	Capturer        gesture.Capturer
}

// Editor is the interaction core of one open design.
type Editor struct {
	mu sync.Mutex

	design   domain.Design
	scene    *scene.Scene
	view     *viewport.Controller
	gestures *gesture.Controller
	engine   *transform.Engine
	snapper  *snap.Engine
	layout   hostLayout
	obs      Observer
	mode     Mode
}

// New opens design with its stored objects.
func New(design domain.Design, objects []domain.CanvasObject, obs Observer, cfg Config) *Editor {
	if obs == nil {
		obs = NopObserver{}
	}
	e := &Editor{
		design:   design,
		scene:    scene.New(design.ID, objects),
		gestures: gesture.NewController(gesture.NewDispatcher(), cfg.Capturer),
		snapper:  snap.NewEngine(cfg.SnapThreshold),
		obs:      obs,
	}
	if cfg.DuplicateOffset > 0 {
		e.scene.SetDuplicateOffset(cfg.DuplicateOffset)
	}
	e.layout = hostLayout{e: e, rects: make(map[string]geom.Rect)}

	e.view = viewport.New(e.gestures, cfg.MinScale, cfg.MaxScale)
	if design.ViewportZoom > 0 {
		e.view.SetScale(design.ViewportZoom)
	}
	e.view.SetPan(geom.Point{X: design.ViewportX, Y: design.ViewportY})
	e.view.OnChange(obs.OnViewport)

	e.engine = transform.NewEngine(transform.Deps{
		Gestures: e.gestures,
		Observer: committer{e},
		Snapper:  guideSnapper{e},
		Layout:   e.layout,
		Scale:    e.view.Scale,
	})
	return e
}

// Design returns the design the editor was opened with.
func (e *Editor) Design() domain.Design {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.design
}

// Objects returns the current objects in paint order.
func (e *Editor) Objects() []domain.CanvasObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Objects()
}

// Object returns one object by id.
func (e *Editor) Object(id string) (domain.CanvasObject, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Get(id)
}

func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Selected()
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) View() viewport.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.View()
}

// ActiveGestures returns how many gestures are in progress.
func (e *Editor) ActiveGestures() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gestures.Len()
}

// Guides returns the snap guides of the current move, if any.
func (e *Editor) Guides() []snap.Guide {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapper.Guides()
}

// SetMode switches the toolbar mode. Entering panning mode cancels object
// gestures in progress.
func (e *Editor) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m.Panning && !e.mode.Panning {
		e.gestures.CancelAll()
	}
	e.mode = m
}

// SetContainer records the untransformed canvas element position and size.
func (e *Editor) SetContainer(origin geom.Point, size geom.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetContainer(origin, size)
}

// SetScale sets the zoom, clamped to the configured range.
func (e *Editor) SetScale(s float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetScale(s)
}

// SetPan sets the pan offset.
func (e *Editor) SetPan(p geom.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetPan(p)
}

// SetLimits changes the zoom range.
func (e *Editor) SetLimits(minScale, maxScale float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetLimits(minScale, maxScale)
}

// SetSnapThreshold changes the snap distance in screen px.
func (e *Editor) SetSnapThreshold(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapper.SetThreshold(v)
}

// SetDuplicateOffset changes how far duplicates are shifted.
func (e *Editor) SetDuplicateOffset(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.SetDuplicateOffset(v)
}

// ZoomAt zooms by factor around a client position (wheel zoom).
func (e *Editor) ZoomAt(factor float64, focus geom.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ZoomAt(factor, focus)
}

// Measure stores the rendered bounding rect of an object, used as the
// rotation center. A zero rect forgets the measurement.
func (e *Editor) Measure(objectID string, r geom.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r == (geom.Rect{}) {
		delete(e.layout.rects, objectID)
		return
	}
	e.layout.rects[objectID] = r
}

// PointerDown starts the gesture for target. Pressing an object selects
// it; pressing the background clears the selection.
func (e *Editor) PointerDown(t Target, ev gesture.PointerEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.Kind = gesture.EventDown

	if e.mode.Magnifier && e.view.PointerDown(ev) {
		// A second finger turns whatever was going on into a pinch.
		e.gestures.CancelAll()
		return nil
	}
	if e.mode.Panning {
		if !e.view.BeginPan(ev) {
			return ErrRefused
		}
		return nil
	}
	if t.ObjectID == "" {
		e.selectLocked("")
		return nil
	}

	obj, ok := e.scene.Get(t.ObjectID)
	if !ok {
		return fmt.Errorf("object %s: %w", t.ObjectID, domain.ErrNotFound)
	}
	e.selectLocked(obj.ID)

	var started bool
	switch t.Kind {
	case TargetBody, "":
		started = e.engine.BeginMove(obj, ev, transform.MoveOptions{
			Snap:     true,
			Canvas:   geom.Size{Width: e.design.CanvasWidth, Height: e.design.CanvasHeight},
			Siblings: e.scene.Objects(),
		})
	case TargetRotate:
		started = e.engine.BeginRotate(obj, ev)
	case TargetResize:
		started = e.engine.BeginResize(obj, t.Handle, ev)
	case TargetContent:
		started = e.engine.BeginPan(obj, ev)
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if !started {
		return ErrRefused
	}
	return nil
}

// PointerMove routes a move event to the pinch or to the gesture owning
// the pointer.
func (e *Editor) PointerMove(ev gesture.PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.Kind = gesture.EventMove
	if e.mode.Magnifier && e.view.PointerMove(ev) {
		return
	}
	e.gestures.Dispatcher().Dispatch(ev)
}

// PointerUp ends the gesture owning the pointer.
func (e *Editor) PointerUp(ev gesture.PointerEvent) {
	e.release(ev, gesture.EventUp)
}

// PointerCancel cancels the gesture owning the pointer with the same
// cleanup as PointerUp.
func (e *Editor) PointerCancel(ev gesture.PointerEvent) {
	e.release(ev, gesture.EventCancel)
}

func (e *Editor) release(ev gesture.PointerEvent, kind gesture.EventKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.Kind = kind
	e.view.PointerUp(ev)
	e.gestures.Dispatcher().Dispatch(ev)
}

// CancelGestures cancels everything in progress, e.g. before closing.
func (e *Editor) CancelGestures() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gestures.CancelAll()
}

// Drop creates an object of the given type centered on a client position.
// Types with content get a content rect equal to the frame.
func (e *Editor) Drop(t domain.ObjectType, client geom.Point, size geom.Size, payload string) domain.CanvasObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := geom.ScreenToCanvas(client, e.view.ContainerRect(), e.view.Scale())
	o := domain.CanvasObject{
		Type: t,
		Frame: domain.Frame{
			X:      math.Round(p.X - size.Width/2),
			Y:      math.Round(p.Y - size.Height/2),
			Width:  size.Width,
			Height: size.Height,
		},
		Opacity: 1,
		Payload: payload,
	}
	if t.HasContent() {
		o.Content = &domain.ContentRect{Width: size.Width, Height: size.Height}
	}
	return e.addLocked(o)
}

// Add inserts a fully specified object on top of the paint order.
func (e *Editor) Add(o domain.CanvasObject) domain.CanvasObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(o)
}

func (e *Editor) addLocked(o domain.CanvasObject) domain.CanvasObject {
	added := e.scene.Add(o)
	e.selectLocked(added.ID)
	return added
}

// Select changes the selection; "" clears it.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" {
		if _, ok := e.scene.Get(id); !ok {
			return fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
		}
	}
	e.selectLocked(id)
	return nil
}

func (e *Editor) selectLocked(id string) {
	if e.scene.Selected() == id {
		return
	}
	if e.scene.Select(id) {
		e.obs.OnSelect(id)
	}
}

// Delete removes an object. A gesture running on it is cancelled and the
// selection cleared if it pointed at it.
func (e *Editor) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.gestures.Active(id); ok {
		s.Cancel()
	}
	wasSelected := e.scene.Selected() == id
	if !e.scene.Delete(id) {
		return fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	delete(e.layout.rects, id)
	e.obs.OnDelete(id)
	if wasSelected {
		e.obs.OnSelect("")
	}
	return nil
}

// Duplicate copies an object on top of the paint order.
func (e *Editor) Duplicate(id string) (domain.CanvasObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dup, ok := e.scene.Duplicate(id)
	if !ok {
		return domain.CanvasObject{}, fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	e.obs.OnDuplicate(id, dup)
	return dup, nil
}

// ChangeOrder moves an object one step up or down in paint order. It
// reports false when the object is already at that end.
func (e *Editor) ChangeOrder(id string, dir scene.Direction) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.scene.Get(id); !ok {
		return false, fmt.Errorf("object %s: %w", id, domain.ErrNotFound)
	}
	if dir != scene.Up && dir != scene.Down {
		return false, fmt.Errorf("unknown direction %q", dir)
	}
	touched := e.scene.ChangeOrder(id, dir)
	if touched == nil {
		return false, nil
	}
	e.obs.OnChangeOrder(id, dir, touched)
	return true, nil
}

// committer applies transform results to the scene before notifying.
type committer struct{ e *Editor }

func (c committer) GeometryCommitted(id string, p domain.GeometryPatch) {
	if _, ok := c.e.scene.Apply(id, p); !ok {
		return
	}
	c.e.obs.OnUpdate(id, p)
}

// guideSnapper forwards to the snap engine and publishes its guides.
type guideSnapper struct{ e *Editor }

func (g guideSnapper) Start(canvas geom.Size, siblings []domain.CanvasObject, excludeID string, scale float64) {
	g.e.snapper.Start(canvas, siblings, excludeID, scale)
}

func (g guideSnapper) Update(x, y, w, h float64) (float64, float64) {
	x, y = g.e.snapper.Update(x, y, w, h)
	g.e.obs.OnGuides(g.e.snapper.Guides())
	return x, y
}

func (g guideSnapper) End() {
	g.e.snapper.End()
	g.e.obs.OnGuides(nil)
}
