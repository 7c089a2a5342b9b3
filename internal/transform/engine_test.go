package transform_test

import (
	"testing"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
	"photodesigner/internal/gesture"
	"photodesigner/internal/transform"
)

type commit struct {
	id    string
	patch domain.GeometryPatch
}

type recordingObserver struct{ commits []commit }

func (r *recordingObserver) GeometryCommitted(id string, p domain.GeometryPatch) {
	r.commits = append(r.commits, commit{id, p})
}

func (r *recordingObserver) last(t *testing.T) domain.GeometryPatch {
	t.Helper()
	if len(r.commits) == 0 {
		t.Fatal("no commits")
	}
	return r.commits[len(r.commits)-1].patch
}

type mapLayout map[string]geom.Rect

func (m mapLayout) BoundingRect(id string) (geom.Rect, bool) {
	r, ok := m[id]
	return r, ok
}

type fakeSnapper struct {
	started, ended int
	excluded       string
	offset         float64
}

func (f *fakeSnapper) Start(_ geom.Size, _ []domain.CanvasObject, excludeID string, _ float64) {
	f.started++
	f.excluded = excludeID
}

func (f *fakeSnapper) Update(x, y, _, _ float64) (float64, float64) { return x + f.offset, y }
func (f *fakeSnapper) End() { f.ended++ }

type harness struct {
	d      *gesture.Dispatcher
	obs    *recordingObserver
	layout mapLayout
	snap   *fakeSnapper
	scale  float64
	engine *transform.Engine
}

func newHarness() *harness {
	h := &harness{
		d:      gesture.NewDispatcher(),
		obs:    &recordingObserver{},
		layout: mapLayout{"obj": {Left: 100, Top: 100, Width: 100, Height: 100}},
		snap:   &fakeSnapper{},
		scale:  1,
	}
	h.engine = transform.NewEngine(transform.Deps{
		Gestures: gesture.NewController(h.d, nil),
		Observer: h.obs,
		Snapper:  h.snap,
		Layout:   h.layout,
		Scale:    func() float64 { return h.scale },
	})
	return h
}

func (h *harness) send(kind gesture.EventKind, x, y float64) {
	h.d.Dispatch(gesture.PointerEvent{PointerID: 1, Kind: kind, Client: geom.Point{X: x, Y: y}})
}

func down(x, y float64) gesture.PointerEvent {
	return gesture.PointerEvent{PointerID: 1, Kind: gesture.EventDown, Client: geom.Point{X: x, Y: y}}
}

func TestEngine_MoveSnapsAndReleasesSnapper(t *testing.T) {
	h := newHarness()
	h.snap.offset = 3
	obj := frameObj(10, 20, 50, 50, 45)

	if !h.engine.BeginMove(obj, down(0, 0), transform.MoveOptions{Snap: true}) {
		t.Fatal("BeginMove refused")
	}
	if h.snap.started != 1 || h.snap.excluded != "obj" {
		t.Fatalf("snapper not started for obj: %+v", h.snap)
	}
	h.send(gesture.EventMove, 10, 5)

	p := h.obs.last(t)
	if *p.X != 23 || *p.Y != 25 {
		t.Errorf("move = (%v,%v), want (23,25)", *p.X, *p.Y)
	}
	if p.Rotation != nil || p.Width != nil {
		t.Error("move touched fields other than x/y")
	}

	h.send(gesture.EventUp, 10, 5)
	h.send(gesture.EventCancel, 10, 5)
	if h.snap.ended != 1 {
		t.Errorf("snapper ended %d times, want 1", h.snap.ended)
	}
	if h.d.Len() != 0 {
		t.Errorf("residual listeners: %d", h.d.Len())
	}
}

func TestEngine_MoveWithoutSnap(t *testing.T) {
	h := newHarness()
	h.scale = 2
	h.engine.BeginMove(frameObj(0, 0, 50, 50, 0), down(0, 0), transform.MoveOptions{})
	h.send(gesture.EventMove, 40, 20)
	if p := h.obs.last(t); *p.X != 20 || *p.Y != 10 {
		t.Errorf("move = (%v,%v), want (20,10)", *p.X, *p.Y)
	}
	if h.snap.started != 0 {
		t.Error("snapper started for a non-snapping move")
	}
}

func TestEngine_Rotate(t *testing.T) {
	h := newHarness()
	obj := frameObj(0, 0, 100, 100, 10)
	// Bounding rect center is (150,150); start east of it, end south.
	if !h.engine.BeginRotate(obj, down(200, 150)) {
		t.Fatal("BeginRotate refused")
	}
	h.send(gesture.EventMove, 150, 200)
	if r := *h.obs.last(t).Rotation; r != 100 {
		t.Errorf("rotation = %v, want 100", r)
	}
}

func TestEngine_RotateWithoutMeasurementIsNoop(t *testing.T) {
	h := newHarness()
	obj := frameObj(0, 0, 100, 100, 0)
	obj.ID = "unmounted"
	if h.engine.BeginRotate(obj, down(0, 0)) {
		t.Fatal("rotate started without a layout measurement")
	}
	if h.d.Len() != 0 {
		t.Error("listeners attached for a refused gesture")
	}
}

func TestEngine_UnmountMidGestureAborts(t *testing.T) {
	h := newHarness()
	h.engine.BeginResize(frameObj(0, 0, 200, 100, 0), transform.HandleE, down(0, 0))
	h.send(gesture.EventMove, 10, 0)
	delete(h.layout, "obj")
	h.send(gesture.EventMove, 20, 0)
	h.send(gesture.EventMove, 30, 0)

	if len(h.obs.commits) != 1 {
		t.Errorf("commits after unmount: got %d total, want 1", len(h.obs.commits))
	}
	if h.d.Len() != 0 {
		t.Errorf("residual listeners: %d", h.d.Len())
	}
}

func TestEngine_ResizeUsesRotationNotScale(t *testing.T) {
	h := newHarness()
	h.scale = 2
	obj := frameObj(100, 100, 200, 100, 90)
	h.engine.BeginResize(obj, transform.HandleSE, down(0, 0))
	// At 90° the local x axis points down the screen. Resize deltas are the
	// raw screen travel whatever the zoom.
	h.send(gesture.EventMove, 0, 100)
	p := h.obs.last(t)
	if *p.Width != 300 || *p.Height != 150 {
		t.Errorf("size = %vx%v, want 300x150", *p.Width, *p.Height)
	}
}

func TestEngine_ResizeAtZoomIsNotScaled(t *testing.T) {
	h := newHarness()
	h.scale = 2
	h.engine.BeginResize(frameObj(0, 0, 200, 100, 0), transform.HandleSE, down(0, 0))
	h.send(gesture.EventMove, 50, 25)
	p := h.obs.last(t)
	if *p.Width != 250 || *p.Height != 125 {
		t.Errorf("size = %vx%v, want 250x125", *p.Width, *p.Height)
	}
}

func TestEngine_CornerResizeKeepsCoverage(t *testing.T) {
	for _, scale := range []float64{0.3, 1.7, 2.5} {
		for _, rot := range []float64{0, 17, 90, 233} {
			h := newHarness()
			h.scale = scale
			img := imageObj(100, 400, 0, 0, 100, 400)
			img.ID = "obj"
			img.Frame.Rotation = rot
			if !h.engine.BeginResize(img, transform.HandleNW, down(0, 0)) {
				t.Fatal("BeginResize refused")
			}
			for step := 1; step <= 40; step++ {
				h.send(gesture.EventMove, float64(step)*0.7, float64(step)*-1.3)
				got := applied(img, h.obs.last(t))
				if !got.Content.Covers(got.Frame.Width, got.Frame.Height) {
					t.Fatalf("scale %v rot %v step %d: content %+v does not cover %vx%v",
						scale, rot, step, *got.Content, got.Frame.Width, got.Frame.Height)
				}
			}
			h.send(gesture.EventUp, 0, 0)
		}
	}
}

func TestEngine_ResizeEdge(t *testing.T) {
	h := newHarness()
	h.engine.BeginResize(frameObj(0, 0, 200, 100, 0), transform.HandleS, down(0, 0))
	h.send(gesture.EventMove, 999, 40)
	if p := h.obs.last(t); *p.Height != 140 || p.Width != nil {
		t.Errorf("unexpected patch %+v", p)
	}
}

func TestEngine_Pan(t *testing.T) {
	h := newHarness()
	if h.engine.BeginPan(frameObj(0, 0, 100, 100, 0), down(0, 0)) {
		t.Fatal("pan started on an object without content")
	}
	img := imageObj(200, 200, 0, 0, 300, 300)
	img.ID = "obj"
	if !h.engine.BeginPan(img, down(0, 0)) {
		t.Fatal("BeginPan refused")
	}
	h.send(gesture.EventMove, -150, -20)
	p := h.obs.last(t)
	if *p.ContentX != -100 || *p.ContentY != -20 {
		t.Errorf("content = (%v,%v), want (-100,-20)", *p.ContentX, *p.ContentY)
	}
}

func TestEngine_EntryPointsExclusive(t *testing.T) {
	h := newHarness()
	obj := frameObj(0, 0, 100, 100, 0)
	if !h.engine.BeginResize(obj, transform.HandleE, down(0, 0)) {
		t.Fatal("first gesture refused")
	}
	second := gesture.PointerEvent{PointerID: 2, Kind: gesture.EventDown}
	if h.engine.BeginMove(obj, second, transform.MoveOptions{}) {
		t.Error("move started while a resize owns the object")
	}
	if h.engine.BeginRotate(obj, second) {
		t.Error("rotate started while a resize owns the object")
	}
}
