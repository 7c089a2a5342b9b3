package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"photodesigner/internal/domain"
	"photodesigner/internal/editor"
	"photodesigner/internal/geom"
	"photodesigner/internal/scene"
	"photodesigner/internal/snap"
	"photodesigner/internal/viewport"
)

// ─────────────────────────────────────────────────────────────
// Editor Service: open designs and their persistence
// ─────────────────────────────────────────────────────────────

// EditorService keeps one editor per open design. Every editor change is
// emitted to the canvas and written through to storage.
type EditorService struct {
	designs  *DesignService
	settings *SettingsService
	emitter  EventEmitter

	mu   sync.Mutex
	open map[string]*editor.Editor
}

func NewEditorService(designs *DesignService, settings *SettingsService, emitter EventEmitter) *EditorService {
	return &EditorService{
		designs:  designs,
		settings: settings,
		emitter:  emitter,
		open:     make(map[string]*editor.Editor),
	}
}

// Open loads a design into an editor, or returns the one already open.
func (s *EditorService) Open(ctx context.Context, designID string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ed, ok := s.open[designID]; ok {
		return ed, nil
	}
	st, err := s.designs.LoadDesign(designID)
	if err != nil {
		return nil, fmt.Errorf("open design: %w", err)
	}
	cfg := s.settings.Load()
	ed := editor.New(st.Design, st.Objects, &persistObserver{
		ctx:      ctx,
		designID: designID,
		designs:  s.designs,
		emitter:  s.emitter,
	}, editor.Config{
		SnapThreshold:   cfg.SnapThreshold,
		MinScale:        cfg.MinScale,
		MaxScale:        cfg.MaxScale,
		DuplicateOffset: cfg.DuplicateOffset,
		Capturer:        &emitterCapturer{ctx: ctx, emitter: s.emitter},
	})
	s.open[designID] = ed
	return ed, nil
}

// Get returns an open editor.
func (s *EditorService) Get(designID string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ed, ok := s.open[designID]
	if !ok {
		return nil, fmt.Errorf("design %s is not open: %w", designID, domain.ErrNotFound)
	}
	return ed, nil
}

// Close cancels running gestures and forgets the editor.
func (s *EditorService) Close(designID string) {
	s.mu.Lock()
	ed, ok := s.open[designID]
	delete(s.open, designID)
	s.mu.Unlock()
	if ok {
		ed.CancelGestures()
	}
}

// CloseAll closes every open editor.
func (s *EditorService) CloseAll() {
	s.mu.Lock()
	open := s.open
	s.open = make(map[string]*editor.Editor)
	s.mu.Unlock()
	for _, ed := range open {
		ed.CancelGestures()
	}
}

// Reload closes an open design so the next Open reads storage again.
// Used after an import replaced its objects.
func (s *EditorService) Reload(designID string) {
	s.Close(designID)
}

// ApplySettings pushes tuning changes to every open editor.
func (s *EditorService) ApplySettings(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ed := range s.open {
		ed.SetSnapThreshold(st.SnapThreshold)
		ed.SetLimits(st.MinScale, st.MaxScale)
		ed.SetDuplicateOffset(st.DuplicateOffset)
	}
}

// Drop creates an object centered on a client position and stores it.
func (s *EditorService) Drop(ctx context.Context, designID string, t domain.ObjectType, client geom.Point, size geom.Size, payload string) (domain.CanvasObject, error) {
	ed, err := s.Get(designID)
	if err != nil {
		return domain.CanvasObject{}, err
	}
	o := ed.Drop(t, client, size, payload)
	return o, s.created(ctx, o)
}

// Add places a fully specified object on top and stores it.
func (s *EditorService) Add(ctx context.Context, designID string, o domain.CanvasObject) (domain.CanvasObject, error) {
	ed, err := s.Get(designID)
	if err != nil {
		return domain.CanvasObject{}, err
	}
	o = ed.Add(o)
	return o, s.created(ctx, o)
}

func (s *EditorService) created(ctx context.Context, o domain.CanvasObject) error {
	if err := s.designs.SaveObject(o); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventObjectCreated, o)
	return nil
}

// persistObserver forwards editor notifications to the canvas and writes
// them to storage. It runs under the editor lock, so storage errors are
// logged rather than returned.
type persistObserver struct {
	ctx      context.Context
	designID string
	designs  *DesignService
	emitter  EventEmitter
}

func (o *persistObserver) OnUpdate(objectID string, p domain.GeometryPatch) {
	o.emitter.Emit(o.ctx, EventObjectUpdated, map[string]any{"objectId": objectID, "patch": p})
	if err := o.designs.SaveGeometry(objectID, p); err != nil {
		log.Printf("editor: %v", err)
	}
}

func (o *persistObserver) OnSelect(objectID string) {
	o.emitter.Emit(o.ctx, EventObjectSelected, map[string]string{"objectId": objectID})
}

func (o *persistObserver) OnDelete(objectID string) {
	o.emitter.Emit(o.ctx, EventObjectDeleted, map[string]string{"objectId": objectID})
	if err := o.designs.DeleteObject(objectID); err != nil {
		log.Printf("editor: %v", err)
	}
}

func (o *persistObserver) OnDuplicate(sourceID string, dup domain.CanvasObject) {
	o.emitter.Emit(o.ctx, EventObjectDuplicated, map[string]any{"sourceId": sourceID, "object": dup})
	if err := o.designs.SaveObject(dup); err != nil {
		log.Printf("editor: %v", err)
	}
}

func (o *persistObserver) OnChangeOrder(objectID string, dir scene.Direction, touched []domain.CanvasObject) {
	o.emitter.Emit(o.ctx, EventObjectOrderChanged, map[string]any{"objectId": objectID, "direction": dir, "objects": touched})
	if err := o.designs.SaveOrder(touched); err != nil {
		log.Printf("editor: %v", err)
	}
}

func (o *persistObserver) OnGuides(guides []snap.Guide) {
	if guides == nil {
		guides = []snap.Guide{}
	}
	o.emitter.Emit(o.ctx, EventSnapGuides, guides)
}

func (o *persistObserver) OnViewport(v viewport.View) {
	o.emitter.Emit(o.ctx, EventViewportChanged, map[string]any{"designId": o.designID, "view": v})
	if err := o.designs.SaveViewport(o.designID, v.Pan.X, v.Pan.Y, v.Scale); err != nil {
		log.Printf("editor: save viewport: %v", err)
	}
}

// emitterCapturer asks the canvas to capture or release a pointer.
type emitterCapturer struct {
	ctx     context.Context
	emitter EventEmitter
}

func (c *emitterCapturer) SetPointerCapture(pointerID int) error {
	c.emitter.Emit(c.ctx, EventPointerCapture, map[string]int{"pointerId": pointerID})
	return nil
}

func (c *emitterCapturer) ReleasePointerCapture(pointerID int) {
	c.emitter.Emit(c.ctx, EventPointerRelease, map[string]int{"pointerId": pointerID})
}
