package app

import (
	"context"
	"log"
	"sync"
	"time"

	"photodesigner/internal/domain"
	"photodesigner/internal/service"
)

// designWatcher polls the database for changes to the open design made by
// another process (the standalone MCP server, the CLI, an inbox import in
// a second instance) and tells the canvas to refresh.
type designWatcher struct {
	ctx      context.Context
	designs  *service.DesignService
	editors  *service.EditorService
	emitter  service.EventEmitter
	interval time.Duration

	mu       sync.Mutex
	designID string
	lastFP   string
	stopCh   chan struct{}
}

func newDesignWatcher(ctx context.Context, designs *service.DesignService, editors *service.EditorService, emitter service.EventEmitter) *designWatcher {
	return &designWatcher{ctx: ctx, designs: designs, editors: editors, emitter: emitter, interval: 2 * time.Second}
}

// SetDesign updates the watched design. Called when the user opens a
// design; "" stops watching.
func (w *designWatcher) SetDesign(designID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.designID = designID
	w.lastFP = ""
}

// Forget stops watching designID if it is the watched one.
func (w *designWatcher) Forget(designID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.designID == designID {
		w.designID = ""
		w.lastFP = ""
	}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *designWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *designWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *designWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	stop := w.stopCh
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// check reports whether the canvas was told to refresh.
func (w *designWatcher) check() bool {
	w.mu.Lock()
	designID, last := w.designID, w.lastFP
	w.mu.Unlock()
	if designID == "" {
		return false
	}

	fp, err := w.designs.Fingerprint(designID)
	if err != nil {
		return false
	}
	w.mu.Lock()
	if w.designID == designID {
		w.lastFP = fp
	}
	w.mu.Unlock()
	if last == "" || fp == last {
		return false
	}

	// Our own editor writes through to storage too; only a difference
	// between storage and the editor counts as an external change.
	if ed, err := w.editors.Get(designID); err == nil {
		if ed.ActiveGestures() > 0 {
			return false
		}
		st, err := w.designs.LoadDesign(designID)
		if err != nil {
			log.Printf("design watcher: %v", err)
			return false
		}
		if sameObjects(ed.Objects(), st.Objects) {
			return false
		}
		w.editors.Reload(designID)
	}

	w.emitter.Emit(w.ctx, service.EventDesignChanged, map[string]string{"designId": designID})
	return true
}

// sameObjects compares paint order and content, ignoring timestamps.
func sameObjects(a, b []domain.CanvasObject) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Type != y.Type || x.Frame != y.Frame || x.ZIndex != y.ZIndex ||
			x.Opacity != y.Opacity || x.IsFlippedX != y.IsFlippedX || x.Payload != y.Payload {
			return false
		}
		if (x.Content == nil) != (y.Content == nil) || (x.Content != nil && *x.Content != *y.Content) {
			return false
		}
	}
	return true
}
