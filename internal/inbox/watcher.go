// Package inbox imports design documents dropped into a directory.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"photodesigner/internal/domain"
)

// DefaultDelay is how long a file must stay quiet before it is imported.
const DefaultDelay = 500 * time.Millisecond

// ImportHandler receives every parsed document.
type ImportHandler func(ctx context.Context, path string, doc domain.DesignDocument) error

// Watcher imports *.json design documents written to a directory. Writes
// to the same file are debounced so editors that save in several steps
// trigger one import.
type Watcher struct {
	dir     string
	handler ImportHandler
	delay   time.Duration

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher for dir. A non-positive delay selects DefaultDelay.
func New(dir string, delay time.Duration, handler ImportHandler) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Watcher{
		dir:     abs,
		handler: handler,
		delay:   delay,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start imports the documents already present, then watches for new ones
// until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = watcher

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	w.Scan(ctx)
	go w.loop(ctx)
	log.Printf("inbox: watching %s", w.dir)
	return nil
}

// Scan imports every document currently in the directory.
func (w *Watcher) Scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("inbox: read %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isDocument(e.Name()) {
			continue
		}
		w.importFile(ctx, filepath.Join(w.dir, e.Name()))
	}
}

// Close stops watching and cancels pending imports.
func (w *Watcher) Close() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.watcher.Close()
	<-w.done

	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isDocument(event.Name) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.debounce(ctx, absPath)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("inbox: watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounce(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, exists := w.timers[path]; exists {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.importFile(ctx, path)
	})
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	doc, err := ReadDocument(path)
	if err != nil {
		log.Printf("inbox: %v", err)
		return
	}
	if err := w.handler(ctx, path, doc); err != nil {
		log.Printf("inbox: import %s: %v", filepath.Base(path), err)
		return
	}
	log.Printf("inbox: imported %s as design %s", filepath.Base(path), doc.Design.ID)
}

// ReadDocument parses one design document file.
func ReadDocument(path string) (domain.DesignDocument, error) {
	var doc domain.DesignDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// isDocument skips editor swap and temp files.
func isDocument(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".json") && !strings.HasPrefix(base, ".")
}
