package inbox_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"photodesigner/internal/domain"
	"photodesigner/internal/inbox"
)

type recorder struct {
	mu   sync.Mutex
	docs []domain.DesignDocument
	ch   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) handle(_ context.Context, _ string, doc domain.DesignDocument) error {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for import")
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func writeDoc(t *testing.T, path, name string) {
	t.Helper()
	data, err := json.Marshal(domain.DesignDocument{
		Version: domain.DocumentVersion,
		Design:  domain.Design{ID: "d1", Name: name},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ScansExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "cover.json"), "Cover")
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)
	os.WriteFile(filepath.Join(dir, ".cover.json"), []byte("{"), 0644)

	rec := newRecorder()
	w, err := inbox.New(dir, 20*time.Millisecond, rec.handle)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if rec.count() != 1 || rec.docs[0].Design.Name != "Cover" {
		t.Fatalf("docs = %+v", rec.docs)
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	w, err := inbox.New(dir, 100*time.Millisecond, rec.handle)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	path := filepath.Join(dir, "cover.json")
	for _, name := range []string{"v1", "v2", "v3"} {
		writeDoc(t, path, name)
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)
	time.Sleep(250 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.docs) != 1 {
		t.Fatalf("imports = %d, want 1", len(rec.docs))
	}
	if rec.docs[0].Design.Name != "v3" {
		t.Errorf("imported %q, want the last write", rec.docs[0].Design.Name)
	}
}

func TestWatcher_SkipsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	w, err := inbox.New(dir, 20*time.Millisecond, rec.handle)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644)
	time.Sleep(150 * time.Millisecond)
	writeDoc(t, filepath.Join(dir, "ok.json"), "OK")
	rec.wait(t)

	if n := rec.count(); n != 1 {
		t.Errorf("imports = %d, want 1", n)
	}
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	writeDoc(t, path, "Cover")
	doc, err := inbox.ReadDocument(path)
	if err != nil || doc.Design.Name != "Cover" {
		t.Fatalf("doc = %+v, %v", doc, err)
	}
	if _, err := inbox.ReadDocument(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
