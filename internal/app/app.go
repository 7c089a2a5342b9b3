package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"photodesigner/internal/domain"
	"photodesigner/internal/inbox"
	"photodesigner/internal/secret"
	"photodesigner/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx   context.Context
	stack *service.Stack

	inbox   *inbox.Watcher
	watcher *designWatcher
}

// New creates a new App.
func New() *App {
	return &App{}
}

// wailsEmitter sends service events to the web canvas.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	stack, err := service.OpenStack(service.DefaultDataDir(), secret.Default(), wailsEmitter{})
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.stack = stack

	ws := stack.Settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, ws.Width, ws.Height)

	settings := stack.Settings.Load()
	if err := stack.Mirrors.StartAutosave(ctx, settings.AutosaveSpec); err != nil {
		wailsRuntime.LogErrorf(ctx, "Mirror autosave disabled: %v", err)
	}
	a.startInbox(settings.InboxDir)

	a.watcher = newDesignWatcher(ctx, stack.Designs, stack.Editors, wailsEmitter{})
	a.watcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.inbox != nil {
		a.inbox.Close()
	}
	if a.stack == nil {
		return
	}
	if w, h := wailsRuntime.WindowGetSize(ctx); w > 0 && h > 0 {
		if err := a.stack.Settings.SaveWindowSize(w, h); err != nil {
			log.Printf("app: save window size: %v", err)
		}
	}
	a.stack.Close()
}

func (a *App) startInbox(dir string) {
	if a.inbox != nil {
		a.inbox.Close()
		a.inbox = nil
	}
	if dir == "" {
		return
	}
	w, err := inbox.New(dir, inbox.DefaultDelay, a.importDocument)
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Inbox disabled: %v", err)
		return
	}
	if err := w.Start(a.ctx); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Inbox disabled: %v", err)
		return
	}
	a.inbox = w
}

func (a *App) importDocument(ctx context.Context, _ string, doc domain.DesignDocument) error {
	d, err := a.stack.Designs.ImportDocument(ctx, doc)
	if err != nil {
		return err
	}
	// An open editor still holds the replaced objects.
	a.stack.Editors.Reload(d.ID)
	return nil
}

// ============================================================
// Projects
// ============================================================

func (a *App) ListProjects() ([]domain.Project, error) {
	return a.stack.Designs.ListProjects()
}

func (a *App) CreateProject(name string) (*domain.Project, error) {
	return a.stack.Designs.CreateProject(name)
}

func (a *App) DeleteProject(id string) error {
	return a.stack.Designs.DeleteProject(id)
}

// ============================================================
// Designs
// ============================================================

func (a *App) ListDesigns(projectID string) ([]domain.Design, error) {
	designs, err := a.stack.Designs.ListDesigns(projectID)
	if designs == nil {
		designs = []domain.Design{}
	}
	return designs, err
}

func (a *App) CreateDesign(projectID, name, kind string, width, height float64) (*domain.Design, error) {
	return a.stack.Designs.CreateDesign(projectID, name, domain.DesignKind(kind), width, height)
}

func (a *App) DeleteDesign(id string) error {
	a.stack.Editors.Close(id)
	a.watcher.Forget(id)
	return a.stack.Designs.DeleteDesign(id)
}

// ExportDesign writes a design document to a file chosen by the user.
func (a *App) ExportDesign(designID string) (string, error) {
	doc, err := a.stack.Designs.ExportDocument(designID)
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Design",
		DefaultFilename: doc.Design.Name + ".json",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Design Document", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode design: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write design: %w", err)
	}
	return path, nil
}

// ImportDesign reads a design document chosen by the user.
func (a *App) ImportDesign() (*domain.Design, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Import Design",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Design Document", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	doc, err := inbox.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	d, err := a.stack.Designs.ImportDocument(a.ctx, doc)
	if err != nil {
		return nil, err
	}
	a.stack.Editors.Reload(d.ID)
	return d, nil
}

// ============================================================
// Settings
// ============================================================

func (a *App) GetSettings() service.Settings {
	return a.stack.Settings.Load()
}

// SaveSettings persists settings and applies them to open editors, the
// autosave schedule and the inbox watcher.
func (a *App) SaveSettings(st service.Settings) error {
	old := a.stack.Settings.Load()
	if err := a.stack.Settings.Save(st); err != nil {
		return err
	}
	a.stack.Editors.ApplySettings(st)
	if st.AutosaveSpec != old.AutosaveSpec {
		if err := a.stack.Mirrors.StartAutosave(a.ctx, st.AutosaveSpec); err != nil {
			return err
		}
	}
	if filepath.Clean(st.InboxDir) != filepath.Clean(old.InboxDir) {
		a.startInbox(st.InboxDir)
	}
	return nil
}

// PickInboxDir opens a native directory picker for the inbox.
func (a *App) PickInboxDir() (string, error) {
	return wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Inbox Folder",
	})
}
