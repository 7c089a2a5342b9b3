package app

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"photodesigner/internal/domain"
	"photodesigner/internal/service"
)

// ============================================================
// Mirrors
// ============================================================

func (a *App) ListMirrorTargets() ([]domain.MirrorTarget, error) {
	targets, err := a.stack.Mirrors.ListTargets()
	if targets == nil {
		targets = []domain.MirrorTarget{}
	}
	return targets, err
}

func (a *App) CreateMirrorTarget(input service.MirrorTargetInput) (*domain.MirrorTarget, error) {
	return a.stack.Mirrors.CreateTarget(input)
}

func (a *App) UpdateMirrorTarget(id string, input service.MirrorTargetInput) error {
	return a.stack.Mirrors.UpdateTarget(id, input)
}

func (a *App) DeleteMirrorTarget(id string) error {
	return a.stack.Mirrors.DeleteTarget(id)
}

func (a *App) TestMirrorTarget(id string) error {
	return a.stack.Mirrors.TestTarget(a.ctx, id)
}

// PushDesign pushes one design to every enabled mirror now.
func (a *App) PushDesign(designID string) ([]service.PushResult, error) {
	return a.stack.Mirrors.PushDesign(a.ctx, designID)
}

// PickMirrorFile opens a native file picker for a SQLite mirror file.
func (a *App) PickMirrorFile() (string, error) {
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Select Mirror Database",
		DefaultFilename: "designs.db",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Database Files", Pattern: "*.db;*.sqlite;*.sqlite3;*.s3db"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	return path, err
}
