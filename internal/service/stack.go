package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"photodesigner/internal/secret"
	"photodesigner/internal/storage"
)

// Stack is the set of services shared by the desktop app, the standalone
// MCP server and the CLI.
type Stack struct {
	DB       *storage.DB
	Designs  *DesignService
	Editors  *EditorService
	Mirrors  *MirrorService
	Settings *SettingsService
}

// DefaultDataDir is where the database and inbox live unless overridden
// with PHOTODESIGNER_DATA_DIR.
func DefaultDataDir() string {
	if dir := os.Getenv("PHOTODESIGNER_DATA_DIR"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "photodesigner")
}

// OpenStack opens the database in dataDir and builds the services on it.
func OpenStack(dataDir string, secrets secret.SecretStore, emitter EventEmitter) (*Stack, error) {
	db, err := storage.New(filepath.Join(dataDir, "designer.db"), dataDir)
	if err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = NopEmitter{}
	}
	designStore := storage.NewDesignStore(db)
	designs := NewDesignService(storage.NewProjectStore(db), designStore, emitter)
	settings := NewSettingsService(db)
	return &Stack{
		DB:       db,
		Designs:  designs,
		Editors:  NewEditorService(designs, settings, emitter),
		Mirrors:  NewMirrorService(storage.NewMirrorStore(db), designStore, secrets, emitter),
		Settings: settings,
	}, nil
}

// Close stops autosave, waits briefly for running pushes and closes the
// database.
func (s *Stack) Close() error {
	s.Mirrors.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Mirrors.WaitRunning(ctx)
	s.Editors.CloseAll()
	return s.DB.Close()
}
