package service

import (
	"database/sql"
	"fmt"
	"strconv"

	"photodesigner/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Settings Persistence
// ─────────────────────────────────────────────────────────────
//
// Editor tuning, the autosave schedule and the window size are stored
// as key-value rows in app_settings. Missing or unparsable rows fall
// back to the defaults.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Settings holds the user-tunable editor and background job settings.
type Settings struct {
	SnapThreshold   float64 `json:"snapThreshold"`
	MinScale        float64 `json:"minScale"`
	MaxScale        float64 `json:"maxScale"`
	DuplicateOffset float64 `json:"duplicateOffset"`
	AutosaveSpec    string  `json:"autosaveSpec"` // cron spec; empty disables mirror autosave
	InboxDir        string  `json:"inboxDir"`     // empty disables the inbox watcher
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		SnapThreshold:   5,
		MinScale:        0.1,
		MaxScale:        5,
		DuplicateOffset: 10,
		AutosaveSpec:    "@every 5m",
	}
}

// SettingsService persists settings between sessions.
type SettingsService struct {
	db *storage.DB
}

func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

const (
	settingWindowWidth     = "window_width"
	settingWindowHeight    = "window_height"
	settingSnapThreshold   = "snap_threshold"
	settingMinScale        = "min_scale"
	settingMaxScale        = "max_scale"
	settingDuplicateOffset = "duplicate_offset"
	settingAutosaveSpec    = "autosave_spec"
	settingInboxDir        = "inbox_dir"
	defaultWindowWidth     = 1280
	defaultWindowHeight    = 800
)

// Load returns the stored settings merged over the defaults.
func (s *SettingsService) Load() Settings {
	st := DefaultSettings()
	if s.db == nil {
		return st
	}
	conn := s.db.Conn()
	loadFloat(conn, settingSnapThreshold, &st.SnapThreshold)
	loadFloat(conn, settingMinScale, &st.MinScale)
	loadFloat(conn, settingMaxScale, &st.MaxScale)
	loadFloat(conn, settingDuplicateOffset, &st.DuplicateOffset)
	loadString(conn, settingAutosaveSpec, &st.AutosaveSpec)
	loadString(conn, settingInboxDir, &st.InboxDir)

	def := DefaultSettings()
	if st.SnapThreshold < 0 {
		st.SnapThreshold = def.SnapThreshold
	}
	if st.MinScale <= 0 || st.MaxScale < st.MinScale {
		st.MinScale, st.MaxScale = def.MinScale, def.MaxScale
	}
	return st
}

// Save validates and persists all settings.
func (s *SettingsService) Save(st Settings) error {
	if s.db == nil {
		return fmt.Errorf("settings: no db")
	}
	if st.SnapThreshold < 0 {
		return fmt.Errorf("settings: snap threshold must not be negative")
	}
	if st.MinScale <= 0 || st.MaxScale < st.MinScale {
		return fmt.Errorf("settings: invalid zoom limits %g..%g", st.MinScale, st.MaxScale)
	}
	conn := s.db.Conn()
	rows := map[string]string{
		settingSnapThreshold:   formatFloat(st.SnapThreshold),
		settingMinScale:        formatFloat(st.MinScale),
		settingMaxScale:        formatFloat(st.MaxScale),
		settingDuplicateOffset: formatFloat(st.DuplicateOffset),
		settingAutosaveSpec:    st.AutosaveSpec,
		settingInboxDir:        st.InboxDir,
	}
	for k, v := range rows {
		if err := upsertSetting(conn, k, v); err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	return nil
}

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.db == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	conn := s.db.Conn()
	w := float64(defaultWindowWidth)
	h := float64(defaultWindowHeight)
	loadFloat(conn, settingWindowWidth, &w)
	loadFloat(conn, settingWindowHeight, &h)

	if w < 800 {
		w = defaultWindowWidth
	}
	if h < 600 {
		h = defaultWindowHeight
	}
	return WindowSize{Width: int(w), Height: int(h)}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("window settings: no db")
	}
	conn := s.db.Conn()
	if err := upsertSetting(conn, settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return upsertSetting(conn, settingWindowHeight, strconv.Itoa(height))
}

func loadString(conn *sql.DB, key string, dst *string) bool {
	var v string
	err := conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return false
	}
	*dst = v
	return true
}

func loadFloat(conn *sql.DB, key string, dst *float64) {
	var raw string
	if !loadString(conn, key, &raw) {
		return
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		*dst = v
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func upsertSetting(conn *sql.DB, key, value string) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
