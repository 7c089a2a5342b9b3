package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"photodesigner/internal/domain"
)

// DesignStore implements domain.DesignStore using SQLite. It owns both the
// designs and the objects placed on them.
type DesignStore struct {
	db *DB
}

func NewDesignStore(db *DB) *DesignStore {
	return &DesignStore{db: db}
}

const designColumns = `id, project_id, name, kind, sort_order, canvas_width, canvas_height, background, viewport_x, viewport_y, viewport_zoom, created_at, updated_at`

func scanDesign(row interface{ Scan(...any) error }, d *domain.Design) error {
	return row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Kind, &d.Order, &d.CanvasWidth, &d.CanvasHeight,
		&d.Background, &d.ViewportX, &d.ViewportY, &d.ViewportZoom, &d.CreatedAt, &d.UpdatedAt)
}

func (s *DesignStore) CreateDesign(d *domain.Design) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.ViewportZoom == 0 {
		d.ViewportZoom = 1
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO designs (`+designColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, d.Name, d.Kind, d.Order, d.CanvasWidth, d.CanvasHeight,
		d.Background, d.ViewportX, d.ViewportY, d.ViewportZoom, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (s *DesignStore) GetDesign(id string) (*domain.Design, error) {
	d := &domain.Design{}
	row := s.db.conn.QueryRow(`SELECT `+designColumns+` FROM designs WHERE id = ?`, id)
	if err := scanDesign(row, d); err != nil {
		return nil, notFound("design", id, err)
	}
	return d, nil
}

// ListDesigns returns the designs of a project in page order. An empty
// projectID lists every design.
func (s *DesignStore) ListDesigns(projectID string) ([]domain.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	rows, err := s.db.conn.Query(query+` ORDER BY project_id, sort_order ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designs []domain.Design
	for rows.Next() {
		var d domain.Design
		if err := scanDesign(rows, &d); err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

// UpdateDesign saves name, kind, order, canvas size and background.
func (s *DesignStore) UpdateDesign(d *domain.Design) error {
	d.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE designs SET name = ?, kind = ?, sort_order = ?, canvas_width = ?, canvas_height = ?, background = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.Kind, d.Order, d.CanvasWidth, d.CanvasHeight, d.Background, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res, "design", d.ID)
}

// UpdateViewport stores the last zoom and pan of a design. It does not
// touch updated_at, so it never counts as a content change.
func (s *DesignStore) UpdateViewport(id string, x, y, zoom float64) error {
	res, err := s.db.conn.Exec(
		`UPDATE designs SET viewport_x = ?, viewport_y = ?, viewport_zoom = ? WHERE id = ?`,
		x, y, zoom, id,
	)
	if err != nil {
		return err
	}
	return mustAffect(res, "design", id)
}

// DeleteDesign removes a design; its objects cascade.
func (s *DesignStore) DeleteDesign(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "design", id)
}

const objectColumns = `id, design_id, type, x, y, width, height, rotation, content_x, content_y, content_width, content_height, z_index, opacity, is_flipped_x, payload, created_at, updated_at`

func scanObject(row interface{ Scan(...any) error }, o *domain.CanvasObject) error {
	var cx, cy, cw, ch sql.NullFloat64
	err := row.Scan(&o.ID, &o.DesignID, &o.Type, &o.Frame.X, &o.Frame.Y, &o.Frame.Width, &o.Frame.Height,
		&o.Frame.Rotation, &cx, &cy, &cw, &ch, &o.ZIndex, &o.Opacity, &o.IsFlippedX, &o.Payload,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}
	o.Content = nil
	if cw.Valid && ch.Valid {
		o.Content = &domain.ContentRect{X: cx.Float64, Y: cy.Float64, Width: cw.Float64, Height: ch.Float64}
	}
	return nil
}

func contentArgs(c *domain.ContentRect) []any {
	if c == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{c.X, c.Y, c.Width, c.Height}
}

func objectArgs(o *domain.CanvasObject) []any {
	args := []any{o.ID, o.DesignID, o.Type, o.Frame.X, o.Frame.Y, o.Frame.Width, o.Frame.Height, o.Frame.Rotation}
	args = append(args, contentArgs(o.Content)...)
	return append(args, o.ZIndex, o.Opacity, o.IsFlippedX, o.Payload, o.CreatedAt, o.UpdatedAt)
}

const insertObject = `INSERT INTO objects (` + objectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *DesignStore) CreateObject(o *domain.CanvasObject) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	_, err := s.db.conn.Exec(insertObject, objectArgs(o)...)
	return err
}

func (s *DesignStore) GetObject(id string) (*domain.CanvasObject, error) {
	o := &domain.CanvasObject{}
	row := s.db.conn.QueryRow(`SELECT `+objectColumns+` FROM objects WHERE id = ?`, id)
	if err := scanObject(row, o); err != nil {
		return nil, notFound("object", id, err)
	}
	return o, nil
}

// ListObjects returns the objects of a design in paint order.
func (s *DesignStore) ListObjects(designID string) ([]domain.CanvasObject, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+objectColumns+` FROM objects WHERE design_id = ? ORDER BY z_index ASC, created_at ASC`,
		designID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []domain.CanvasObject
	for rows.Next() {
		var o domain.CanvasObject
		if err := scanObject(rows, &o); err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// UpdateObjectGeometry replaces the patched fields. Content fields are
// ignored for objects stored without a content rect. Applying the same
// patch twice leaves the same row.
func (s *DesignStore) UpdateObjectGeometry(id string, p domain.GeometryPatch) error {
	if p.IsEmpty() {
		return nil
	}
	var sets []string
	var args []any
	plain := func(col string, v *float64) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	// SET expressions see the old row, so every content column tests the
	// stored content_width.
	content := func(col string, v *float64) {
		if v != nil {
			sets = append(sets, col+" = CASE WHEN content_width IS NULL THEN "+col+" ELSE ? END")
			args = append(args, *v)
		}
	}
	plain("x", p.X)
	plain("y", p.Y)
	plain("width", p.Width)
	plain("height", p.Height)
	plain("rotation", p.Rotation)
	content("content_x", p.ContentX)
	content("content_y", p.ContentY)
	content("content_width", p.ContentWidth)
	content("content_height", p.ContentHeight)

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)
	res, err := s.db.conn.Exec(`UPDATE objects SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update object geometry: %w", err)
	}
	return mustAffect(res, "object", id)
}

func (s *DesignStore) UpdateZIndex(id string, z int) error {
	res, err := s.db.conn.Exec(`UPDATE objects SET z_index = ?, updated_at = ? WHERE id = ?`, z, time.Now(), id)
	if err != nil {
		return err
	}
	return mustAffect(res, "object", id)
}

func (s *DesignStore) DeleteObject(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "object", id)
}

// ReplaceObjects atomically replaces all objects of a design. Used when a
// design document is imported over an existing design.
func (s *DesignStore) ReplaceObjects(designID string, objects []domain.CanvasObject) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM objects WHERE design_id = ?`, designID); err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}

	now := time.Now()
	for _, o := range objects {
		o.DesignID = designID
		o.CreatedAt, o.UpdatedAt = now, now
		if _, err := tx.Exec(insertObject, objectArgs(&o)...); err != nil {
			return fmt.Errorf("insert object %s: %w", o.ID, err)
		}
	}
	if _, err := tx.Exec(`UPDATE designs SET updated_at = ? WHERE id = ?`, now, designID); err != nil {
		return fmt.Errorf("touch design: %w", err)
	}

	return tx.Commit()
}

// Fingerprint hashes the stored content of a design and its objects.
// Viewport changes do not affect it.
func (s *DesignStore) Fingerprint(designID string) (string, error) {
	d, err := s.GetDesign(designID)
	if err != nil {
		return "", err
	}
	objects, err := s.ListObjects(designID)
	if err != nil {
		return "", err
	}
	d.ViewportX, d.ViewportY, d.ViewportZoom = 0, 0, 0
	data, err := json.Marshal(domain.DesignState{Design: *d, Objects: objects})
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// State loads a design together with its objects.
func (s *DesignStore) State(designID string) (*domain.DesignState, error) {
	d, err := s.GetDesign(designID)
	if err != nil {
		return nil, err
	}
	objects, err := s.ListObjects(designID)
	if err != nil {
		return nil, err
	}
	return &domain.DesignState{Design: *d, Objects: objects}, nil
}
