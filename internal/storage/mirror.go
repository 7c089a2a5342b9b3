package storage

import (
	"time"

	"photodesigner/internal/domain"
)

var (
	_ domain.ProjectStore = (*ProjectStore)(nil)
	_ domain.DesignStore  = (*DesignStore)(nil)
	_ domain.MirrorStore  = (*MirrorStore)(nil)
)

// MirrorStore manages mirror target records and their push bookkeeping.
// Passwords are kept in the secret store, never here.
type MirrorStore struct {
	db *DB
}

func NewMirrorStore(db *DB) *MirrorStore {
	return &MirrorStore{db: db}
}

const targetColumns = `id, name, driver, host, port, database_name, username, ssl_mode, enabled, created_at, updated_at`

func scanTarget(row interface{ Scan(...any) error }, t *domain.MirrorTarget) error {
	return row.Scan(&t.ID, &t.Name, &t.Driver, &t.Host, &t.Port, &t.Database, &t.Username, &t.SSLMode, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
}

func (s *MirrorStore) CreateTarget(t *domain.MirrorTarget) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO mirror_targets (`+targetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Driver, t.Host, t.Port, t.Database, t.Username, t.SSLMode, t.Enabled, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *MirrorStore) GetTarget(id string) (*domain.MirrorTarget, error) {
	t := &domain.MirrorTarget{}
	row := s.db.conn.QueryRow(`SELECT `+targetColumns+` FROM mirror_targets WHERE id = ?`, id)
	if err := scanTarget(row, t); err != nil {
		return nil, notFound("mirror target", id, err)
	}
	return t, nil
}

func (s *MirrorStore) ListTargets() ([]domain.MirrorTarget, error) {
	rows, err := s.db.conn.Query(`SELECT ` + targetColumns + ` FROM mirror_targets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.MirrorTarget
	for rows.Next() {
		var t domain.MirrorTarget
		if err := scanTarget(rows, &t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *MirrorStore) UpdateTarget(t *domain.MirrorTarget) error {
	t.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE mirror_targets SET name=?, driver=?, host=?, port=?, database_name=?, username=?, ssl_mode=?, enabled=?, updated_at=?
		 WHERE id=?`,
		t.Name, t.Driver, t.Host, t.Port, t.Database, t.Username, t.SSLMode, t.Enabled, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res, "mirror target", t.ID)
}

// DeleteTarget removes a target; its push records cascade.
func (s *MirrorStore) DeleteTarget(id string) error {
	res, err := s.db.conn.Exec(`DELETE FROM mirror_targets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "mirror target", id)
}

// LastPush returns the last successful push of a design to a target.
func (s *MirrorStore) LastPush(targetID, designID string) (*domain.MirrorPush, error) {
	p := &domain.MirrorPush{}
	err := s.db.conn.QueryRow(
		`SELECT target_id, design_id, fingerprint, pushed_at FROM mirror_pushes WHERE target_id = ? AND design_id = ?`,
		targetID, designID,
	).Scan(&p.TargetID, &p.DesignID, &p.Fingerprint, &p.PushedAt)
	if err != nil {
		return nil, notFound("mirror push", targetID+"/"+designID, err)
	}
	return p, nil
}

func (s *MirrorStore) RecordPush(p domain.MirrorPush) error {
	_, err := s.db.conn.Exec(
		`INSERT INTO mirror_pushes (target_id, design_id, fingerprint, pushed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(target_id, design_id) DO UPDATE SET fingerprint = excluded.fingerprint, pushed_at = excluded.pushed_at`,
		p.TargetID, p.DesignID, p.Fingerprint, p.PushedAt,
	)
	return err
}
