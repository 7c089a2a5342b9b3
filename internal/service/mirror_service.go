package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"photodesigner/internal/domain"
	"photodesigner/internal/mirror"
	"photodesigner/internal/secret"
	"photodesigner/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Mirror Service: pushes design documents to external stores
// ─────────────────────────────────────────────────────────────

// MirrorService manages mirror targets and pushes design documents to
// them, on demand or on a cron schedule. A design is pushed to a target
// only when its fingerprint changed since the last successful push.
type MirrorService struct {
	store   *storage.MirrorStore
	designs *storage.DesignStore
	secrets secret.SecretStore
	emitter EventEmitter
	guard   pushGuard

	mu        sync.Mutex
	cronSched *cron.Cron
}

func NewMirrorService(
	store *storage.MirrorStore,
	designs *storage.DesignStore,
	secrets secret.SecretStore,
	emitter EventEmitter,
) *MirrorService {
	return &MirrorService{
		store:   store,
		designs: designs,
		secrets: secrets,
		emitter: emitter,
	}
}

// ── Target CRUD ────────────────────────────────────────────

type MirrorTargetInput struct {
	Name     string              `json:"name"`
	Driver   domain.MirrorDriver `json:"driver"`
	Host     string              `json:"host"`
	Port     int                 `json:"port"`
	Database string              `json:"database"`
	Username string              `json:"username"`
	Password string              `json:"password"`
	SSLMode  string              `json:"sslMode"`
	Enabled  bool                `json:"enabled"`
}

func (in MirrorTargetInput) validate() error {
	switch in.Driver {
	case domain.MirrorDriverMySQL, domain.MirrorDriverPostgres, domain.MirrorDriverMongoDB, domain.MirrorDriverSQLite:
	default:
		return fmt.Errorf("unsupported driver: %s", in.Driver)
	}
	if in.Host == "" {
		return errors.New("mirror target needs a host or file path")
	}
	return nil
}

func (s *MirrorService) CreateTarget(in MirrorTargetInput) (*domain.MirrorTarget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := &domain.MirrorTarget{
		ID:       uuid.New().String(),
		Name:     in.Name,
		Driver:   in.Driver,
		Host:     in.Host,
		Port:     in.Port,
		Database: in.Database,
		Username: in.Username,
		SSLMode:  in.SSLMode,
		Enabled:  in.Enabled,
	}
	if err := s.store.CreateTarget(t); err != nil {
		return nil, fmt.Errorf("create mirror target: %w", err)
	}
	if in.Password != "" && s.secrets != nil {
		if err := s.secrets.Set(t.ID, []byte(in.Password)); err != nil {
			log.Printf("mirror: store password for %s: %v", t.ID, err)
		}
	}
	return t, nil
}

// UpdateTarget replaces a target's settings. An empty password keeps the
// stored one.
func (s *MirrorService) UpdateTarget(id string, in MirrorTargetInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	t, err := s.store.GetTarget(id)
	if err != nil {
		return err
	}
	t.Name, t.Driver, t.Host, t.Port = in.Name, in.Driver, in.Host, in.Port
	t.Database, t.Username, t.SSLMode, t.Enabled = in.Database, in.Username, in.SSLMode, in.Enabled
	if err := s.store.UpdateTarget(t); err != nil {
		return fmt.Errorf("update mirror target: %w", err)
	}
	if in.Password != "" && s.secrets != nil {
		if err := s.secrets.Set(id, []byte(in.Password)); err != nil {
			log.Printf("mirror: store password for %s: %v", id, err)
		}
	}
	return nil
}

func (s *MirrorService) DeleteTarget(id string) error {
	if err := s.store.DeleteTarget(id); err != nil {
		return err
	}
	if s.secrets != nil {
		_ = s.secrets.Delete(id)
	}
	return nil
}

func (s *MirrorService) GetTarget(id string) (*domain.MirrorTarget, error) {
	return s.store.GetTarget(id)
}

func (s *MirrorService) ListTargets() ([]domain.MirrorTarget, error) {
	return s.store.ListTargets()
}

// TestTarget connects to a target and pings it.
func (s *MirrorService) TestTarget(ctx context.Context, id string) error {
	t, err := s.store.GetTarget(id)
	if err != nil {
		return err
	}
	conn, err := s.connect(t)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Ping(ctx)
}

func (s *MirrorService) connect(t *domain.MirrorTarget) (mirror.Connector, error) {
	var password string
	if s.secrets != nil {
		if pw, err := s.secrets.Get(t.ID); err == nil {
			password = string(pw)
		}
	}
	return mirror.NewConnector(t, password)
}

// ── Pushing ────────────────────────────────────────────────

// PushStatus values reported per target.
const (
	PushStatusPushed    = "pushed"
	PushStatusUnchanged = "unchanged"
	PushStatusBusy      = "busy"
	PushStatusFailed    = "failed"
)

// PushResult reports the outcome of pushing one design to one target.
type PushResult struct {
	TargetID string `json:"targetId"`
	DesignID string `json:"designId"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// PushDesign pushes one design to every enabled target. Failures are
// reported per target; the error return covers loading the design only.
func (s *MirrorService) PushDesign(ctx context.Context, designID string) ([]PushResult, error) {
	targets, err := s.enabledTargets()
	if err != nil {
		return nil, err
	}
	return s.pushDesign(ctx, designID, targets)
}

// PushAll pushes every design to every enabled target. Used by autosave.
func (s *MirrorService) PushAll(ctx context.Context) ([]PushResult, error) {
	targets, err := s.enabledTargets()
	if err != nil || len(targets) == 0 {
		return nil, err
	}
	designs, err := s.designs.ListDesigns("")
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	var results []PushResult
	for _, d := range designs {
		res, err := s.pushDesign(ctx, d.ID, targets)
		if err != nil {
			log.Printf("mirror: design %s: %v", d.ID, err)
			continue
		}
		results = append(results, res...)
	}
	return results, nil
}

func (s *MirrorService) enabledTargets() ([]domain.MirrorTarget, error) {
	all, err := s.store.ListTargets()
	if err != nil {
		return nil, fmt.Errorf("list mirror targets: %w", err)
	}
	var enabled []domain.MirrorTarget
	for _, t := range all {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

func (s *MirrorService) pushDesign(ctx context.Context, designID string, targets []domain.MirrorTarget) ([]PushResult, error) {
	state, err := s.designs.State(designID)
	if err != nil {
		return nil, err
	}
	fp, err := s.designs.Fingerprint(designID)
	if err != nil {
		return nil, err
	}
	results := make([]PushResult, 0, len(targets))
	for i := range targets {
		results = append(results, s.pushTo(ctx, &targets[i], *state, fp))
	}
	return results, nil
}

func (s *MirrorService) pushTo(ctx context.Context, t *domain.MirrorTarget, state domain.DesignState, fp string) PushResult {
	res := PushResult{TargetID: t.ID, DesignID: state.Design.ID}

	if !s.guard.TryLock(t.ID, state.Design.ID) {
		res.Status = PushStatusBusy
		return res
	}
	defer s.guard.Unlock(t.ID, state.Design.ID)

	if last, err := s.store.LastPush(t.ID, state.Design.ID); err == nil && last.Fingerprint == fp {
		res.Status = PushStatusUnchanged
		return res
	}

	if err := s.push(ctx, t, state); err != nil {
		res.Status, res.Error = PushStatusFailed, err.Error()
		log.Printf("mirror: push %s to %s failed: %v", state.Design.ID, t.Name, err)
		s.emitter.Emit(ctx, EventMirrorFailed, res)
		return res
	}
	if err := s.store.RecordPush(domain.MirrorPush{
		TargetID:    t.ID,
		DesignID:    state.Design.ID,
		Fingerprint: fp,
		PushedAt:    time.Now().UTC(),
	}); err != nil {
		log.Printf("mirror: record push %s/%s: %v", t.ID, state.Design.ID, err)
	}
	res.Status = PushStatusPushed
	s.emitter.Emit(ctx, EventMirrorPushed, res)
	return res
}

func (s *MirrorService) push(ctx context.Context, t *domain.MirrorTarget, state domain.DesignState) error {
	conn, err := s.connect(t)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PushDesign(ctx, state)
}

// ── Autosave (cron) ────────────────────────────────────────

// StartAutosave schedules PushAll with a cron spec, replacing any previous
// schedule. An empty spec only stops the current schedule.
func (s *MirrorService) StartAutosave(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if spec == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		results, err := s.PushAll(ctx)
		if err != nil {
			log.Printf("mirror cron: %v", err)
			return
		}
		pushed := 0
		for _, r := range results {
			if r.Status == PushStatusPushed {
				pushed++
			}
		}
		if pushed > 0 {
			log.Printf("mirror cron: pushed %d design(s)", pushed)
		}
	}); err != nil {
		return fmt.Errorf("mirror cron: invalid expression %q: %w", spec, err)
	}
	c.Start()
	s.cronSched = c
	log.Printf("mirror cron: autosave scheduled %q", spec)
	return nil
}

// WaitRunning blocks until in-flight pushes finish or ctx is cancelled.
func (s *MirrorService) WaitRunning(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

// Stop halts the autosave schedule.
func (s *MirrorService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *MirrorService) stopLocked() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
