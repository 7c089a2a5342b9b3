package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"photodesigner/internal/domain"
	"photodesigner/internal/storage"
)

// Canvas sizes by design kind, in canvas px.
var defaultCanvas = map[domain.DesignKind][2]float64{
	domain.DesignKindPhotobook: {1600, 1200},
	domain.DesignKindPostcard:  {1480, 1050},
}

// InboxProjectID holds imported designs that name no project.
const InboxProjectID = "inbox"

// DesignService manages projects, designs and the persistence of editor
// changes.
type DesignService struct {
	projects *storage.ProjectStore
	designs  *storage.DesignStore
	emitter  EventEmitter
}

func NewDesignService(projects *storage.ProjectStore, designs *storage.DesignStore, emitter EventEmitter) *DesignService {
	return &DesignService{projects: projects, designs: designs, emitter: emitter}
}

// ── Projects ───────────────────────────────────────────────

func (s *DesignService) CreateProject(name string) (*domain.Project, error) {
	p := &domain.Project{ID: uuid.New().String(), Name: name}
	if err := s.projects.CreateProject(p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *DesignService) ListProjects() ([]domain.Project, error) {
	return s.projects.ListProjects()
}

func (s *DesignService) DeleteProject(id string) error {
	return s.projects.DeleteProject(id)
}

// ── Designs ────────────────────────────────────────────────

// CreateDesign appends a design to a project. Zero sizes select the
// default canvas of the kind.
func (s *DesignService) CreateDesign(projectID, name string, kind domain.DesignKind, width, height float64) (*domain.Design, error) {
	if _, err := s.projects.GetProject(projectID); err != nil {
		return nil, err
	}
	size, ok := defaultCanvas[kind]
	if !ok {
		return nil, fmt.Errorf("unknown design kind %q", kind)
	}
	if width <= 0 || height <= 0 {
		width, height = size[0], size[1]
	}
	existing, err := s.designs.ListDesigns(projectID)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	d := &domain.Design{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		Name:         name,
		Kind:         kind,
		Order:        len(existing),
		CanvasWidth:  width,
		CanvasHeight: height,
		Background:   "#ffffff",
		ViewportZoom: 1,
	}
	if err := s.designs.CreateDesign(d); err != nil {
		return nil, fmt.Errorf("create design: %w", err)
	}
	return d, nil
}

func (s *DesignService) ListDesigns(projectID string) ([]domain.Design, error) {
	return s.designs.ListDesigns(projectID)
}

func (s *DesignService) DeleteDesign(id string) error {
	return s.designs.DeleteDesign(id)
}

// LoadDesign returns a design with its objects in paint order.
func (s *DesignService) LoadDesign(id string) (*domain.DesignState, error) {
	return s.designs.State(id)
}

// SaveViewport stores the last zoom and pan of a design.
func (s *DesignService) SaveViewport(id string, x, y, zoom float64) error {
	return s.designs.UpdateViewport(id, x, y, zoom)
}

// Fingerprint identifies the stored content of a design.
func (s *DesignService) Fingerprint(id string) (string, error) {
	return s.designs.Fingerprint(id)
}

// ── Editor persistence ─────────────────────────────────────

// SaveGeometry persists one committed gesture step. The patch replaces
// the touched fields, so replaying it is harmless.
func (s *DesignService) SaveGeometry(objectID string, p domain.GeometryPatch) error {
	if err := s.designs.UpdateObjectGeometry(objectID, p); err != nil {
		return fmt.Errorf("save geometry: %w", err)
	}
	return nil
}

// SaveObject stores an object created by the editor (drop, duplicate).
func (s *DesignService) SaveObject(o domain.CanvasObject) error {
	if err := s.designs.CreateObject(&o); err != nil {
		return fmt.Errorf("save object: %w", err)
	}
	return nil
}

func (s *DesignService) DeleteObject(id string) error {
	if err := s.designs.DeleteObject(id); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// SaveOrder persists the zIndex values of objects touched by a z-order
// change.
func (s *DesignService) SaveOrder(touched []domain.CanvasObject) error {
	for _, o := range touched {
		if err := s.designs.UpdateZIndex(o.ID, o.ZIndex); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
	}
	return nil
}

// ── Documents ──────────────────────────────────────────────

// ExportDocument builds the interchange document of a design.
func (s *DesignService) ExportDocument(id string) (*domain.DesignDocument, error) {
	st, err := s.designs.State(id)
	if err != nil {
		return nil, err
	}
	return &domain.DesignDocument{Version: domain.DocumentVersion, Design: st.Design, Objects: st.Objects}, nil
}

// ImportDocument creates or replaces a design from an interchange
// document. Designs without a project land in the inbox project.
func (s *DesignService) ImportDocument(ctx context.Context, doc domain.DesignDocument) (*domain.Design, error) {
	if doc.Version > domain.DocumentVersion {
		return nil, fmt.Errorf("import design: unsupported document version %d", doc.Version)
	}
	d := doc.Design
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Kind == "" {
		d.Kind = domain.DesignKindPhotobook
	}
	if d.CanvasWidth <= 0 || d.CanvasHeight <= 0 {
		size := defaultCanvas[d.Kind]
		d.CanvasWidth, d.CanvasHeight = size[0], size[1]
	}
	if d.Name == "" {
		d.Name = "Imported design"
	}
	if err := s.ensureProject(&d); err != nil {
		return nil, err
	}

	switch _, err := s.designs.GetDesign(d.ID); {
	case err == nil:
		if err := s.designs.UpdateDesign(&d); err != nil {
			return nil, fmt.Errorf("import design: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		if err := s.designs.CreateDesign(&d); err != nil {
			return nil, fmt.Errorf("import design: %w", err)
		}
	default:
		return nil, err
	}

	objects := make([]domain.CanvasObject, len(doc.Objects))
	for i, o := range doc.Objects {
		o = o.Clone()
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		if !o.Type.HasContent() {
			o.Content = nil
		}
		objects[i] = o
	}
	if err := s.designs.ReplaceObjects(d.ID, objects); err != nil {
		return nil, fmt.Errorf("import objects: %w", err)
	}

	s.emitter.Emit(ctx, EventDesignImported, map[string]string{"designId": d.ID, "projectId": d.ProjectID})
	return &d, nil
}

func (s *DesignService) ensureProject(d *domain.Design) error {
	if d.ProjectID == "" {
		d.ProjectID = InboxProjectID
	}
	_, err := s.projects.GetProject(d.ProjectID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	name := "Imported"
	if d.ProjectID == InboxProjectID {
		name = "Inbox"
	}
	if err := s.projects.CreateProject(&domain.Project{ID: d.ProjectID, Name: name}); err != nil {
		return fmt.Errorf("create project %s: %w", d.ProjectID, err)
	}
	return nil
}
