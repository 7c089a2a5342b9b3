package domain

import "time"

type DesignKind string

const (
	DesignKindPhotobook DesignKind = "photobook"
	DesignKindPostcard  DesignKind = "postcard"
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Design is one page (a photobook spread or a postcard side).
// Objects are painted in zIndex order, not insertion order.
type Design struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"projectId"`
	Name         string     `json:"name"`
	Kind         DesignKind `json:"kind"`
	Order        int        `json:"order"`
	CanvasWidth  float64    `json:"canvasWidth"`
	CanvasHeight float64    `json:"canvasHeight"`
	Background   string     `json:"background"`
	ViewportX    float64    `json:"viewportX"`
	ViewportY    float64    `json:"viewportY"`
	ViewportZoom float64    `json:"viewportZoom"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// DesignState is the complete state of a design for rendering.
type DesignState struct {
	Design  Design         `json:"design"`
	Objects []CanvasObject `json:"objects"`
}

// DesignDocument is the interchange shape read from the inbox and written
// to mirrors. It is the same JSON object shape the export renderer consumes.
type DesignDocument struct {
	Version int            `json:"version"`
	Design  Design         `json:"design"`
	Objects []CanvasObject `json:"objects"`
}

// DocumentVersion is the current DesignDocument version.
const DocumentVersion = 1

type ProjectStore interface {
	CreateProject(p *Project) error
	GetProject(id string) (*Project, error)
	ListProjects() ([]Project, error)
	DeleteProject(id string) error
}

type DesignStore interface {
	CreateDesign(d *Design) error
	GetDesign(id string) (*Design, error)
	ListDesigns(projectID string) ([]Design, error)
	UpdateDesign(d *Design) error
	UpdateViewport(id string, x, y, zoom float64) error
	DeleteDesign(id string) error

	CreateObject(o *CanvasObject) error
	GetObject(id string) (*CanvasObject, error)
	ListObjects(designID string) ([]CanvasObject, error)
	UpdateObjectGeometry(id string, patch GeometryPatch) error
	UpdateZIndex(id string, z int) error
	DeleteObject(id string) error
	ReplaceObjects(designID string, objects []CanvasObject) error
}
