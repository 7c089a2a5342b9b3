package domain

import "time"

// MirrorDriver is the engine behind a mirror target.
type MirrorDriver string

const (
	MirrorDriverMySQL    MirrorDriver = "mysql"
	MirrorDriverPostgres MirrorDriver = "postgres"
	MirrorDriverMongoDB  MirrorDriver = "mongodb"
	MirrorDriverSQLite   MirrorDriver = "sqlite"
)

// MirrorTarget is an external store that receives copies of designs for
// downstream consumers such as the print renderer. The password lives in
// the secret store under the target id.
type MirrorTarget struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Driver    MirrorDriver `json:"driver"`
	Host      string       `json:"host"`     // hostname, or file path for sqlite
	Port      int          `json:"port"`     // 0 selects the driver default
	Database  string       `json:"database"` // unused for sqlite
	Username  string       `json:"username"`
	SSLMode   string       `json:"sslMode"`
	Enabled   bool         `json:"enabled"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// MirrorPush records the last successful push of a design to a target.
type MirrorPush struct {
	TargetID    string    `json:"targetId"`
	DesignID    string    `json:"designId"`
	Fingerprint string    `json:"fingerprint"`
	PushedAt    time.Time `json:"pushedAt"`
}

type MirrorStore interface {
	CreateTarget(t *MirrorTarget) error
	GetTarget(id string) (*MirrorTarget, error)
	ListTargets() ([]MirrorTarget, error)
	UpdateTarget(t *MirrorTarget) error
	DeleteTarget(id string) error

	LastPush(targetID, designID string) (*MirrorPush, error)
	RecordPush(p MirrorPush) error
}
