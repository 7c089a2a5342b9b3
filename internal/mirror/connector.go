// Package mirror pushes design documents to external stores read by
// downstream consumers such as the print renderer.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"photodesigner/internal/domain"
)

// Table and collection every connector writes to.
const documentsTable = "design_documents"

// Connector writes design documents to one mirror target.
type Connector interface {
	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// PushDesign upserts the document of one design, keyed by design id.
	PushDesign(ctx context.Context, state domain.DesignState) error

	// Close releases the connection.
	Close() error
}

// NewConnector creates a Connector for the given target. The password comes
// from the secret store.
func NewConnector(t *domain.MirrorTarget, password string) (Connector, error) {
	switch t.Driver {
	case domain.MirrorDriverSQLite:
		return newSQLConnector(dialectSQLite, buildSQLiteDSN(t))
	case domain.MirrorDriverMySQL:
		return newSQLConnector(dialectMySQL, buildMySQLDSN(t, password))
	case domain.MirrorDriverPostgres:
		return newSQLConnector(dialectPostgres, buildPostgresDSN(t, password))
	case domain.MirrorDriverMongoDB:
		return newMongoConnector(t, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", t.Driver)
	}
}

// Document builds the interchange document of a design.
func Document(state domain.DesignState) domain.DesignDocument {
	return domain.DesignDocument{
		Version: domain.DocumentVersion,
		Design:  state.Design,
		Objects: state.Objects,
	}
}

func encode(state domain.DesignState) ([]byte, time.Time, error) {
	data, err := json.Marshal(Document(state))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("encode design %s: %w", state.Design.ID, err)
	}
	return data, time.Now().UTC(), nil
}
