package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"photodesigner/internal/domain"
)

// dialect holds the driver name and the statements that differ between
// the SQL engines.
type dialect struct {
	driver string
	create string
	upsert string
}

var (
	dialectPostgres = dialect{
		driver: "postgres",
		create: `CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
			design_id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		upsert: `INSERT INTO ` + documentsTable + ` (design_id, document, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (design_id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
	}
	dialectMySQL = dialect{
		driver: "mysql",
		create: `CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
			design_id VARCHAR(64) PRIMARY KEY,
			document LONGTEXT NOT NULL,
			updated_at DATETIME(3) NOT NULL
		)`,
		upsert: `INSERT INTO ` + documentsTable + ` (design_id, document, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE document = VALUES(document), updated_at = VALUES(updated_at)`,
	}
	dialectSQLite = dialect{
		driver: "sqlite",
		create: `CREATE TABLE IF NOT EXISTS ` + documentsTable + ` (
			design_id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		upsert: `INSERT INTO ` + documentsTable + ` (design_id, document, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (design_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
	}
)

// sqlConnector is the shared implementation for Postgres, MySQL and SQLite.
type sqlConnector struct {
	d  dialect
	db *sql.DB

	once      sync.Once
	ensureErr error
}

func newSQLConnector(d dialect, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{d: d, db: db}, nil
}

func (c *sqlConnector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// ensureTable creates the documents table on first use.
func (c *sqlConnector) ensureTable(ctx context.Context) error {
	c.once.Do(func() {
		if _, err := c.db.ExecContext(ctx, c.d.create); err != nil {
			c.ensureErr = fmt.Errorf("create %s: %w", documentsTable, err)
		}
	})
	return c.ensureErr
}

func (c *sqlConnector) PushDesign(ctx context.Context, state domain.DesignState) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.ensureTable(ctx); err != nil {
		return err
	}
	doc, at, err := encode(state)
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, c.d.upsert, state.Design.ID, string(doc), at); err != nil {
		return fmt.Errorf("upsert design %s: %w", state.Design.ID, err)
	}
	return nil
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
