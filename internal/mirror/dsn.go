package mirror

import (
	"fmt"
	"net/url"
	"strings"

	"photodesigner/internal/domain"
)

// buildPostgresDSN constructs a Postgres connection string for a target.
func buildPostgresDSN(t *domain.MirrorTarget, password string) string {
	port := t.Port
	if port == 0 {
		port = 5432
	}
	sslMode := t.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		t.Host, port, t.Username, password, t.Database, sslMode,
	)
}

// buildMySQLDSN constructs a MySQL DSN for a target.
func buildMySQLDSN(t *domain.MirrorTarget, password string) string {
	port := t.Port
	if port == 0 {
		port = 3306
	}
	// user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		t.Username, password, t.Host, port, t.Database,
	)
	if t.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// buildSQLiteDSN opens the target file in WAL mode with a busy timeout, so
// the renderer can read while designs are pushed.
func buildSQLiteDSN(t *domain.MirrorTarget) string {
	return t.Host + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// buildMongoURI accepts either a full connection string in Host (Atlas
// style, with an optional <password> placeholder) or a plain host name.
func buildMongoURI(t *domain.MirrorTarget, password string) string {
	if strings.HasPrefix(t.Host, "mongodb+srv://") || strings.HasPrefix(t.Host, "mongodb://") {
		uri := t.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(password))
		}
		return uri
	}
	port := t.Port
	if port == 0 {
		port = 27017
	}
	if t.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d",
			url.QueryEscape(t.Username), url.QueryEscape(password), t.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", t.Host, port)
}
