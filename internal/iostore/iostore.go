// Package iostore provides the SQL-backed activity and score stores.
package iostore

import (
	"database/sql"
	"fmt"

	"github.com/aeswibon/dora/schema"
	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver
)

// Table names for ingested activity and computed scores.
const (
	releasesTable     = "dora_releases"
	pullRequestsTable = "dora_pull_requests"
	issuesTable       = "dora_issues"
	scoresTable       = "dora_scores"
)

// openDB opens and verifies a database connection for the given backend.
// SQLite is limited to a single open connection to avoid "database is
// locked" errors; the server backends rely on database/sql pooling, which
// is what makes the store safe to share across concurrent windows.
func openDB(backend schema.DatabaseBackend, connStr, defaultSQLitePath string) (*sql.DB, string, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = defaultSQLitePath
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to MySQL: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to PostgreSQL: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return db, driverName, nil
}

// placeholder returns the n-th parameter placeholder for the backend
// (1-based, matching PostgreSQL numbering).
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholderList returns a comma-joined placeholder list for an IN clause,
// starting at parameter position start.
func placeholderList(backend schema.DatabaseBackend, start, count int) string {
	out := ""
	for i := range count {
		if i > 0 {
			out += ", "
		}
		out += placeholder(backend, start+i)
	}
	return out
}
