package geodb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Workspace drivers.
const (
	DriverGeoPackage = "geopackage"
	DriverPostGIS    = "postgis"
)

// Workspace identifies the database holding the feature class.
type Workspace struct {
	Driver string
	// DSN is a file path for GeoPackage and a connection string for PostGIS.
	DSN string
}

// Store is an open workspace connection.
type Store struct {
	db      *sql.DB
	dialect dialect
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open connects to the workspace and verifies the connection is usable.
func Open(ctx context.Context, ws Workspace) (*Store, error) {
	var (
		d   dialect
		dsn string
		err error
	)
	switch ws.Driver {
	case DriverGeoPackage:
		var info os.FileInfo
		info, err = os.Stat(ws.DSN)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, ws.DSN)
			}
			return nil, fmt.Errorf("stat geopackage: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrWorkspaceNotFound, ws.DSN)
		}
		d = sqliteDialect{}
		dsn, err = sqliteDSN(ws.DSN)
		if err != nil {
			return nil, err
		}
	case DriverPostGIS:
		d = postgresDialect{}
		dsn = ws.DSN
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, ws.Driver)
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s workspace: %w", ws.Driver, err)
	}
	if ws.Driver == DriverGeoPackage {
		// One connection keeps the edit session and its cursors on the same handle.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s workspace: %w", ws.Driver, err)
	}
	return &Store{db: db, dialect: d}, nil
}

// sqliteDSN builds a file: URI for path with the connection pragmas. The
// path is escaped so '#', '?' and '%' in file names survive URI parsing.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve geopackage path: %w", err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	}
	return u.String(), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver reports the workspace driver name.
func (s *Store) Driver() string {
	return s.dialect.name()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy retries op while SQLite reports the database as locked by
// another process. It is only used for reads and for opening a session;
// writes inside an edit session are never retried.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
