package geodb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type column struct {
	name     string
	declared string
}

// dialect isolates the SQL differences between SQLite and PostgreSQL.
type dialect interface {
	name() string
	driverName() string
	placeholder(n int) string
	quoteIdent(name string) string
	// resolveTable returns the quoted table reference and its columns, or
	// ErrFeatureClassNotFound.
	resolveTable(ctx context.Context, q queryer, name string) (string, []column, error)
	numericType(declared string) bool
	layers(ctx context.Context, q queryer) ([]Layer, error)
}

type sqliteDialect struct{}

func (sqliteDialect) name() string       { return DriverGeoPackage }
func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d sqliteDialect) resolveTable(ctx context.Context, q queryer, name string) (string, []column, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?)`, name)
	if err != nil {
		return "", nil, fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.declared); err != nil {
			return "", nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("read table info: %w", err)
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrFeatureClassNotFound, name)
	}
	return d.quoteIdent(name), cols, nil
}

// numericType applies SQLite's column affinity rules: anything that is not
// TEXT or BLOB affinity stores integers as numbers.
func (sqliteDialect) numericType(declared string) bool {
	t := strings.ToUpper(declared)
	switch {
	case strings.Contains(t, "INT"):
		return true
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return false
	case t == "" || strings.Contains(t, "BLOB"):
		return false
	default:
		return true
	}
}

func (sqliteDialect) layers(ctx context.Context, q queryer) ([]Layer, error) {
	var count int
	rows, err := q.QueryContext(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_geometry_columns'`)
	if err != nil {
		return nil, fmt.Errorf("check geopackage metadata: %w", err)
	}
	if rows.Next() {
		err = rows.Scan(&count)
	}
	_ = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("check geopackage metadata: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	return scanLayers(ctx, q, `SELECT table_name, column_name, geometry_type_name, srs_id
        FROM gpkg_geometry_columns ORDER BY table_name`)
}

type postgresDialect struct{}

func (postgresDialect) name() string       { return DriverPostGIS }
func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// resolveTable matches the table case-insensitively, preferring the current
// schema. Enterprise names such as db.owner.table keep the last two parts.
func (postgresDialect) resolveTable(ctx context.Context, q queryer, name string) (string, []column, error) {
	parts := strings.Split(name, ".")
	table := parts[len(parts)-1]
	schema := ""
	if len(parts) > 1 {
		schema = parts[len(parts)-2]
	}

	rows, err := q.QueryContext(ctx, `SELECT table_schema, table_name, column_name, data_type
        FROM information_schema.columns
        WHERE lower(table_name) = lower($1)
          AND ($2::text = '' OR lower(table_schema) = lower($2::text))
        ORDER BY (table_schema = current_schema()) DESC, table_schema, table_name, ordinal_position`,
		table, schema)
	if err != nil {
		return "", nil, fmt.Errorf("read table columns: %w", err)
	}
	defer rows.Close()

	var (
		cols                    []column
		foundSchema, foundTable string
	)
	for rows.Next() {
		var s, t string
		var c column
		if err := rows.Scan(&s, &t, &c.name, &c.declared); err != nil {
			return "", nil, fmt.Errorf("scan table columns: %w", err)
		}
		if foundTable == "" {
			foundSchema, foundTable = s, t
		}
		if s != foundSchema || t != foundTable {
			continue
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("read table columns: %w", err)
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrFeatureClassNotFound, name)
	}
	return pgx.Identifier{foundSchema, foundTable}.Sanitize(), cols, nil
}

func (postgresDialect) numericType(declared string) bool {
	switch strings.ToLower(declared) {
	case "smallint", "integer", "bigint", "numeric", "real", "double precision":
		return true
	default:
		return false
	}
}

func (postgresDialect) layers(ctx context.Context, q queryer) ([]Layer, error) {
	var count int
	rows, err := q.QueryContext(ctx, `SELECT COUNT(1) FROM information_schema.views WHERE table_name = 'geometry_columns'`)
	if err != nil {
		return nil, fmt.Errorf("check postgis metadata: %w", err)
	}
	if rows.Next() {
		err = rows.Scan(&count)
	}
	_ = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("check postgis metadata: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	return scanLayers(ctx, q, `SELECT f_table_schema || '.' || f_table_name, f_geometry_column, type, srid
        FROM geometry_columns ORDER BY 1`)
}

func scanLayers(ctx context.Context, q queryer, query string) ([]Layer, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feature classes: %w", err)
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var l Layer
		if err := rows.Scan(&l.Name, &l.GeometryColumn, &l.GeometryType, &l.SRID); err != nil {
			return nil, fmt.Errorf("scan feature class: %w", err)
		}
		layers = append(layers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feature classes: %w", err)
	}
	return layers, nil
}
