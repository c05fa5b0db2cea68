package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"idmend/internal/config"
)

// Feature is one seeded row. A nil ID stores NULL.
type Feature struct {
	OID int64
	ID  any
}

// Table describes the feature class a fixture creates.
type Table struct {
	Name     string
	OIDField string
	IDField  string
	// IDType is the declared SQLite type of the identifier column.
	IDType string
}

// HydrantTable matches the default configuration.
func HydrantTable() Table {
	return Table{Name: "Hydrants", OIDField: "OBJECTID", IDField: "HYDRANT_ID", IDType: "TEXT"}
}

// TableFor derives the fixture table from cfg with the given identifier type.
func TableFor(cfg *config.Config, idType string) Table {
	return Table{
		Name:     cfg.Dataset.FeatureClass,
		OIDField: cfg.Dataset.OIDField,
		IDField:  cfg.Dataset.IDField,
		IDType:   idType,
	}
}

// WriteGeoPackage creates a minimal GeoPackage at path holding one point
// feature class populated with features.
func WriteGeoPackage(t testing.TB, path string, table Table, features []Feature) {
	t.Helper()

	db := OpenSQLite(t, path)
	stmts := []string{
		"PRAGMA application_id = 1196444487",
		`CREATE TABLE gpkg_contents (
            table_name TEXT NOT NULL PRIMARY KEY, data_type TEXT NOT NULL,
            identifier TEXT, description TEXT DEFAULT '', srs_id INTEGER)`,
		`CREATE TABLE gpkg_geometry_columns (
            table_name TEXT NOT NULL, column_name TEXT NOT NULL,
            geometry_type_name TEXT NOT NULL, srs_id INTEGER NOT NULL,
            z TINYINT NOT NULL, m TINYINT NOT NULL,
            CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name))`,
		fmt.Sprintf(`CREATE TABLE %q (%q INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL, geom POINT, %q %s, STATUS TEXT)`,
			table.Name, table.OIDField, table.IDField, table.IDType),
		fmt.Sprintf(`INSERT INTO gpkg_contents (table_name, data_type, identifier, srs_id) VALUES ('%s', 'features', '%s', 4326)`,
			table.Name, table.Name),
		fmt.Sprintf(`INSERT INTO gpkg_geometry_columns VALUES ('%s', 'geom', 'POINT', 4326, 0, 0)`, table.Name),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed geopackage: %s: %v", strings.SplitN(stmt, "\n", 2)[0], err)
		}
	}

	insert := fmt.Sprintf(`INSERT INTO %q (%q, %q, STATUS) VALUES (?, ?, 'in service')`, table.Name, table.OIDField, table.IDField)
	for _, f := range features {
		if _, err := db.Exec(insert, f.OID, f.ID); err != nil {
			t.Fatalf("seed feature %d: %v", f.OID, err)
		}
	}
}

// OpenSQLite opens path directly for fixture setup and assertions.
func OpenSQLite(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ReadIDs returns the identifier of every feature keyed by row-id, with
// NULL reported as the empty string.
func ReadIDs(t testing.TB, path string, table Table) map[int64]string {
	t.Helper()

	db := OpenSQLite(t, path)
	rows, err := db.Query(fmt.Sprintf(`SELECT %q, %q FROM %q`, table.OIDField, table.IDField, table.Name))
	if err != nil {
		t.Fatalf("read ids: %v", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var (
			oid int64
			id  sql.NullString
		)
		if err := rows.Scan(&oid, &id); err != nil {
			t.Fatalf("scan ids: %v", err)
		}
		out[oid] = id.String
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("read ids: %v", err)
	}
	return out
}

// Exec runs stmt against the fixture database, e.g. to install a trigger.
func Exec(t testing.TB, path, stmt string) {
	t.Helper()

	db := OpenSQLite(t, path)
	if _, err := db.Exec(stmt); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}
