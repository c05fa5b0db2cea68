// Package geodb reads and edits a single feature class through database/sql.
//
// Two workspace kinds are supported: GeoPackage files opened with the pure-Go
// SQLite driver, and PostGIS databases reached through the pgx stdlib driver.
// Both expose the same surface: a FeatureClass handle resolved against the
// live schema, a read-only SearchCursor ordered by row-id, and an Editor that
// models an edit session (a transaction) with one nested operation (a
// savepoint). An Editor is single-use: it ends Committed or RolledBack.
//
// Cursors release their rows on every exit path. Callers never see *sql.Rows.
package geodb
