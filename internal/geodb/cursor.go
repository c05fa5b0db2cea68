package geodb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Row is one record as seen by a cursor: its row-id and the identifier
// field. Value is invalid when the field is NULL.
type Row struct {
	OID   int64
	Value sql.NullString
}

// fieldValue scans any column type into its string form. Integral floats are
// written without exponent or fraction so 1e6 reads back as "1000000".
type fieldValue struct {
	dst *sql.NullString
}

func (f fieldValue) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f.dst = sql.NullString{}
		return nil
	case string:
		*f.dst = sql.NullString{String: v, Valid: true}
	case []byte:
		*f.dst = sql.NullString{String: string(v), Valid: true}
	case int64:
		*f.dst = sql.NullString{String: strconv.FormatInt(v, 10), Valid: true}
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			*f.dst = sql.NullString{String: strconv.FormatFloat(v, 'f', -1, 64), Valid: true}
		} else {
			*f.dst = sql.NullString{String: strconv.FormatFloat(v, 'g', -1, 64), Valid: true}
		}
	case bool:
		*f.dst = sql.NullString{String: strconv.FormatBool(v), Valid: true}
	case time.Time:
		*f.dst = sql.NullString{String: v.Format(time.RFC3339Nano), Valid: true}
	default:
		*f.dst = sql.NullString{String: fmt.Sprint(v), Valid: true}
	}
	return nil
}

func scanRow(rows *sql.Rows) (Row, error) {
	var r Row
	if err := rows.Scan(&r.OID, fieldValue{dst: &r.Value}); err != nil {
		return Row{}, err
	}
	return r, nil
}

// SearchCursor calls fn for every row of fc in row-id order. Iteration stops
// at the first error from fn, which is returned unwrapped. The underlying
// rows are released before SearchCursor returns.
func (s *Store) SearchCursor(ctx context.Context, fc *FeatureClass, fn func(Row) error) error {
	var rows *sql.Rows
	if err := retryOnBusy(ctx, func() error {
		var err error
		rows, err = s.db.QueryContext(ctx, fc.selectSQL)
		return err
	}); err != nil {
		return fmt.Errorf("search %s: %w", fc.Name(), err)
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return fmt.Errorf("scan %s: %w", fc.Name(), err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("search %s: %w", fc.Name(), err)
	}
	return nil
}
