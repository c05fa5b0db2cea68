package geodb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Ref names a feature class and the two fields a repair touches.
type Ref struct {
	Name     string
	OIDField string
	IDField  string
}

// Field is a resolved column of a feature class.
type Field struct {
	Name string
	Type string
	// Numeric fields are written as integers rather than text.
	Numeric bool
}

// FeatureClass is a Ref resolved against the live schema. Obtain one from
// Store.FeatureClass; the zero value is not usable.
type FeatureClass struct {
	ref   Ref
	table string
	oid   Field
	id    Field

	selectSQL string
	updateSQL string
}

// Layer describes a spatial table registered in the workspace metadata.
type Layer struct {
	Name           string
	GeometryColumn string
	GeometryType   string
	SRID           int64
}

// Name returns the configured feature class name.
func (fc *FeatureClass) Name() string { return fc.ref.Name }

// OIDField returns the resolved row-id field.
func (fc *FeatureClass) OIDField() Field { return fc.oid }

// IDField returns the resolved identifier field.
func (fc *FeatureClass) IDField() Field { return fc.id }

// FeatureClass resolves ref against the workspace schema. Field names match
// case-insensitively so OBJECTID finds an objectid column created unquoted.
func (s *Store) FeatureClass(ctx context.Context, ref Ref) (*FeatureClass, error) {
	table, cols, err := s.dialect.resolveTable(ctx, s.db, ref.Name)
	if err != nil {
		return nil, err
	}

	find := func(name string) (Field, error) {
		for _, c := range cols {
			if strings.EqualFold(c.name, name) {
				return Field{Name: c.name, Type: c.declared, Numeric: s.dialect.numericType(c.declared)}, nil
			}
		}
		return Field{}, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, ref.Name, name)
	}

	oid, err := find(ref.OIDField)
	if err != nil {
		return nil, err
	}
	id, err := find(ref.IDField)
	if err != nil {
		return nil, err
	}

	q := s.dialect.quoteIdent
	return &FeatureClass{
		ref:   ref,
		table: table,
		oid:   oid,
		id:    id,
		selectSQL: fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
			q(oid.Name), q(id.Name), table, q(oid.Name)),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			table, q(id.Name), s.dialect.placeholder(1), q(oid.Name), s.dialect.placeholder(2)),
	}, nil
}

// Layers lists the spatial tables registered in the workspace. Workspaces
// without GeoPackage or PostGIS metadata return an empty list.
func (s *Store) Layers(ctx context.Context) ([]Layer, error) {
	return s.dialect.layers(ctx, s.db)
}

// fieldArg converts a string identifier into the argument written to the
// identifier field.
func (fc *FeatureClass) fieldArg(value string) (any, error) {
	if !fc.id.Numeric {
		return value, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q for numeric field %s", ErrInvalidValue, value, fc.id.Name)
	}
	return n, nil
}
