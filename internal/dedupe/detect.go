package dedupe

import (
	"context"
	"fmt"

	"idmend/internal/geodb"
)

// Group is one identifier held by more than one row.
type Group struct {
	Value    string
	FirstOID int64
	// DuplicateOIDs are every later holder, in encounter order.
	DuplicateOIDs []int64
}

// Detection is the outcome of the duplicate pass.
type Detection struct {
	// Duplicates lists the row-ids to rewrite, in encounter order.
	Duplicates []int64
	// Seen maps each normalized identifier to the first row-id holding it.
	Seen map[string]int64
	// Groups lists the duplicated identifiers in order of first repeat.
	Groups []Group

	values map[int64]string
}

// Value returns the identifier a duplicate row held when it was detected.
func (d Detection) Value(oid int64) string {
	return d.values[oid]
}

// FindDuplicates walks fc once and records every row whose normalized
// identifier was already seen on an earlier row.
func FindDuplicates(ctx context.Context, src Source, fc *geodb.FeatureClass) (Detection, error) {
	det := Detection{
		Seen:   make(map[string]int64),
		values: make(map[int64]string),
	}
	groupIndex := make(map[string]int)

	err := src.SearchCursor(ctx, fc, func(row geodb.Row) error {
		key, ok := Normalize(row.Value)
		if !ok {
			return nil
		}
		first, seen := det.Seen[key]
		if !seen {
			det.Seen[key] = row.OID
			return nil
		}
		det.Duplicates = append(det.Duplicates, row.OID)
		det.values[row.OID] = row.Value.String

		idx, ok := groupIndex[key]
		if !ok {
			idx = len(det.Groups)
			groupIndex[key] = idx
			det.Groups = append(det.Groups, Group{Value: key, FirstOID: first})
		}
		det.Groups[idx].DuplicateOIDs = append(det.Groups[idx].DuplicateOIDs, row.OID)
		return nil
	})
	if err != nil {
		return Detection{}, fmt.Errorf("find duplicates: %w", err)
	}
	return det, nil
}
