package dedupe

import (
	"context"
	"fmt"

	"idmend/internal/geodb"
)

// Source is the read side of a workspace.
type Source interface {
	SearchCursor(ctx context.Context, fc *geodb.FeatureClass, fn func(geodb.Row) error) error
}

// ScanMaxID returns the largest numeric identifier in fc, or 0 when none
// parse. Non-numeric identifiers are skipped.
func ScanMaxID(ctx context.Context, src Source, fc *geodb.FeatureClass) (int64, error) {
	var maxID int64
	err := src.SearchCursor(ctx, fc, func(row geodb.Row) error {
		if id := ParseID(row.Value); id.OK && id.Value > maxID {
			maxID = id.Value
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan max identifier: %w", err)
	}
	return maxID, nil
}
