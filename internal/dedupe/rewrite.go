package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"idmend/internal/geodb"
	"idmend/internal/logging"
)

// Editor is an edit session as seen by the rewriter.
type Editor interface {
	StartEditing(ctx context.Context) error
	StartOperation(ctx context.Context) error
	StopOperation(ctx context.Context, save bool) error
	StopEditing(save bool) error
	UpdateCursor(ctx context.Context, fc *geodb.FeatureClass, fn func(geodb.Row, geodb.UpdateFunc) error) error
}

// Assignment is one identifier change, planned or applied.
type Assignment struct {
	OID      int64
	Previous string
	Value    string
}

// RewriteResult summarizes a committed rewrite.
type RewriteResult struct {
	Assignments []Assignment
	Updated     int
	// FinalID is the last value assigned, or start-1 when nothing changed.
	FinalID int64
}

// RewriteError reports a rewrite that was rolled back. Updated counts the
// rows changed before the failure; none of them persist.
type RewriteError struct {
	Updated int
	Err     error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewrite duplicates: %v (%d pending updates rolled back)", e.Err, e.Updated)
}

func (e *RewriteError) Unwrap() error { return e.Err }

// ErrCounterOverflow is returned when the next identifier would exceed int64.
var ErrCounterOverflow = errors.New("identifier counter overflow")

// Rewrite assigns start, start+1, ... to the duplicate rows in row-id order
// inside one edit session and operation. Every exit path either commits both
// or discards both.
func Rewrite(ctx context.Context, ed Editor, fc *geodb.FeatureClass, duplicates []int64, start int64, logger *slog.Logger) (RewriteResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	pending := make(map[int64]struct{}, len(duplicates))
	for _, oid := range duplicates {
		pending[oid] = struct{}{}
	}

	if err := ed.StartEditing(ctx); err != nil {
		return RewriteResult{}, &RewriteError{Err: err}
	}
	if err := ed.StartOperation(ctx); err != nil {
		return RewriteResult{}, &RewriteError{Err: errors.Join(err, ed.StopEditing(false))}
	}

	var (
		result    RewriteResult
		committed bool
	)
	defer func() {
		if committed {
			return
		}
		// The caller's context may be the reason we are here.
		rbCtx := context.WithoutCancel(ctx)
		if err := ed.StopOperation(rbCtx, false); err != nil {
			logger.Warn("discard edit operation failed", logging.Error(err))
		}
		if err := ed.StopEditing(false); err != nil {
			logger.Warn("discard edit session failed", logging.Error(err))
		}
	}()

	counter := start
	err := ed.UpdateCursor(ctx, fc, func(row geodb.Row, update geodb.UpdateFunc) error {
		if _, ok := pending[row.OID]; !ok {
			return nil
		}
		if counter < start {
			return ErrCounterOverflow
		}
		value := strconv.FormatInt(counter, 10)
		if err := update(value); err != nil {
			return err
		}
		result.Assignments = append(result.Assignments, Assignment{OID: row.OID, Previous: row.Value.String, Value: value})
		result.Updated++
		logger.Info("identifier reassigned",
			logging.Int64(logging.FieldOID, row.OID),
			logging.String("previous", row.Value.String),
			logging.String("value", value),
		)
		if counter == math.MaxInt64 {
			// Wraps to MinInt64; a further assignment fails the check above.
			counter = math.MinInt64
			return nil
		}
		counter++
		return nil
	})
	if err != nil {
		return RewriteResult{}, &RewriteError{Updated: result.Updated, Err: err}
	}

	if err := ed.StopOperation(ctx, true); err != nil {
		return RewriteResult{}, &RewriteError{Updated: result.Updated, Err: err}
	}
	if err := ed.StopEditing(true); err != nil {
		// A failed commit has already ended the session; nothing left to discard.
		committed = true
		return RewriteResult{}, &RewriteError{Updated: result.Updated, Err: err}
	}
	committed = true

	result.FinalID = start - 1 + int64(result.Updated)
	return result, nil
}
