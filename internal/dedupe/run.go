package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"idmend/internal/geodb"
	"idmend/internal/logging"
)

// Workspace is the datastore surface a repair run needs.
type Workspace interface {
	Source
	FeatureClass(ctx context.Context, ref geodb.Ref) (*geodb.FeatureClass, error)
	NewEditor() Editor
}

type storeWorkspace struct {
	*geodb.Store
}

func (w storeWorkspace) NewEditor() Editor {
	return w.Store.NewEditor()
}

// FromStore adapts an open store to Workspace.
func FromStore(store *geodb.Store) Workspace {
	return storeWorkspace{Store: store}
}

// Options configures Run.
type Options struct {
	FeatureClass geodb.Ref
	// DryRun stops after detection and reports the planned assignments.
	DryRun bool
	Logger *slog.Logger
}

// Report describes what a run found and changed.
type Report struct {
	FeatureClass string
	IDField      string
	MaxID        int64
	Detection    Detection
	// Assignments are applied changes, or planned ones on a dry run.
	Assignments []Assignment
	Updated     int
	// FinalID is the last identifier assigned; equal to MaxID when none were.
	FinalID int64
	DryRun  bool
}

// Run repairs duplicate identifiers in the configured feature class.
// Detection and the maximum are computed before any edit session opens.
// A RewriteError means the session was discarded and nothing changed.
func Run(ctx context.Context, ws Workspace, opts Options) (Report, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "dedupe"))

	fc, err := ws.FeatureClass(ctx, opts.FeatureClass)
	if err != nil {
		return Report{}, err
	}
	logger = logger.With(
		logging.String(logging.FieldFeatureClass, fc.Name()),
		logging.String(logging.FieldField, fc.IDField().Name),
	)

	report := Report{
		FeatureClass: fc.Name(),
		IDField:      fc.IDField().Name,
		DryRun:       opts.DryRun,
	}

	maxID, err := ScanMaxID(ctx, ws, fc)
	if err != nil {
		return report, err
	}
	report.MaxID = maxID
	report.FinalID = maxID
	logger.Info("max identifier found", logging.Int64("max_id", maxID))

	det, err := FindDuplicates(ctx, ws, fc)
	if err != nil {
		return report, err
	}
	report.Detection = det
	logger.Info("duplicates found",
		logging.Int("duplicates", len(det.Duplicates)),
		logging.Int("groups", len(det.Groups)),
	)

	if len(det.Duplicates) == 0 {
		logger.Info("nothing to rewrite")
		return report, nil
	}
	if maxID > math.MaxInt64-int64(len(det.Duplicates)) {
		return report, fmt.Errorf("%w: max %d leaves no room for %d new identifiers", ErrCounterOverflow, maxID, len(det.Duplicates))
	}

	if opts.DryRun {
		report.Assignments = Plan(det, maxID+1)
		report.FinalID = maxID + int64(len(report.Assignments))
		logger.Info("dry run; no edits made", logging.Int("planned", len(report.Assignments)))
		return report, nil
	}

	result, err := Rewrite(ctx, ws.NewEditor(), fc, det.Duplicates, maxID+1, logger)
	if err != nil {
		logger.Error("rewrite failed; edits rolled back", logging.Error(err))
		return report, err
	}
	report.Assignments = result.Assignments
	report.Updated = result.Updated
	report.FinalID = result.FinalID
	logger.Info("update complete",
		logging.Int("updated", result.Updated),
		logging.Int64("final_id", result.FinalID),
	)
	return report, nil
}

// Plan returns the assignments Rewrite would make for det starting at start,
// assuming the feature class does not change in between.
func Plan(det Detection, start int64) []Assignment {
	out := make([]Assignment, 0, len(det.Duplicates))
	for i, oid := range det.Duplicates {
		out = append(out, Assignment{
			OID:      oid,
			Previous: det.Value(oid),
			Value:    strconv.FormatInt(start+int64(i), 10),
		})
	}
	return out
}
