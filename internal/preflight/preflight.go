package preflight

import (
	"context"

	"idmend/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}

	// An empty log_dir means stderr-only logging.
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Dataset.Driver == config.DriverGeoPackage {
		file := CheckWorkspaceFile(cfg.Dataset.Workspace)
		results = append(results, file)
		if !file.Passed {
			// The feature class check cannot succeed without the file.
			return results
		}
	}

	return append(results, CheckFeatureClass(ctx, cfg))
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
