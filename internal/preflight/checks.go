package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"idmend/internal/config"
	"idmend/internal/geodb"
)

const workspaceTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWorkspaceFile verifies a GeoPackage file exists and can be edited.
// SQLite also needs to create its journal next to the file, so the parent
// directory must be writable too.
func CheckWorkspaceFile(path string) Result {
	const name = "Workspace file"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFeatureClass connects to the workspace and resolves the configured
// feature class and fields.
func CheckFeatureClass(ctx context.Context, cfg *config.Config) Result {
	const name = "Feature class"

	checkCtx, cancel := context.WithTimeout(ctx, workspaceTimeout)
	defer cancel()

	store, err := geodb.Open(checkCtx, geodb.Workspace{Driver: cfg.Dataset.Driver, DSN: cfg.Dataset.Workspace})
	if err != nil {
		return Result{Name: name, Detail: summarizeWorkspaceError(cfg, err)}
	}
	defer store.Close()

	fc, err := store.FeatureClass(checkCtx, geodb.Ref{
		Name:     cfg.Dataset.FeatureClass,
		OIDField: cfg.Dataset.OIDField,
		IDField:  cfg.Dataset.IDField,
	})
	if err != nil {
		return Result{Name: name, Detail: summarizeWorkspaceError(cfg, err)}
	}

	id := fc.IDField()
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%s %s, row-id %s)", fc.Name(), id.Name, fieldKind(id), fc.OIDField().Name),
	}
}

func fieldKind(f geodb.Field) string {
	if f.Numeric {
		return "numeric"
	}
	return "text"
}

func summarizeWorkspaceError(cfg *config.Config, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s (error: timed out after %s)", cfg.WorkspaceLabel(), workspaceTimeout)
	case errors.Is(err, geodb.ErrFeatureClassNotFound), errors.Is(err, geodb.ErrFieldNotFound):
		return fmt.Sprintf("error: %v", err)
	default:
		return fmt.Sprintf("%s (error: %v)", cfg.WorkspaceLabel(), err)
	}
}
