package geodb

import "errors"

var (
	// ErrWorkspaceNotFound indicates the GeoPackage file does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrUnsupportedDriver indicates an unknown workspace driver name.
	ErrUnsupportedDriver = errors.New("unsupported workspace driver")
	// ErrFeatureClassNotFound indicates the configured table does not exist.
	ErrFeatureClassNotFound = errors.New("feature class not found")
	// ErrFieldNotFound indicates a configured field is missing from the feature class.
	ErrFieldNotFound = errors.New("field not found")
	// ErrEditState is returned for an edit session call made in the wrong state.
	ErrEditState = errors.New("invalid edit session state")
	// ErrInvalidValue indicates a value that cannot be stored in a numeric field.
	ErrInvalidValue = errors.New("invalid field value")
)
