// Package config loads, normalizes, and validates idmend configuration data.
//
// It supplies defaults for the common water-utility layout (the Hydrants
// feature class keyed by HYDRANT_ID and OBJECTID), expands user paths (including tilde shortcuts), reads TOML files, and honours
// the IDMEND_POSTGIS_DSN environment fallback for PostGIS workspaces.
//
// Always obtain settings through this package so the repair receives a
// sanitized workspace, validated SQL identifiers, and clear validation errors.
package config
