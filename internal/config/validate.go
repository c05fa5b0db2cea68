package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	switch c.Dataset.Driver {
	case DriverGeoPackage, DriverPostGIS:
	default:
		return fmt.Errorf("dataset.driver: unsupported value %q (expected %q or %q)", c.Dataset.Driver, DriverGeoPackage, DriverPostGIS)
	}
	if c.Dataset.Workspace == "" {
		if c.Dataset.Driver == DriverPostGIS {
			return errors.New("dataset.workspace is required for postgis. Set IDMEND_POSTGIS_DSN or edit the config file")
		}
		return errors.New("dataset.workspace must be set")
	}
	if c.Dataset.FeatureClass == "" {
		return errors.New("dataset.feature_class must be set")
	}
	for _, part := range strings.Split(c.Dataset.FeatureClass, ".") {
		if !identifierPattern.MatchString(part) {
			return fmt.Errorf("dataset.feature_class: %q is not a valid table name", c.Dataset.FeatureClass)
		}
	}
	if c.Dataset.Driver == DriverGeoPackage && strings.Contains(c.Dataset.FeatureClass, ".") {
		return fmt.Errorf("dataset.feature_class: %q cannot be schema-qualified in a geopackage", c.Dataset.FeatureClass)
	}
	if !identifierPattern.MatchString(c.Dataset.IDField) {
		return fmt.Errorf("dataset.id_field: %q is not a valid field name", c.Dataset.IDField)
	}
	if !identifierPattern.MatchString(c.Dataset.OIDField) {
		return fmt.Errorf("dataset.oid_field: %q is not a valid field name", c.Dataset.OIDField)
	}
	if strings.EqualFold(c.Dataset.IDField, c.Dataset.OIDField) {
		return errors.New("dataset.id_field and dataset.oid_field must differ")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
