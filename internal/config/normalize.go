package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDataset() error {
	c.Dataset.Driver = strings.ToLower(strings.TrimSpace(c.Dataset.Driver))
	switch c.Dataset.Driver {
	case "", "gpkg", "sqlite":
		c.Dataset.Driver = DriverGeoPackage
	case "postgres", "postgresql", "pg":
		c.Dataset.Driver = DriverPostGIS
	}

	c.Dataset.Workspace = strings.TrimSpace(c.Dataset.Workspace)
	switch c.Dataset.Driver {
	case DriverPostGIS:
		if value, ok := os.LookupEnv("IDMEND_POSTGIS_DSN"); ok && strings.TrimSpace(value) != "" {
			if c.Dataset.Workspace == "" || c.Dataset.Workspace == defaultWorkspace {
				c.Dataset.Workspace = strings.TrimSpace(value)
			}
		}
		if c.Dataset.Workspace == defaultWorkspace {
			c.Dataset.Workspace = ""
		}
	case DriverGeoPackage:
		var err error
		if c.Dataset.Workspace, err = expandPath(c.Dataset.Workspace); err != nil {
			return fmt.Errorf("dataset.workspace: %w", err)
		}
	}

	c.Dataset.FeatureClass = strings.TrimSpace(c.Dataset.FeatureClass)
	c.Dataset.IDField = strings.TrimSpace(c.Dataset.IDField)
	c.Dataset.OIDField = strings.TrimSpace(c.Dataset.OIDField)
	if c.Dataset.IDField == "" {
		c.Dataset.IDField = defaultIDField
	}
	if c.Dataset.OIDField == "" {
		c.Dataset.OIDField = defaultOIDField
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

var keywordPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

func redactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "<unparseable dsn>"
		}
		return parsed.Redacted()
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
