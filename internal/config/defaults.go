package config

const (
	defaultDriver       = DriverGeoPackage
	defaultWorkspace    = "~/.local/share/idmend/hydrants.gpkg"
	defaultFeatureClass = "Hydrants"
	defaultIDField      = "HYDRANT_ID"
	defaultOIDField     = "OBJECTID"
	defaultStateDir     = "~/.local/state/idmend"
	defaultLogDir       = "~/.local/share/idmend/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Driver:       defaultDriver,
			Workspace:    defaultWorkspace,
			FeatureClass: defaultFeatureClass,
			IDField:      defaultIDField,
			OIDField:     defaultOIDField,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
