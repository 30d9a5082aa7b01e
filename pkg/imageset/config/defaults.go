// Package config provides configuration management for imageset.
package config

// Default configuration values for imageset.
const (
	// AppName names the config, state and data directories.
	AppName = "imageset"

	// EnvPrefix prefixes environment overrides, e.g. IMAGESET_IMPORT_START.
	EnvPrefix = "IMAGESET"

	// DefaultSource is the directory holding the "web N" screenshot folders.
	DefaultSource = "."

	// DefaultTarget is the asset catalog group receiving the imagesets.
	DefaultTarget = "./Assets.xcassets/schedule"

	// DefaultImportStart is the first index imported (inclusive).
	DefaultImportStart = 6

	// DefaultImportEnd is the index where importing stops (exclusive).
	DefaultImportEnd = 23

	// DefaultRetentionDays is the default number of days to retain manifests.
	DefaultRetentionDays = 30

	// DefaultOutput is the default report format.
	DefaultOutput = "pretty"

	// DefaultLogLevel is the default file log level.
	DefaultLogLevel = "info"
)

// DefaultComponentLevels are the per-component log levels written by WriteDefault.
var DefaultComponentLevels = map[string]string{
	"rename":   "info",
	"importer": "info",
	"source":   "info",
	"manifest": "warn",
}
