// Package config loads CLI configuration from file, environment, and flags.
package config

// Default configuration values.
const (
	DefaultManifestPath = "target/manifest.json"
	DefaultStorePath    = "target/dbt_ui.sqlite"
	DefaultPort         = 8080
)

// Config holds the resolved configuration.
type Config struct {
	// ManifestPath is the dbt manifest.json to compile.
	ManifestPath string `koanf:"manifest_path"`

	// StorePath is the SQLite catalog file.
	StorePath string `koanf:"store_path"`

	// Port is the API server listen port.
	Port int `koanf:"port"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
