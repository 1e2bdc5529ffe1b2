package types

import "time"

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// OutputPath is stdout, stderr, or a file path.
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes limits a single multipart upload (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// DeskIdleTimeout expires desks with no activity (default 30m).
	DeskIdleTimeout time.Duration `json:"desk_idle_timeout" yaml:"desk_idle_timeout" mapstructure:"desk_idle_timeout"`
}

// ReleaseConfig controls where released artifacts go.
type ReleaseConfig struct {
	// OutputDir is where the CLI writes released artifacts (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// DownloadTTL is how long a server download reference stays valid
	// (default 10m).
	DownloadTTL time.Duration `json:"download_ttl" yaml:"download_ttl" mapstructure:"download_ttl"`
}

// LedgerConfig holds settings for the release history database.
type LedgerConfig struct {
	// Enabled turns release recording on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir is the directory holding pdfdesk.db (default "data").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default listing limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ConvertConfig holds settings for the Word-to-PDF container backend.
type ConvertConfig struct {
	// Image is the container image that reads a Word document on stdin and
	// writes a PDF on stdout.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Disabled turns the Word-to-PDF tool off without probing for a runtime.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// Config groups every section of pdfdesk.yaml.
type Config struct {
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Release ReleaseConfig `json:"release" yaml:"release" mapstructure:"release"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Convert ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
}
