// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// CatalogPath points at a YAML or JSON event catalog. Empty uses the built-in sample events.
	CatalogPath string `koanf:"catalog_path"`

	// TopN is the default number of recommendations returned.
	TopN int `koanf:"top_n"`

	// SimilarityThreshold drops recommendations whose score is not strictly above it.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// CollaborativeScore is the fixed score given to category-history matches.
	CollaborativeScore float64 `koanf:"collaborative_score"`

	// MaxRequestBytes caps JSON request bodies.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`

	// MaxUploadBytes caps multipart résumé uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// EntityExtraction toggles the proper-noun/entity skill pass of the résumé parser.
	EntityExtraction bool `koanf:"entity_extraction"`

	// ParseCacheSize bounds the parsed-résumé cache. Zero disables caching.
	ParseCacheSize int `koanf:"parse_cache_size"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		TopN:                5,
		SimilarityThreshold: 0,
		CollaborativeScore:  0.8,
		MaxRequestBytes:     1 << 20,
		MaxUploadBytes:      10 << 20,
		EntityExtraction:    true,
		ParseCacheSize:      1000,
		ShutdownTimeout:     10 * time.Second,
	}
}
