package config

import "time"

// Config represents the complete voxgate configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Listen  string        `yaml:"listen"`
	Webhook WebhookConfig `yaml:"webhook"`
	Storage StorageConfig `yaml:"storage"`
	CORS    CORSConfig    `yaml:"cors,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// WebhookConfig defines webhook intake settings.
type WebhookConfig struct {
	// Secret is the shared HMAC secret, usually ${WEBHOOK_SECRET}. An
	// empty secret loads fine but every intake request answers 500.
	Secret string `yaml:"secret"`

	// MaxBodySize accepts size strings like "10MB" or plain byte counts.
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// MaxSkew accepts duration strings like "30m".
	MaxSkew string `yaml:"max_skew,omitempty"`

	// Parsed values, filled by Load after validation.
	MaxBodyBytes int64         `yaml:"-"`
	Skew         time.Duration `yaml:"-"`
}

// StorageConfig defines payload persistence settings.
type StorageConfig struct {
	// Backend selects the payload store: latest, archive or sqlite.
	Backend string `yaml:"backend"`

	// DataDir holds file-backed payloads and audio artifacts.
	DataDir string `yaml:"data_dir"`

	// SQLitePath is the database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// CORSConfig defines cross-origin settings for the read API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}
