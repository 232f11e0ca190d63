package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voxgate/voxgate/internal/store"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "voxgate",
			LogLevel: "info",
		},
		Listen: "127.0.0.1:8080",
		Webhook: WebhookConfig{
			MaxBodySize: "10MB",
			MaxSkew:     "30m",
		},
		Storage: StorageConfig{
			Backend: store.BackendLatest,
			DataDir: "./data",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
	}
}

// Load reads, interpolates and validates configuration from a file.
// ${VAR} placeholders anywhere in the file are replaced from the
// process environment before parsing.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", absPath, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// validate already proved these parse.
	cfg.Webhook.MaxBodyBytes, _ = parseMaxBodySize(cfg.Webhook.MaxBodySize)
	cfg.Webhook.Skew, _ = time.ParseDuration(cfg.Webhook.MaxSkew)

	return cfg, nil
}

// applyDefaults fills unset fields from Defaults.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Listen == "" {
		cfg.Listen = defaults.Listen
	}
	if cfg.Webhook.MaxBodySize == "" {
		cfg.Webhook.MaxBodySize = defaults.Webhook.MaxBodySize
	}
	if cfg.Webhook.MaxSkew == "" {
		cfg.Webhook.MaxSkew = defaults.Webhook.MaxSkew
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaults.Storage.DataDir
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "voxgate.db")
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = defaults.CORS.AllowedOrigins
	}
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Listen == "" {
		return fmt.Errorf("listen is required")
	}

	// Secret may legitimately be empty (the intake handler gates on it),
	// but an unresolved placeholder means a missing environment variable.
	if envVarPattern.MatchString(cfg.Webhook.Secret) {
		matches := envVarPattern.FindStringSubmatch(cfg.Webhook.Secret)
		return fmt.Errorf("webhook.secret references undefined environment variable %s", matches[0])
	}

	if _, err := parseMaxBodySize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}

	skew, err := time.ParseDuration(cfg.Webhook.MaxSkew)
	if err != nil {
		return fmt.Errorf("webhook.max_skew %q: %w", cfg.Webhook.MaxSkew, err)
	}
	if skew <= 0 {
		return fmt.Errorf("webhook.max_skew must be positive")
	}

	switch cfg.Storage.Backend {
	case store.BackendLatest, store.BackendArchive, store.BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be one of: latest, archive, sqlite (got %q)", cfg.Storage.Backend)
	}

	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if cfg.Storage.Backend == store.BackendSQLite && cfg.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
	}

	return nil
}

// parseMaxBodySize parses size strings like "10MB", "512KB", "1048576" to bytes.
func parseMaxBodySize(size string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 { // Check for overflow
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}

// interpolateEnv replaces ${VAR} placeholders with environment values.
// Unknown variables are left in place and caught by validation.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}
