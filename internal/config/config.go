package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"aivaceo/adapters/coercer"
	"aivaceo/internal/errors"
	"aivaceo/internal/profiling"
)

// DefaultMaxBodyBytes caps uploads and records responses when unset
const DefaultMaxBodyBytes = 32 << 20

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Cache    CacheConfig
	Sources  SourcesConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// DataConfig names a file to load at startup
type DataConfig struct {
	File  string
	Sheet string
	Watch bool
}

// CacheConfig holds snapshot store settings
type CacheConfig struct {
	TTL time.Duration // zero keeps snapshots until deleted
}

// SourcesConfig holds optional database and records-feed settings
type SourcesConfig struct {
	DatabaseDriver  string
	DatabaseURL     string
	RecordsURL      string
	RecordsDataPath string
	RecordsToken    string
	RecordsMaxBytes int64 // cap on each records response body
}

// AnalysisConfig holds the thresholds of the scanner and the coercer.
// It is read from the YAML file named by ANALYSIS_CONFIG when set.
type AnalysisConfig struct {
	Profiling   profiling.Options      `yaml:"profiling"`
	Coercion    coercer.CoercionConfig `yaml:"coercion"`
	Concurrency int                    `yaml:"concurrency"`
}

// DefaultAnalysisConfig returns the built-in thresholds
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Profiling:   profiling.DefaultOptions(),
		Coercion:    coercer.DefaultCoercionConfig(),
		Concurrency: 4,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Data:    *loadDataConfig(),
		Cache:   CacheConfig{TTL: getEnvDurationOrDefault("CACHE_TTL", 0)},
		Sources: *loadSourcesConfig(),
	}

	analysis, err := LoadAnalysis(os.Getenv("ANALYSIS_CONFIG"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysis

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", DefaultMaxBodyBytes),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:  getEnvOrDefault("DATA_FILE", ""),
		Sheet: getEnvOrDefault("DATA_SHEET", ""),
		Watch: getEnvBoolOrDefault("DATA_WATCH", false),
	}
}

func loadSourcesConfig() *SourcesConfig {
	return &SourcesConfig{
		DatabaseDriver:  getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:     getEnvOrDefault("DATABASE_URL", ""),
		RecordsURL:      getEnvOrDefault("RECORDS_URL", ""),
		RecordsDataPath: getEnvOrDefault("RECORDS_DATA_PATH", ""),
		RecordsToken:    getEnvOrDefault("RECORDS_TOKEN", ""),
		RecordsMaxBytes: getEnvInt64OrDefault("RECORDS_MAX_BYTES", DefaultMaxBodyBytes),
	}
}

// LoadAnalysis reads analysis thresholds from a YAML file over the defaults.
// An empty path returns the defaults.
func LoadAnalysis(path string) (*AnalysisConfig, error) {
	analysis := DefaultAnalysisConfig()
	if path == "" {
		return &analysis, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if err := yaml.Unmarshal(raw, &analysis); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid YAML in %s: %v", path, err))
	}

	analysis.Profiling = analysis.Profiling.Normalize()
	if analysis.Concurrency <= 0 {
		analysis.Concurrency = 1
	}
	return &analysis, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be numeric, got %q", config.Server.Port))
	}
	switch config.Sources.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER must be postgres or sqlite, got %q", config.Sources.DatabaseDriver))
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Sources.RecordsMaxBytes <= 0 {
		return errors.ConfigInvalid("RECORDS_MAX_BYTES must be positive")
	}
	if config.Cache.TTL < 0 {
		return errors.ConfigInvalid("CACHE_TTL cannot be negative")
	}
	c := config.Analysis.Coercion
	if c.NumericThreshold <= 0 || c.NumericThreshold > 1 || c.TimestampThreshold <= 0 || c.TimestampThreshold > 1 {
		return errors.ConfigInvalid("coercion thresholds must be in (0, 1]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
