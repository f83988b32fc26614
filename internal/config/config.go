package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	DataDir         string `yaml:"dataDir"`
	MaxUploadSizeMB int    `yaml:"maxUploadSizeMB"`
}

// LimitsConfig bounds per-conversion resource usage.
type LimitsConfig struct {
	MaxImageDimension int `yaml:"maxImageDimension"`
	MaxPDFPages       int `yaml:"maxPdfPages"`
	MaxRows           int `yaml:"maxRows"`
	MaxColumns        int `yaml:"maxColumns"`
}

type WorkerConfig struct {
	MaxConcurrentJobs int `yaml:"maxConcurrentJobs"`
}

// RetentionConfig controls TTL-like deletion of finished uploads so
// that working storage does not grow without bound over time.
type RetentionConfig struct {
	Enabled                bool `yaml:"enabled"`
	ExpirySeconds          int  `yaml:"expirySeconds"`
	CleanupIntervalSeconds int  `yaml:"cleanupIntervalSeconds"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Limits    LimitsConfig    `yaml:"limits"`
	Worker    WorkerConfig    `yaml:"worker"`
	Retention RetentionConfig `yaml:"retention"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Default returns the configuration used when no config file is
// present, which is the normal case for the CLI.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir:         filepath.Join(os.TempDir(), "fileforge"),
			MaxUploadSizeMB: 100,
		},
		Limits: LimitsConfig{
			MaxImageDimension: 10000,
			MaxPDFPages:       500,
			MaxRows:           1_000_000,
			MaxColumns:        1000,
		},
		Worker: WorkerConfig{
			MaxConcurrentJobs: 4,
		},
		Retention: RetentionConfig{
			Enabled:                true,
			ExpirySeconds:          3600,
			CleanupIntervalSeconds: 300,
		},
	}
}

// Load reads the YAML config at path, applying defaults for anything
// left unset. A missing file is not an error; it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}
	if c.Storage.MaxUploadSizeMB <= 0 {
		c.Storage.MaxUploadSizeMB = d.Storage.MaxUploadSizeMB
	}
	if c.Limits.MaxImageDimension <= 0 {
		c.Limits.MaxImageDimension = d.Limits.MaxImageDimension
	}
	if c.Limits.MaxPDFPages <= 0 {
		c.Limits.MaxPDFPages = d.Limits.MaxPDFPages
	}
	if c.Limits.MaxRows <= 0 {
		c.Limits.MaxRows = d.Limits.MaxRows
	}
	if c.Limits.MaxColumns <= 0 {
		c.Limits.MaxColumns = d.Limits.MaxColumns
	}
	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = d.Worker.MaxConcurrentJobs
	}
	if c.Retention.ExpirySeconds <= 0 {
		c.Retention.ExpirySeconds = d.Retention.ExpirySeconds
	}
	if c.Retention.CleanupIntervalSeconds <= 0 {
		c.Retention.CleanupIntervalSeconds = d.Retention.CleanupIntervalSeconds
	}
}

// MaxUploadBytes converts the configured upload ceiling to bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadSizeMB) * 1024 * 1024
}
