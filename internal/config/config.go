// Package config provides unified configuration for the clickstream
// transform job.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for one transform run.
type Config struct {
	// JobName identifies the run in logs and the run summary.
	JobName string `json:"job_name" yaml:"job_name"`

	// SourceBucket is the bucket holding raw input and the quarantine sink.
	SourceBucket string `json:"source_bucket" yaml:"source_bucket"`

	// TargetBucket is the bucket the transformed dataset is written to.
	TargetBucket string `json:"target_bucket" yaml:"target_bucket"`

	// DatabaseName names the catalog manifest consumed by the external
	// cataloging collaborator. The transform writes it but never reads it.
	DatabaseName string `json:"database_name" yaml:"database_name"`

	// SourcePrefix is the object prefix for raw input.
	SourcePrefix string `json:"source_prefix" yaml:"source_prefix"`

	// TargetPrefix is the object prefix for the transformed dataset.
	TargetPrefix string `json:"target_prefix" yaml:"target_prefix"`

	// QuarantinePrefix is the object prefix for corrupt-record output,
	// written to the source bucket.
	QuarantinePrefix string `json:"quarantine_prefix" yaml:"quarantine_prefix"`

	// WorkDir is the local scratch directory for downloads, partition
	// builds and the catalog manifest.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Storage configures the object storage backend.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage root (for local type). Each bucket maps
	// to a subdirectory of Path.
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		JobName:          "clickstream-transform",
		DatabaseName:     "clickstream_analytics",
		SourcePrefix:     "raw/",
		TargetPrefix:     "transformed/",
		QuarantinePrefix: "errors/corrupt_records/",
		WorkDir:          "./data/clickstream",
		Storage: StorageConfig{
			Type: "local",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on WorkDir.
func (c *Config) Resolve() {
	if c.WorkDir == "" {
		c.WorkDir = "./data/clickstream"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.WorkDir, "storage")
	}
	if !strings.HasSuffix(c.SourcePrefix, "/") {
		c.SourcePrefix += "/"
	}
	if !strings.HasSuffix(c.TargetPrefix, "/") {
		c.TargetPrefix += "/"
	}
	if !strings.HasSuffix(c.QuarantinePrefix, "/") {
		c.QuarantinePrefix += "/"
	}
}

// DownloadDir returns the scratch directory for source downloads.
func (c *Config) DownloadDir() string {
	return filepath.Join(c.WorkDir, "downloads")
}

// PartitionDir returns the scratch directory for partition builds.
func (c *Config) PartitionDir() string {
	return filepath.Join(c.WorkDir, "partitions")
}

// CatalogPath returns the path of the catalog manifest database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.WorkDir, c.DatabaseName+".db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.JobName == "" {
		return fmt.Errorf("job_name is required")
	}
	if c.SourceBucket == "" {
		return fmt.Errorf("source_bucket is required")
	}
	if c.TargetBucket == "" {
		return fmt.Errorf("target_bucket is required")
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("database_name is required")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CLICKSTREAM_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CLICKSTREAM_JOB_NAME"); v != "" {
		cfg.JobName = v
	}
	if v := os.Getenv("CLICKSTREAM_SOURCE_BUCKET"); v != "" {
		cfg.SourceBucket = v
	}
	if v := os.Getenv("CLICKSTREAM_TARGET_BUCKET"); v != "" {
		cfg.TargetBucket = v
	}
	if v := os.Getenv("CLICKSTREAM_DATABASE_NAME"); v != "" {
		cfg.DatabaseName = v
	}
	if v := os.Getenv("CLICKSTREAM_SOURCE_PREFIX"); v != "" {
		cfg.SourcePrefix = v
	}
	if v := os.Getenv("CLICKSTREAM_TARGET_PREFIX"); v != "" {
		cfg.TargetPrefix = v
	}
	if v := os.Getenv("CLICKSTREAM_QUARANTINE_PREFIX"); v != "" {
		cfg.QuarantinePrefix = v
	}
	if v := os.Getenv("CLICKSTREAM_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}

	// Storage configuration
	if v := os.Getenv("CLICKSTREAM_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("CLICKSTREAM_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CLICKSTREAM_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("CLICKSTREAM_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("CLICKSTREAM_S3_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}
}

// EnsureDirectories creates all required local directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.WorkDir,
		c.DownloadDir(),
		c.PartitionDir(),
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
