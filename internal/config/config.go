package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Importer ImporterConfig `yaml:"importer"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxPoolSize    uint64        `yaml:"max_pool_size"`
}

type RedisConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	PoolSize        int    `yaml:"pool_size"`
	ImportQueue     string `yaml:"import_queue"`
	DLQSuffix       string `yaml:"dlq_suffix"`
	ProgressChannel string `yaml:"progress_channel"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ImporterConfig tunes the batched upsert writer and progress reporting.
// The batch size shrinks for larger files so each commit stays well inside
// the hosting environment's execution ceiling.
type ImporterConfig struct {
	BatchSize        int           `yaml:"batch_size"`
	MediumThreshold  int           `yaml:"medium_threshold"`
	MediumBatchSize  int           `yaml:"medium_batch_size"`
	LargeThreshold   int           `yaml:"large_threshold"`
	LargeBatchSize   int           `yaml:"large_batch_size"`
	SubBatchSize     int           `yaml:"sub_batch_size"`
	RetryAttempts    int           `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	InterBatchDelay  time.Duration `yaml:"inter_batch_delay"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	ErrorSampleSize  int           `yaml:"error_sample_size"`
}

type WorkersConfig struct {
	Import ImportWorkerConfig `yaml:"import"`
}

type ImportWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Importer.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills zero values with the constants the original deployment
// was tuned against.
func (c *ImporterConfig) ApplyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 200
	}
	if c.MediumThreshold <= 0 {
		c.MediumThreshold = 10000
	}
	if c.MediumBatchSize <= 0 {
		c.MediumBatchSize = 100
	}
	if c.LargeThreshold <= 0 {
		c.LargeThreshold = 50000
	}
	if c.LargeBatchSize <= 0 {
		c.LargeBatchSize = 50
	}
	if c.SubBatchSize <= 0 {
		c.SubBatchSize = 20
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.InterBatchDelay <= 0 {
		c.InterBatchDelay = 50 * time.Millisecond
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 5 * time.Second
	}
	if c.ErrorSampleSize <= 0 {
		c.ErrorSampleSize = 10
	}
}

// BatchSizeFor returns the batch size for a job of the given total volume.
func (c *ImporterConfig) BatchSizeFor(total int) int {
	switch {
	case total > c.LargeThreshold:
		return c.LargeBatchSize
	case total > c.MediumThreshold:
		return c.MediumBatchSize
	default:
		return c.BatchSize
	}
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
