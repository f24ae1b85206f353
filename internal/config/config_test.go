package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
app:
  name: "grade-import-service"
  version: "1.0.0"
  env: "test"

server:
  port: 8081
  read_timeout: 30s
  write_timeout: 60s
  shutdown_timeout: 10s

mongo:
  uri: "mongodb://localhost:27017"
  database: "school_admin_test"
  connect_timeout: 5s
  max_pool_size: 5

redis:
  host: "localhost"
  port: 6380
  import_queue: "grade_import_queue"
  dlq_suffix: "_dlq"
  progress_channel: "grade_import_progress"

importer:
  batch_size: 100
  retry_attempts: 2

logging:
  level: "debug"
  format: "console"
`

func loadSample(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadSample(t)

	if cfg.App.Name != "grade-import-service" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "school_admin_test" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.RedisAddr() != "localhost:6380" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr())
	}
}

func TestLoadAppliesImporterDefaults(t *testing.T) {
	cfg := loadSample(t)

	// Explicit values survive.
	if cfg.Importer.BatchSize != 100 {
		t.Errorf("BatchSize = %d", cfg.Importer.BatchSize)
	}
	if cfg.Importer.RetryAttempts != 2 {
		t.Errorf("RetryAttempts = %d", cfg.Importer.RetryAttempts)
	}

	// Omitted values get the tuned defaults.
	if cfg.Importer.SubBatchSize != 20 {
		t.Errorf("SubBatchSize = %d", cfg.Importer.SubBatchSize)
	}
	if cfg.Importer.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v", cfg.Importer.RetryDelay)
	}
	if cfg.Importer.InterBatchDelay != 50*time.Millisecond {
		t.Errorf("InterBatchDelay = %v", cfg.Importer.InterBatchDelay)
	}
	if cfg.Importer.ProgressInterval != 5*time.Second {
		t.Errorf("ProgressInterval = %v", cfg.Importer.ProgressInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBatchSizeFor(t *testing.T) {
	cfg := ImporterConfig{}
	cfg.ApplyDefaults()

	tests := []struct {
		total int
		want  int
	}{
		{1, 200},
		{10000, 200},
		{10001, 100},
		{50000, 100},
		{50001, 50},
	}
	for _, tt := range tests {
		if got := cfg.BatchSizeFor(tt.total); got != tt.want {
			t.Errorf("BatchSizeFor(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
