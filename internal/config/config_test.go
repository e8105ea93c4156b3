package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("SCRIBE_LOG_LEVEL", "debug")
	t.Setenv("SCRIBE_LOG_FORMAT", "json")
	t.Setenv("SCRIBE_METRICS_ADDR", "1.2.3.4:9999")
	t.Setenv("SCRIBE_POLL_INTERVAL_MS", "250")
	t.Setenv("SCRIBE_LIVE_MODEL", "vosk-model-small-en-us-0.15")

	applyEnvOverrides(cfg)

	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "1.2.3.4:9999" {
		t.Fatalf("metrics override failed: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if cfg.Live.PollIntervalMS != 250 {
		t.Fatalf("poll interval override failed: %d", cfg.Live.PollIntervalMS)
	}
	if cfg.Live.ModelName != "vosk-model-small-en-us-0.15" {
		t.Fatalf("live model override failed: %q", cfg.Live.ModelName)
	}
}

func TestBadPollIntervalIgnored(t *testing.T) {
	cfg, _ := Default()
	t.Setenv("SCRIBE_POLL_INTERVAL_MS", "-5")
	applyEnvOverrides(cfg)
	if cfg.Live.PollIntervalMS != defaultPollMS {
		t.Fatalf("expected default poll interval, got %d", cfg.Live.PollIntervalMS)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Hook.Command = "/bin/echo"
	cfg.Live.PollIntervalMS = 50

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Hook.Command != "/bin/echo" {
		t.Fatalf("expected hook command to persist")
	}
	if loaded.Live.PollIntervalMS != 50 {
		t.Fatalf("expected poll interval to persist, got %d", loaded.Live.PollIntervalMS)
	}
	if loaded.Paths.ConfigPath != path {
		t.Fatalf("config path = %q", loaded.Paths.ConfigPath)
	}
}

func TestLoadWritesTemplateWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if cfg.Live.ModelName != DefaultLiveModel {
		t.Fatalf("unexpected live model %q", cfg.Live.ModelName)
	}
}

func TestModelPaths(t *testing.T) {
	cfg, _ := Default()
	cfg.Batch.ModelDir = "/models"
	cfg.Batch.Model = "ggml-tiny.bin"
	if got := cfg.BatchModelPath(); got != filepath.Join("/models", "ggml-tiny.bin") {
		t.Fatalf("batch model path = %q", got)
	}
	cfg.Batch.Model = filepath.Join("/opt", "ggml-small.bin")
	if got := cfg.BatchModelPath(); got != cfg.Batch.Model {
		t.Fatalf("explicit model path not kept: %q", got)
	}
	cfg.Live.ModelDir = "/cache"
	if got := cfg.LiveModelPath(); got != filepath.Join("/cache", DefaultLiveModel) {
		t.Fatalf("live model path = %q", got)
	}
}

func TestLiveModelOverrideDropsStockURL(t *testing.T) {
	cfg, _ := Default()
	cfg.Live.ModelURL = DefaultLiveModelURL
	t.Setenv("SCRIBE_LIVE_MODEL", "vosk-model-small-en-us-0.15")
	applyEnvOverrides(cfg)
	if cfg.Live.ModelURL != "" || cfg.LiveModelURL() != "" {
		t.Fatalf("stale url kept: %q", cfg.Live.ModelURL)
	}
}

func TestLiveModelURLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	legacy := "[live]\nmodel_name = \"vosk-model-small-en-us-0.15\"\nmodel_url = \"" + DefaultLiveModelURL + "\"\n"
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.LiveModelURL(); got != "" {
		t.Fatalf("stock url applied to another model: %q", got)
	}

	cfg.Live.ModelURL = "https://example.com/custom.zip"
	if got := cfg.LiveModelURL(); got != "https://example.com/custom.zip" {
		t.Fatalf("custom url dropped: %q", got)
	}
	cfg.Live.ModelName = DefaultLiveModel
	cfg.Live.ModelURL = DefaultLiveModelURL
	if got := cfg.LiveModelURL(); got != DefaultLiveModelURL {
		t.Fatalf("stock url for stock model = %q", got)
	}
}

func TestDefaultLeavesLiveURLToRegistry(t *testing.T) {
	cfg, _ := Default()
	if cfg.Live.ModelURL != "" {
		t.Fatalf("default model_url = %q, want empty", cfg.Live.ModelURL)
	}
}

func TestLoadFileSkipsEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("SCRIBE_METRICS_ADDR", "127.0.0.1:1")
	t.Setenv("SCRIBE_LOG_LEVEL", "debug")

	raw, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if raw.Metrics.Enabled || raw.Logging.Level != "info" {
		t.Fatalf("env leaked into file config: %+v %+v", raw.Metrics, raw.Logging)
	}
	withEnv, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !withEnv.Metrics.Enabled || withEnv.Logging.Level != "debug" {
		t.Fatalf("env not applied: %+v %+v", withEnv.Metrics, withEnv.Logging)
	}
}
