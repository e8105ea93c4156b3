package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultBatchModel    = "ggml-base.bin"
	DefaultLiveModel     = "vosk-model-en-us-0.22"
	DefaultLiveModelURL  = "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22.zip"
	defaultPollMS        = 100
	defaultBlockSize     = 8000
	defaultStateDirLinux = ".local/state/scribe"
	defaultConfigDir     = ".config/scribe"
	defaultVoskDir       = ".vosk_models"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Audio struct {
		DeviceName string `toml:"device_name"`
		SampleRate int    `toml:"sample_rate"`
		Channels   int    `toml:"channels"`
		BlockSize  int    `toml:"block_size"` // frames per capture callback
	} `toml:"audio"`

	Batch struct {
		Model             string  `toml:"model"`
		ModelDir          string  `toml:"model_dir"`
		Language          string  `toml:"language"`
		Temperature       float64 `toml:"temperature"`
		Threads           int     `toml:"threads"`
		TrimSilence       bool    `toml:"trim_silence"`
		VADAggressiveness int     `toml:"vad_aggressiveness"`
	} `toml:"batch"`

	Live struct {
		ModelName      string `toml:"model_name"`
		ModelURL       string `toml:"model_url"` // empty: registry URL for model_name
		ModelDir       string `toml:"model_dir"`
		PollIntervalMS int    `toml:"poll_interval_ms"`
		Words          bool   `toml:"words"`
		AutoStart      bool   `toml:"auto_start"`
		ExitOnEOF      bool   `toml:"exit_on_eof"`
	} `toml:"live"`

	Hook struct {
		Command     string            `toml:"command"`
		Args        string            `toml:"args"` // shell-style, split with shlex
		TimeoutSec  float64           `toml:"timeout_sec"`
		CooldownSec float64           `toml:"cooldown_sec"`
		QueueSize   int               `toml:"queue_size"`
		Env         map[string]string `toml:"env"`
	} `toml:"hook"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stderr bool   `toml:"stderr"`
	} `toml:"logging"`

	Paths struct {
		StateDir   string `toml:"state_dir"`
		LogPath    string `toml:"log_path"`
		ConfigPath string `toml:"-"`
	} `toml:"paths"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/scribe for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "scribe")
	}

	cfg := &Config{}

	cfg.Audio.SampleRate = 16000
	cfg.Audio.Channels = 1
	cfg.Audio.BlockSize = defaultBlockSize

	cfg.Batch.Model = DefaultBatchModel
	cfg.Batch.ModelDir = filepath.Join(stateDir, "models")
	cfg.Batch.Language = "en"
	cfg.Batch.Temperature = 0
	cfg.Batch.Threads = runtime.NumCPU()
	cfg.Batch.TrimSilence = false
	cfg.Batch.VADAggressiveness = 2

	cfg.Live.ModelName = DefaultLiveModel
	cfg.Live.ModelURL = ""
	cfg.Live.ModelDir = filepath.Join(home, defaultVoskDir)
	cfg.Live.PollIntervalMS = defaultPollMS
	cfg.Live.Words = true
	cfg.Live.AutoStart = true
	cfg.Live.ExitOnEOF = true

	cfg.Hook.TimeoutSec = 5
	cfg.Hook.CooldownSec = 0
	cfg.Hook.QueueSize = 16
	cfg.Hook.Env = map[string]string{}

	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = "127.0.0.1:9318"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "scribe.log")

	return cfg, nil
}

// Load loads config from file, applying defaults and SCRIBE_* overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFile is Load without env overrides. Commands that edit and Save the
// config use it so overrides are not persisted.
func LoadFile(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// BatchModelPath is the on-disk location of the whisper model file.
func (c *Config) BatchModelPath() string {
	if strings.ContainsRune(c.Batch.Model, filepath.Separator) {
		return os.ExpandEnv(c.Batch.Model)
	}
	return filepath.Join(os.ExpandEnv(c.Batch.ModelDir), c.Batch.Model)
}

// LiveModelPath is the directory holding the unpacked streaming model.
func (c *Config) LiveModelPath() string {
	return filepath.Join(os.ExpandEnv(c.Live.ModelDir), c.Live.ModelName)
}

// LiveModelURL is the explicit download URL for the streaming model, or ""
// to resolve it from the model registry. The stock URL only applies to the
// stock model, so configs written before model_url could be left empty do
// not fetch the wrong archive under a new model name.
func (c *Config) LiveModelURL() string {
	if c.Live.ModelURL == DefaultLiveModelURL && c.Live.ModelName != DefaultLiveModel {
		return ""
	}
	return c.Live.ModelURL
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath)} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCRIBE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCRIBE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SCRIBE_BATCH_MODEL"); v != "" {
		cfg.Batch.Model = v
	}
	if v := os.Getenv("SCRIBE_LIVE_MODEL"); v != "" {
		cfg.Live.ModelName = v
		cfg.Live.ModelURL = ""
	}
	if v := os.Getenv("SCRIBE_MODEL_DIR"); v != "" {
		cfg.Live.ModelDir = v
	}
	if v := os.Getenv("SCRIBE_POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Live.PollIntervalMS = ms
		}
	}
	if v := os.Getenv("SCRIBE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}
