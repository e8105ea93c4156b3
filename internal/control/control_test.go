package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/capture"
	"scribe/internal/config"
	"scribe/internal/modelcache"
	"scribe/internal/protocol"
)

func testConfigPath(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return filepath.Join(home, ".config", "scribe", "config.toml")
}

func runTranscribe(t *testing.T, args ...string) (protocol.Result, error) {
	t.Helper()
	cfgPath := testConfigPath(t)
	cmd := NewTranscribeCmd(&cfgPath)
	var out bytes.Buffer
	cmd.SetOut(&out)
	// A nil slice would make cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want exactly one output line, got %q", out.String())
	}
	var res protocol.Result
	if jerr := json.Unmarshal([]byte(lines[0]), &res); jerr != nil {
		t.Fatalf("invalid result %q: %v", lines[0], jerr)
	}
	return res, err
}

func exitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestTranscribeWithoutArgument(t *testing.T) {
	res, err := runTranscribe(t)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d (%v)", code, err)
	}
	if res.Success || !strings.HasPrefix(res.Error, "Usage:") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.wav")
	res, err := runTranscribe(t, path)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d (%v)", code, err)
	}
	if res.Error != "Audio file not found: "+path {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestSetModel(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	field, err := setModel(cfg, "vosk-model-small-en-us-0.15")
	if err != nil || field != "live.model_name" {
		t.Fatalf("field=%q err=%v", field, err)
	}
	if cfg.Live.ModelName != "vosk-model-small-en-us-0.15" || cfg.Live.ModelURL != "" {
		t.Fatalf("live not updated: %+v", cfg.Live)
	}

	if field, err := setModel(cfg, "ggml-tiny.en.bin"); err != nil || field != "batch.model" {
		t.Fatalf("field=%q err=%v", field, err)
	}

	custom := filepath.Join(t.TempDir(), "custom.bin")
	if err := os.WriteFile(custom, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := setModel(cfg, custom); err != nil {
		t.Fatalf("custom path: %v", err)
	}
	if cfg.BatchModelPath() != custom {
		t.Fatalf("batch model path = %s", cfg.BatchModelPath())
	}

	// A relative name is pinned to the file that was checked, not model_dir.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	if _, err := setModel(cfg, "local.bin"); err != nil {
		t.Fatalf("relative path: %v", err)
	}
	if !filepath.IsAbs(cfg.Batch.Model) {
		t.Fatalf("stored relative path %q", cfg.Batch.Model)
	}
	want, _ := os.Stat(filepath.Join(dir, "local.bin"))
	got, err := os.Stat(cfg.BatchModelPath())
	if err != nil || !os.SameFile(want, got) {
		t.Fatalf("batch model path %q does not point at the checked file (%v)", cfg.BatchModelPath(), err)
	}

	if _, err := setModel(cfg, "no-such-model"); err == nil {
		t.Fatalf("expected error for unknown model")
	}
}

func TestModelsSetPersists(t *testing.T) {
	cfgPath := testConfigPath(t)
	cmd := NewModelsCmd(&cfgPath)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"set", "vosk-model-en-us-0.22-lgraph"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Live.ModelName != "vosk-model-en-us-0.22-lgraph" {
		t.Fatalf("model not saved: %s", cfg.Live.ModelName)
	}
}

func TestEditCommandsDoNotPersistEnvOverrides(t *testing.T) {
	cfgPath := testConfigPath(t)
	t.Setenv("SCRIBE_METRICS_ADDR", "127.0.0.1:9999")
	t.Setenv("SCRIBE_LOG_LEVEL", "debug")

	for _, args := range [][]string{{"models", "set", "ggml-tiny.bin"}, {"mic", "set", "USB"}} {
		cmd := NewModelsCmd(&cfgPath)
		if args[0] == "mic" {
			cmd = NewMicCmd(&cfgPath)
		}
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(args[1:])
		if err := cmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	saved, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Metrics.Enabled || saved.Metrics.Addr == "127.0.0.1:9999" || saved.Logging.Level != "info" {
		t.Fatalf("env overrides written to file: %+v %+v", saved.Metrics, saved.Logging)
	}
	if saved.Batch.Model != "ggml-tiny.bin" || saved.Audio.DeviceName != "USB" {
		t.Fatalf("edits lost: model=%q mic=%q", saved.Batch.Model, saved.Audio.DeviceName)
	}
}

func TestListModelsMarksLocal(t *testing.T) {
	testConfigPath(t)
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Batch.ModelDir = t.TempDir()
	cfg.Live.ModelDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.Batch.ModelDir, cfg.Batch.Model), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := listModels(&out, cfg); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, cfg.Batch.Model) {
			found = true
			if !strings.Contains(line, "downloaded, configured") {
				t.Fatalf("line %q missing status", line)
			}
		}
		if strings.Contains(line, cfg.Live.ModelName+" ") && strings.Contains(line, "downloaded") {
			t.Fatalf("live model wrongly marked downloaded: %q", line)
		}
	}
	if !found {
		t.Fatalf("configured model not listed:\n%s", out.String())
	}
}

func TestSetupModels(t *testing.T) {
	testConfigPath(t)
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	models := setupModels(cfg)
	if len(models) != 2 {
		t.Fatalf("models = %+v", models)
	}
	if models[0].Engine != modelcache.EngineWhisper || models[1].Engine != modelcache.EngineVosk {
		t.Fatalf("unexpected engines %+v", models)
	}
	if models[1].URL != config.DefaultLiveModelURL || !models[1].Archive {
		t.Fatalf("live model = %+v", models[1])
	}

	cfg.Batch.Model = "/opt/models/custom.bin"
	cfg.Live.ModelName = "vosk-custom"
	cfg.Live.ModelURL = "https://example.com/vosk-custom.zip"
	models = setupModels(cfg)
	if len(models) != 1 || models[0].Name != "vosk-custom" || models[0].URL != cfg.Live.ModelURL {
		t.Fatalf("models = %+v", models)
	}
}

func TestTailFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribe.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n\nthree\nfour\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := tailFile(&out, path, 2); err != nil {
		t.Fatal(err)
	}
	if out.String() != "three\nfour\n" {
		t.Fatalf("tail = %q", out.String())
	}
}

func TestPrintDevices(t *testing.T) {
	var out bytes.Buffer
	if err := printDevices(&out, nil, true); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("json = %q", out.String())
	}
	out.Reset()
	devs := []capture.Device{{Index: 2, Name: "USB Mic", Channels: 1, LatencyMs: 4.5, Default: true}}
	if err := printDevices(&out, devs, false); err != nil {
		t.Fatal(err)
	}
	if out.String() != "[2] USB Mic (default) (in 1 ch, latency 4.50ms)\n" {
		t.Fatalf("text = %q", out.String())
	}
}

func TestTermReporter(t *testing.T) {
	var out bytes.Buffer
	r := newTermReporter(&out)
	m := modelcache.Model{Name: "m", SizeLabel: "~1 MB"}
	r.Start(m)
	r.Progress(modelcache.Progress{Downloaded: 50, Total: 100})
	r.Extracting(m)
	r.Done(m, "/tmp/m")
	want := "downloading m (~1 MB)\n\rDownloading: 50.0%\nextracting m\n\nm ready at /tmp/m\n"
	if out.String() != want {
		t.Fatalf("output = %q", out.String())
	}
}
