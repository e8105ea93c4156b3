package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"scribe/internal/asr"
	"scribe/internal/capture"
	"scribe/internal/config"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	whisperOK, voskOK := asr.Built()
	return []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkEngine("whisper", whisperOK),
		checkEngine("vosk", voskOK),
		checkModel("batch model", cfg.BatchModelPath()),
		checkModel("live model", cfg.LiveModelPath()),
		checkHookExecutable(cfg.Hook.Command),
		checkPortAudioPkgConfig(),
		checkInputDevices(capture.Devices),
	}
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

// checkModel is checkFile with a hint; missing models are downloaded on
// first use, so the detail points at setup rather than failing hard.
func checkModel(label, path string) Result {
	r := checkFile(label, path)
	if !r.Pass {
		r.Detail = fmt.Sprintf("%s missing (run: scribe setup)", path)
	}
	return r
}

func checkEngine(name string, built bool) Result {
	label := name + " engine"
	if !built {
		return Result{Name: label, Pass: false, Detail: fmt.Sprintf("not compiled in (go build -tags %s)", name)}
	}
	return Result{Name: label, Pass: true, Detail: "compiled in"}
}

func checkHookExecutable(cmd string) Result {
	label := "hook.command"
	if cmd == "" {
		return Result{Name: label, Pass: true, Detail: "not set (finals are not forwarded)"}
	}
	path := os.ExpandEnv(cmd)
	// If contains a path separator, treat as explicit path.
	if strings.Contains(path, "/") || strings.Contains(path, "\\") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; set hook.command to an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Else search PATH.
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkPortAudioPkgConfig() Result {
	pkg, err := exec.LookPath("pkg-config")
	if err != nil {
		return Result{Name: "pkg-config", Pass: false, Detail: "pkg-config not found"}
	}
	cmd := exec.Command(pkg, "--exists", "portaudio-2.0")
	if err := cmd.Run(); err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: "portaudio-2.0 not found (install portaudio19-dev or brew install portaudio)"}
	}
	versionCmd := exec.Command(pkg, "--modversion", "portaudio-2.0")
	if out, err := versionCmd.Output(); err == nil {
		return Result{Name: "portaudio", Pass: true, Detail: strings.TrimSpace(string(out))}
	}
	return Result{Name: "portaudio", Pass: true, Detail: "found via pkg-config"}
}

func checkInputDevices(list func() ([]capture.Device, error)) Result {
	label := "microphone"
	devs, err := list()
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	if len(devs) == 0 {
		return Result{Name: label, Pass: false, Detail: "no input devices found"}
	}
	for _, d := range devs {
		if d.Default {
			return Result{Name: label, Pass: true, Detail: fmt.Sprintf("%d input devices, default %q", len(devs), d.Name)}
		}
	}
	return Result{Name: label, Pass: true, Detail: fmt.Sprintf("%d input devices", len(devs))}
}
