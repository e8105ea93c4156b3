package main

import (
	"errors"
	"fmt"
	"os"

	"scribe/internal/control"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		var exit *control.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "scribe",
		Short: "Scribe: local speech-to-text for a host process",
		Long: `Scribe transcribes speech locally and talks JSON on stdout.

Key commands:
  transcribe <file>         One-shot whisper.cpp transcription, one JSON result line
  live                      Vosk streaming session, NDJSON events; start/stop/exit on stdin
  models list|download|set  Manage whisper and vosk models
  setup                     Download the configured models
  mic list|set              Select microphone (alias: microphone, mics)
  doctor                    Check engines, models and PortAudio

Env overrides: SCRIBE_LOG_LEVEL/FORMAT, SCRIBE_BATCH_MODEL, SCRIBE_LIVE_MODEL,
               SCRIBE_MODEL_DIR, SCRIBE_POLL_INTERVAL_MS, SCRIBE_METRICS_ADDR`,
		Example: `  scribe transcribe recording.wav
  echo stop | scribe live
  scribe live --paused --metrics-addr 127.0.0.1:9318
  scribe models download vosk-model-small-en-us-0.15
  scribe models set ggml-small.bin
  scribe mic set "USB Audio"`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("Scribe v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/scribe/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewLiveCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))
	root.AddCommand(control.NewSetupCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))

	applyColorHelp(root)

	return root.Execute()
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%sScribe%s: local speech-to-text %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sJSON on stdout, logs to file, models downloaded on first use.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  scribe [command] [flags]\n\n")

		write("%sKey commands%s\n", bold, reset)
		writeln("  transcribe <file>          one JSON result line; exit 1 on usage/missing file")
		writeln("  live                       NDJSON status/partial/final/error events")
		writeln("  models list|download|set   manage whisper and vosk models")
		writeln("  setup                      download configured models")
		writeln("  mic list|set               select input device (alias: microphone, mics)")
		writeln("  doctor                     check engines/models/portaudio")
		writeln("  tail-log                   show last log lines")
		writeln("  test-hook \"text\"           invoke hook manually")
		writeln("")

		write("%sLive session commands (stdin)%s\n", bold, reset)
		writeln("  start | stop | exit        or {\"command\":\"start\"}")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  -c, --config <path>     config file (default ~/.config/scribe/config.toml)")
		writeln("  live --paused           wait for start before listening")
		writeln("  live --metrics-addr     enable /metrics (Prometheus)")
		writeln("  Env: SCRIBE_LOG_LEVEL=debug, SCRIBE_LOG_FORMAT=json,")
		writeln("       SCRIBE_MODEL_DIR=~/.vosk_models, SCRIBE_METRICS_ADDR=host:port")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
