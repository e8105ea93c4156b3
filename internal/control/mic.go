package control

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"scribe/internal/capture"
	"scribe/internal/config"

	"github.com/spf13/cobra"
)

// NewMicCmd groups mic subcommands.
func NewMicCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mic",
		Aliases: []string{"microphone", "mics"},
		Short:   "Microphone management",
	}
	cmd.AddCommand(newMicListCmd())
	cmd.AddCommand(newMicSetCmd(cfgPath))
	return cmd
}

func newMicListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available microphones",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			devs, err := capture.Devices()
			if err != nil {
				return err
			}
			return printDevices(cmd.OutOrStdout(), devs, jsonOut)
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func printDevices(w io.Writer, devs []capture.Device, jsonOut bool) error {
	if jsonOut {
		if devs == nil {
			devs = []capture.Device{}
		}
		return json.NewEncoder(w).Encode(devs)
	}
	for _, d := range devs {
		defMark := ""
		if d.Default {
			defMark = " (default)"
		}
		fmt.Fprintf(w, "[%d] %s%s (in %d ch, latency %.2fms)\n", d.Index, d.Name, defMark, d.Channels, d.LatencyMs)
	}
	if len(devs) == 0 && runtime.GOOS == "darwin" {
		fmt.Fprintln(w, "tip: if no devices appear, install PortAudio: brew install portaudio")
	}
	return nil
}

func newMicSetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Set microphone device name in config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(*cfgPath)
			if err != nil {
				return err
			}
			cfg.Audio.DeviceName = args[0]
			if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mic set to %q in %s\n", args[0], cfg.Paths.ConfigPath)
			return nil
		},
	}
}
