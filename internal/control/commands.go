package control

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/doctor"
	"scribe/internal/hook"

	"github.com/spf13/cobra"
)

// NewTailLogCmd tails the main log file (simple last N lines).
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail-log",
		Short: "Show the last log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("lines")
			return tailFile(cmd.OutOrStdout(), cfg.Paths.LogPath, n)
		},
	}
	cmd.Flags().IntP("lines", "n", 50, "number of lines")
	return cmd
}

func tailFile(w io.Writer, path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if n > 0 && len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	for _, l := range kept {
		fmt.Fprintln(w, l)
	}
	return nil
}

// NewTestHookCmd triggers hook manually.
func NewTestHookCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-hook \"some text\"",
		Short: "Send sample text through the hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadWithLogger(*cfgPath)
			if err != nil {
				return err
			}
			r, err := hook.NewRunner(cfg, logger)
			if err != nil {
				return err
			}
			if r == nil {
				return fmt.Errorf("no hook configured; set hook.command in %s", cfg.Paths.ConfigPath)
			}
			job := hook.Job{Text: args[0], Timestamp: time.Now()}
			return r.Run(cmd.Context(), job)
		},
	}
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check engines, models and audio dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if !printResults(cmd.OutOrStdout(), doctor.Run(cfg)) {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
}

func printResults(w io.Writer, results []doctor.Result) bool {
	ok := true
	for _, r := range results {
		status := "ok"
		if !r.Pass {
			status = "fail"
			ok = false
		}
		fmt.Fprintf(w, "%-14s %-4s %s\n", r.Name, status, r.Detail)
	}
	return ok
}
