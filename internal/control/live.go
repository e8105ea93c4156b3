package control

import (
	"errors"
	"os/signal"
	"syscall"

	"scribe/internal/live"
	"scribe/internal/protocol"

	"github.com/spf13/cobra"
)

// NewLiveCmd runs the streaming session: NDJSON events on stdout, control
// commands on stdin.
func NewLiveCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "live",
		Short:         "Stream microphone transcription as JSON lines",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadWithLogger(*cfgPath)
			if err != nil {
				em := protocol.NewEmitter(cmd.OutOrStdout())
				_ = em.Error(err.Error())
				return &ExitError{Code: 1}
			}
			if v, _ := cmd.Flags().GetBool("paused"); v {
				cfg.Live.AutoStart = false
			}
			if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Addr = addr
			}
			if name, _ := cmd.Flags().GetString("model"); name != "" {
				cfg.Live.ModelName = name
				cfg.Live.ModelURL = ""
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = live.Serve(ctx, cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout(), live.DefaultDeps(cfg, logger))
			var fatal *live.FatalError
			if errors.As(err, &fatal) {
				return &ExitError{Code: 1}
			}
			return err
		},
	}
	cmd.Flags().Bool("paused", false, "wait for a start command before listening")
	cmd.Flags().String("metrics-addr", "", "serve /metrics on this address (Prometheus text)")
	cmd.Flags().String("model", "", "streaming model name from the registry")
	return cmd
}
