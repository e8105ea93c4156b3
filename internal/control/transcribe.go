package control

import (
	"scribe/internal/apperr"
	"scribe/internal/batch"
	"scribe/internal/protocol"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd transcribes one audio file and prints a single JSON
// result line.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:           "transcribe <audio_file_path>",
		Short:         "Transcribe an audio file and print a JSON result",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, logger, err := loadWithLogger(*cfgPath)
			if err != nil {
				if werr := protocol.WriteResult(out, protocol.Failed(apperr.Wrap(apperr.Usage, err, "load config"))); werr != nil {
					return werr
				}
				return &ExitError{Code: 1}
			}
			res, code := batch.New(cfg, logger).Run(cmd.Context(), args)
			if err := protocol.WriteResult(out, res); err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
