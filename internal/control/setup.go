package control

import (
	"fmt"

	"scribe/internal/config"
	"scribe/internal/modelcache"

	"github.com/spf13/cobra"
)

// NewSetupCmd downloads the configured batch and live models if missing.
func NewSetupCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Download the configured whisper and vosk models if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadWithLogger(*cfgPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range setupModels(cfg) {
				c := cacheFor(cfg, m, logger)
				if c.Present(m.Name) {
					fmt.Fprintf(out, "%s already present at %s\n", m.Name, c.Path(m.Name))
					continue
				}
				if _, err := c.Ensure(cmd.Context(), m, newTermReporter(out)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// setupModels resolves the configured models. A batch model given as a path
// outside the registry is skipped; there is nothing to fetch.
func setupModels(cfg *config.Config) []modelcache.Model {
	var out []modelcache.Model
	if m, ok := modelcache.Lookup(cfg.Batch.Model); ok {
		out = append(out, m)
	}
	live, ok := modelcache.Lookup(cfg.Live.ModelName)
	if !ok {
		live = modelcache.Model{Name: cfg.Live.ModelName, Engine: modelcache.EngineVosk, Archive: true}
	}
	if url := cfg.LiveModelURL(); url != "" {
		live.URL = url
	}
	return append(out, live)
}

