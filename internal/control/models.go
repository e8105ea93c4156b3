package control

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"scribe/internal/config"
	"scribe/internal/modelcache"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewModelsCmd wires up the models subcommands (list/download/set).
func NewModelsCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List/download/set whisper and vosk models",
	}
	cmd.AddCommand(newModelsListCmd(cfgPath))
	cmd.AddCommand(newModelsDownloadCmd(cfgPath))
	cmd.AddCommand(newModelsSetCmd(cfgPath))
	return cmd
}

// cacheFor returns the cache directory the engine of m reads from.
func cacheFor(cfg *config.Config, m modelcache.Model, logger *logrus.Logger) *modelcache.Cache {
	dir := cfg.Batch.ModelDir
	if m.Engine == modelcache.EngineVosk {
		dir = cfg.Live.ModelDir
	}
	return modelcache.New(os.ExpandEnv(dir), logger)
}

func newModelsListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and those present locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return listModels(cmd.OutOrStdout(), cfg)
		},
	}
}

func listModels(w io.Writer, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENGINE\tMODEL\tSIZE\tSTATUS")
	for _, m := range modelcache.All() {
		var status string
		if cacheFor(cfg, m, nil).Present(m.Name) {
			status = "downloaded"
		}
		if m.Name == cfg.Batch.Model || m.Name == cfg.Live.ModelName {
			if status != "" {
				status += ", "
			}
			status += "configured"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Engine, m.Name, m.SizeLabel, status)
	}
	return tw.Flush()
}

func newModelsDownloadCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadWithLogger(*cfgPath)
			if err != nil {
				return err
			}
			m, ok := modelcache.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown model %q; run models list", args[0])
			}
			_, err = cacheFor(cfg, m, logger).Ensure(cmd.Context(), m, newTermReporter(cmd.OutOrStdout()))
			return err
		},
	}
}

func newModelsSetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <model-name-or-path>",
		Short: "Select the batch or live model in config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(*cfgPath)
			if err != nil {
				return err
			}
			field, err := setModel(cfg, args[0])
			if err != nil {
				return err
			}
			if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", field, modelValue(cfg, field), cfg.Paths.ConfigPath)
			return nil
		},
	}
}

func modelValue(cfg *config.Config, field string) string {
	if field == "live.model_name" {
		return cfg.Live.ModelName
	}
	return cfg.Batch.Model
}

// setModel points the matching config section at val and returns the
// key it changed. Unregistered values must be an existing whisper model file.
func setModel(cfg *config.Config, val string) (string, error) {
	if m, ok := modelcache.Lookup(val); ok {
		if m.Engine == modelcache.EngineVosk {
			cfg.Live.ModelName = m.Name
			cfg.Live.ModelURL = ""
			return "live.model_name", nil
		}
		cfg.Batch.Model = m.Name
		return "batch.model", nil
	}
	path, err := filepath.Abs(os.ExpandEnv(val))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("unknown model %q and no such file", val)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory; use a registered vosk model name", val)
	}
	cfg.Batch.Model = path
	return "batch.model", nil
}

// termReporter prints download progress on one rewritten terminal line.
type termReporter struct {
	w io.Writer
}

func newTermReporter(w io.Writer) *termReporter { return &termReporter{w: w} }

func (r *termReporter) Start(m modelcache.Model) {
	fmt.Fprintf(r.w, "downloading %s (%s)\n", m.Name, m.SizeLabel)
}

func (r *termReporter) Progress(p modelcache.Progress) {
	fmt.Fprintf(r.w, "\r%s", p)
}

func (r *termReporter) Extracting(m modelcache.Model) {
	fmt.Fprintf(r.w, "\nextracting %s\n", m.Name)
}

func (r *termReporter) Done(m modelcache.Model, path string) {
	fmt.Fprintf(r.w, "\n%s ready at %s\n", m.Name, path)
}
