// Package control holds the cobra subcommands behind the scribe binary.
package control

import (
	"fmt"
	"os"

	"scribe/internal/config"
	"scribe/internal/logging"

	"github.com/sirupsen/logrus"
)

// ExitError asks main to exit with Code without printing anything; the
// command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// loadWithLogger loads config and configures logging. A logging setup
// failure falls back to stderr so protocol commands still answer on stdout.
func loadWithLogger(cfgPath string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Configure(cfg)
	if err != nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.Warnf("logging setup failed, using stderr: %v", err)
	}
	return cfg, logger, nil
}
