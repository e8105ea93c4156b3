// Package batch transcribes a single audio file and reports the outcome as
// one protocol.Result.
package batch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"scribe/internal/apperr"
	"scribe/internal/asr"
	"scribe/internal/audio"
	"scribe/internal/config"
	"scribe/internal/modelcache"
	"scribe/internal/protocol"

	"github.com/sirupsen/logrus"
)

// Usage is reported when no file argument is given.
const Usage = "Usage: scribe transcribe <audio_file_path>"

// Invoker runs one transcription. The function fields default to the real
// engine and WAV reader and are replaced in tests.
type Invoker struct {
	cfg    *config.Config
	logger *logrus.Logger
	models *modelcache.Cache

	NewTranscriber func(asr.TranscriberOptions) (asr.Transcriber, error)
	ReadAudio      func(path string) ([]float32, error)
}

// New returns an Invoker for cfg.
func New(cfg *config.Config, logger *logrus.Logger) *Invoker {
	return &Invoker{
		cfg:            cfg,
		logger:         logger,
		models:         modelcache.New(os.ExpandEnv(cfg.Batch.ModelDir), logger),
		NewTranscriber: asr.NewTranscriber,
		ReadAudio:      audio.ReadWAV,
	}
}

// Run validates args and transcribes args[0]. It returns the result to print
// and the process exit code: 1 for usage and missing-file errors, 0 otherwise,
// including caught engine failures.
func (inv *Invoker) Run(ctx context.Context, args []string) (protocol.Result, int) {
	if len(args) < 1 || strings.TrimSpace(args[0]) == "" {
		return protocol.Failed(apperr.New(apperr.Usage, Usage)), 1
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return protocol.Failed(apperr.New(apperr.NotFound, "Audio file not found: %s", path)), 1
	}

	text, err := inv.transcribe(ctx, path)
	if err != nil {
		inv.logger.WithField("kind", apperr.KindOf(err)).Errorf("transcribe %s: %v", path, err)
		return protocol.Failed(err), 0
	}
	return protocol.Succeeded(strings.TrimSpace(text)), 0
}

func (inv *Invoker) transcribe(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = apperr.New(apperr.Transcription, "transcription panicked: %v", p)
		}
	}()

	samples, err := inv.ReadAudio(path)
	if err != nil {
		return "", apperr.Wrap(apperr.Transcription, err, "read audio")
	}
	if inv.cfg.Batch.TrimSilence {
		trimmed, err := audio.TrimSilence(samples, inv.cfg.Batch.VADAggressiveness)
		if err != nil {
			inv.logger.Warnf("trim silence: %v", err)
		} else {
			inv.logger.Debugf("trimmed %d -> %d samples", len(samples), len(trimmed))
			samples = trimmed
		}
	}

	modelPath, err := inv.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	eng, err := inv.NewTranscriber(asr.TranscriberOptions{
		ModelPath:   modelPath,
		Language:    inv.cfg.Batch.Language,
		Temperature: float32(inv.cfg.Batch.Temperature),
		Threads:     inv.cfg.Batch.Threads,
	})
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			inv.logger.Warnf("close transcriber: %v", cerr)
		}
	}()

	inv.logger.Infof("transcribing %s (%d samples) with %s", path, len(samples), modelPath)
	return eng.Transcribe(ctx, samples)
}

// ensureModel downloads a registered whisper model on first use. Paths that
// are not in the registry must already exist.
func (inv *Invoker) ensureModel(ctx context.Context) (string, error) {
	path := inv.cfg.BatchModelPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	m, ok := modelcache.Lookup(inv.cfg.Batch.Model)
	if !ok {
		return "", apperr.New(apperr.Transcription, "model not found: %s", path)
	}
	got, err := inv.models.Ensure(ctx, m, logReporter{inv.logger})
	if err != nil {
		return "", fmt.Errorf("fetch model %s: %w", m.Name, err)
	}
	return got, nil
}

// logReporter sends download progress to the log; stdout is reserved for
// the single result line.
type logReporter struct {
	logger *logrus.Logger
}

func (r logReporter) Start(m modelcache.Model) {
	r.logger.Infof("downloading %s (%s)", m.Name, m.SizeLabel)
}

func (r logReporter) Progress(p modelcache.Progress) {
	r.logger.Debug(p.String())
}

func (r logReporter) Extracting(m modelcache.Model) {
	r.logger.Infof("extracting %s", m.Name)
}

func (r logReporter) Done(m modelcache.Model, path string) {
	r.logger.Infof("model ready at %s", path)
}
