package live

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"scribe/internal/apperr"
	"scribe/internal/asr"
	"scribe/internal/capture"
	"scribe/internal/config"
	"scribe/internal/hook"
	"scribe/internal/modelcache"
	"scribe/internal/protocol"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Deps are the engine and device constructors. Defaults come from
// DefaultDeps; tests substitute fakes.
type Deps struct {
	NewRecognizer func(asr.RecognizerOptions) (asr.Recognizer, error)
	OpenCapture   func(capture.Options, capture.FrameFunc, capture.ErrorFunc) (capture.Stream, error)
	Cache         *modelcache.Cache
}

// DefaultDeps uses vosk, PortAudio and the configured model directory.
func DefaultDeps(cfg *config.Config, logger *logrus.Logger) Deps {
	return Deps{
		NewRecognizer: asr.NewRecognizer,
		OpenCapture:   capture.Open,
		Cache:         modelcache.New(os.ExpandEnv(cfg.Live.ModelDir), logger),
	}
}

// FatalError marks a failure already reported as an error event.
type FatalError struct{ Err error }

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Serve runs a full session: model preparation, capture, the command reader,
// the optional hook worker and metrics endpoint, and the recognition loop.
// It returns nil on a clean exit (interrupt, exit command, stdin EOF) and a
// *FatalError otherwise.
func Serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger, stdin io.Reader, stdout io.Writer, deps Deps) error {
	em := protocol.NewEmitter(stdout)
	entry := logger.WithField("session", uuid.NewString())

	fatal := func(err error) error {
		entry.WithField("kind", apperr.KindOf(err)).Errorf("fatal: %v", err)
		_ = em.Error(err.Error())
		return &FatalError{Err: err}
	}

	rec, err := LoadRecognizer(ctx, em, deps.Cache, ModelSpec{
		Name:       cfg.Live.ModelName,
		URL:        cfg.LiveModelURL(),
		SampleRate: float64(cfg.Audio.SampleRate),
		Words:      cfg.Live.Words,
	}, deps.NewRecognizer)
	if err != nil {
		return fatal(err)
	}
	defer rec.Close()

	sess := NewSession(rec, em, time.Duration(cfg.Live.PollIntervalMS)*time.Millisecond, entry)

	var finals chan hook.Job
	runner, err := hook.NewRunner(cfg, logger)
	if err != nil {
		return fatal(err)
	}
	if runner != nil {
		finals = make(chan hook.Job, max(1, cfg.Hook.QueueSize))
	}
	em.Observe(func(ev protocol.Event) {
		sess.metrics.observe(ev)
		if finals == nil || ev.Type != protocol.TypeFinal {
			return
		}
		select {
		case finals <- hook.Job{Text: ev.Text, Timestamp: time.Now()}:
		default:
			sess.metrics.hookDropped.Add(1)
			entry.Warn("hook queue full, dropping transcript")
		}
	})

	stream, err := deps.OpenCapture(capture.Options{
		DeviceName: cfg.Audio.DeviceName,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		BlockSize:  cfg.Audio.BlockSize,
	}, sess.OnFrame, sess.OnCaptureError)
	if err != nil {
		return fatal(err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			entry.Warnf("close capture: %v", err)
		}
	}()
	if err := stream.Start(); err != nil {
		return fatal(err)
	}

	// The stdin reader blocks in Read and cannot be cancelled, so it stays
	// outside the group.
	go ReadCommands(stdin, sess, cfg.Live.ExitOnEOF)

	g, gctx := errgroup.WithContext(ctx)
	workCtx, stopWorkers := context.WithCancel(gctx)
	if runner != nil {
		g.Go(func() error {
			runner.Worker(workCtx, finals)
			return nil
		})
	}
	if cfg.Metrics.Enabled {
		g.Go(func() error { return sess.serveMetrics(workCtx, cfg.Metrics.Addr, entry) })
	}
	g.Go(func() error {
		defer stopWorkers()
		return sess.Run(gctx, cfg.Live.AutoStart)
	})
	if err := g.Wait(); err != nil {
		return fatal(fmt.Errorf("session: %w", err))
	}
	entry.Info("session ended")
	return nil
}
