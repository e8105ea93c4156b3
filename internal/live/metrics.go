package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"scribe/internal/protocol"

	"github.com/sirupsen/logrus"
)

type metrics struct {
	captured    atomic.Int64
	dropped     atomic.Int64
	partials    atomic.Int64
	finals      atomic.Int64
	errors      atomic.Int64
	hookDropped atomic.Int64
}

// observe counts emitted events by type.
func (m *metrics) observe(ev protocol.Event) {
	switch ev.Type {
	case protocol.TypePartial:
		m.partials.Add(1)
	case protocol.TypeFinal:
		m.finals.Add(1)
	case protocol.TypeError:
		m.errors.Add(1)
	}
}

func (s *Session) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		listening := 0
		if s.Listening() {
			listening = 1
		}
		fmt.Fprintf(w, "scribe_frames_captured_total %d\n", s.metrics.captured.Load())
		fmt.Fprintf(w, "scribe_frames_dropped_total %d\n", s.metrics.dropped.Load())
		fmt.Fprintf(w, "scribe_frames_queued %d\n", s.frames.Len())
		fmt.Fprintf(w, "scribe_partials_total %d\n", s.metrics.partials.Load())
		fmt.Fprintf(w, "scribe_finals_total %d\n", s.metrics.finals.Load())
		fmt.Fprintf(w, "scribe_errors_total %d\n", s.metrics.errors.Load())
		fmt.Fprintf(w, "scribe_hooks_dropped_total %d\n", s.metrics.hookDropped.Load())
		fmt.Fprintf(w, "scribe_listening %d\n", listening)
	})
	return mux
}

// serveMetrics exposes counters in Prometheus text format until ctx is done.
func (s *Session) serveMetrics(ctx context.Context, addr string, logger *logrus.Entry) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warnf("metrics server: %v", err)
	}
	return nil
}
