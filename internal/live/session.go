// Package live runs a streaming transcription session: a capture callback
// feeds a FIFO, and a single loop drains it into the recognizer and emits
// partial and final events.
package live

import (
	"context"
	"sync/atomic"
	"time"

	"scribe/internal/asr"
	"scribe/internal/protocol"
	"scribe/internal/queue"

	"github.com/sirupsen/logrus"
)

const defaultPoll = 100 * time.Millisecond

// Session owns the recognizer and the listening state. Only the goroutine
// running Run touches the recognizer; other goroutines talk to it through
// Submit and the capture callbacks.
type Session struct {
	rec     asr.Recognizer
	emit    *protocol.Emitter
	logger  *logrus.Entry
	frames  *queue.Queue[[]byte]
	poll    time.Duration
	metrics *metrics

	listening atomic.Bool
	exit      atomic.Bool

	commands chan protocol.Command
	done     chan struct{}
}

// NewSession wires a loaded recognizer to an emitter. A poll of zero uses
// 100ms.
func NewSession(rec asr.Recognizer, emit *protocol.Emitter, poll time.Duration, logger *logrus.Entry) *Session {
	if poll <= 0 {
		poll = defaultPoll
	}
	return &Session{
		rec:      rec,
		emit:     emit,
		logger:   logger,
		frames:   queue.New[[]byte](),
		poll:     poll,
		metrics:  &metrics{},
		commands: make(chan protocol.Command, 8),
		done:     make(chan struct{}),
	}
}

// Listening reports whether captured audio is being queued.
func (s *Session) Listening() bool { return s.listening.Load() }

// OnFrame is the capture callback. It never blocks: frames are queued while
// listening and dropped otherwise.
func (s *Session) OnFrame(frame []byte) {
	s.metrics.captured.Add(1)
	if !s.listening.Load() {
		s.metrics.dropped.Add(1)
		return
	}
	s.frames.Push(frame)
}

// OnCaptureError reports a device condition without stopping capture.
func (s *Session) OnCaptureError(err error) {
	s.logger.Warnf("capture: %v", err)
	s.sendError(err.Error())
}

// Submit queues a command for the loop. It returns false once the session
// has finished.
func (s *Session) Submit(cmd protocol.Command) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.commands <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// Run processes frames and commands until ctx is cancelled or an exit is
// requested, then stops listening. A poll timeout is the exit-check point.
func (s *Session) Run(ctx context.Context, autoStart bool) error {
	defer close(s.done)
	if autoStart {
		s.StartListening()
	}
	for !s.exit.Load() {
		select {
		case <-ctx.Done():
			s.logger.Info("interrupted")
			s.StopListening()
			return nil
		case cmd := <-s.commands:
			s.apply(cmd)
			continue
		default:
		}
		frame, ok := s.frames.Pop(ctx, s.poll)
		if !ok {
			continue
		}
		s.process(frame)
	}
	s.StopListening()
	return nil
}

func (s *Session) apply(cmd protocol.Command) {
	s.logger.Debugf("command: %s", cmd)
	switch cmd {
	case protocol.CmdStart:
		s.StartListening()
	case protocol.CmdStop:
		s.StopListening()
	case protocol.CmdExit:
		s.exit.Store(true)
	}
}

// StartListening resets the recognizer and begins queueing audio. It is a
// no-op while already listening. Loop goroutine only.
func (s *Session) StartListening() {
	if s.listening.Load() {
		return
	}
	// Frames that raced past the last stop belong to the old utterance.
	s.frames.Drain()
	if err := s.rec.Reset(); err != nil {
		s.logger.Errorf("reset recognizer: %v", err)
		s.sendError(err.Error())
		return
	}
	s.listening.Store(true)
	s.sendStatus(protocol.StatusListening, "Listening...")
}

// StopListening stops queueing, feeds frames already queued, flushes the
// recognizer and emits any pending text as final. It is a no-op while not
// listening. Loop goroutine only.
func (s *Session) StopListening() {
	if !s.listening.Load() {
		return
	}
	s.listening.Store(false)
	for _, frame := range s.frames.Drain() {
		s.process(frame)
	}
	if text := s.rec.FinalResult(); text != "" {
		s.sendFinal(text)
	}
	s.sendStatus(protocol.StatusStopped, "Stopped listening")
}

func (s *Session) process(frame []byte) {
	if s.rec.AcceptWaveform(frame) {
		if text := s.rec.Result(); text != "" {
			s.sendFinal(text)
		}
		return
	}
	if text := s.rec.PartialResult(); text != "" {
		s.sendPartial(text)
	}
}

// A failed write means the host closed our stdout; nothing more can be
// delivered, so the session winds down.
func (s *Session) check(err error) {
	if err != nil {
		s.logger.Errorf("emit: %v", err)
		s.exit.Store(true)
	}
}

func (s *Session) sendStatus(st protocol.Status, msg string) { s.check(s.emit.Status(st, msg)) }
func (s *Session) sendPartial(text string)                  { s.check(s.emit.Partial(text)) }
func (s *Session) sendFinal(text string)                    { s.check(s.emit.Final(text)) }
func (s *Session) sendError(msg string)                     { s.check(s.emit.Error(msg)) }
