package live

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scribe/internal/logging"
	"scribe/internal/protocol"
)

// fakeRecognizer treats each frame as one word; a "." frame ends the
// utterance. FinalResult deliberately keeps pending words so tests can tell
// whether Reset actually discards them.
type fakeRecognizer struct {
	mu      sync.Mutex
	pending []string
	last    string
	resets  int
	closed  bool
}

func (f *fakeRecognizer) AcceptWaveform(frame []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if string(frame) == "." {
		f.last = strings.Join(f.pending, " ")
		f.pending = nil
		return true
	}
	f.pending = append(f.pending, string(frame))
	return false
}

func (f *fakeRecognizer) Result() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeRecognizer) PartialResult() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.pending, " ")
}

func (f *fakeRecognizer) FinalResult() string { return f.PartialResult() }

func (f *fakeRecognizer) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = nil
	f.resets++
	return nil
}

func (f *fakeRecognizer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// syncBuffer is a goroutine-safe output sink.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func parseEvents(t *testing.T, out string) []protocol.Event {
	t.Helper()
	var events []protocol.Event
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var ev protocol.Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("invalid json line %q: %v", sc.Text(), err)
		}
		if !ev.Type.Valid() {
			t.Fatalf("unknown event type in %q", sc.Text())
		}
		events = append(events, ev)
	}
	return events
}

// describe renders events compactly, e.g. "status:listening partial:hi".
func describe(events []protocol.Event) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		switch ev.Type {
		case protocol.TypeStatus:
			parts = append(parts, "status:"+string(ev.Status))
		case protocol.TypeError:
			parts = append(parts, "error:"+ev.Error)
		default:
			parts = append(parts, string(ev.Type)+":"+ev.Text)
		}
	}
	return strings.Join(parts, " ")
}

func newTestSession(rec *fakeRecognizer, out *syncBuffer) *Session {
	em := protocol.NewEmitter(out)
	s := NewSession(rec, em, 10*time.Millisecond, logging.NewTestLogger().WithField("test", true))
	em.Observe(s.metrics.observe)
	return s
}

// pump processes queued frames on the calling goroutine, standing in for Run.
func pump(s *Session) {
	for {
		frame, ok := s.frames.TryPop()
		if !ok {
			return
		}
		s.process(frame)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// writeModelDir lays out the minimum of an unpacked vosk model.
func writeModelDir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "am"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "am", "final.mdl"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}
