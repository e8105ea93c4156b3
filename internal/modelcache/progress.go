package modelcache

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Progress is a snapshot of a running download. Total is zero when the
// server did not announce a length.
type Progress struct {
	Downloaded int64
	Total      int64
}

// Percent returns completion in [0,100], or -1 when Total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	pct := float64(p.Downloaded) / float64(p.Total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (p Progress) String() string {
	if pct := p.Percent(); pct >= 0 {
		return fmt.Sprintf("Downloading: %.1f%%", pct)
	}
	return fmt.Sprintf("Downloading: %s", humanize.Bytes(uint64(p.Downloaded)))
}

// Reporter receives the lifecycle of a cache fill. Calls arrive from the
// goroutine running Ensure, in order: Start, Progress..., Extracting (archives
// only), Done.
type Reporter interface {
	Start(m Model)
	Progress(p Progress)
	Extracting(m Model)
	Done(m Model, path string)
}

// NopReporter ignores every callback.
type NopReporter struct{}

func (NopReporter) Start(Model)        {}
func (NopReporter) Progress(Progress)  {}
func (NopReporter) Extracting(Model)   {}
func (NopReporter) Done(Model, string) {}

const unknownSizeStep = 5 << 20

// progressWriter counts bytes and forwards throttled updates: one per tenth
// of a percent when the size is known, otherwise one per unknownSizeStep.
type progressWriter struct {
	p        Progress
	report   func(Progress)
	lastTick int64
}

func (w *progressWriter) Write(b []byte) (int, error) {
	w.p.Downloaded += int64(len(b))
	var tick int64
	if w.p.Total > 0 {
		tick = int64(w.p.Percent() * 10)
	} else {
		tick = w.p.Downloaded / unknownSizeStep
	}
	if tick > w.lastTick {
		w.lastTick = tick
		w.report(w.p)
	}
	return len(b), nil
}
