package live

import (
	"context"
	"fmt"

	"scribe/internal/asr"
	"scribe/internal/modelcache"
	"scribe/internal/protocol"
)

// ModelSpec names the streaming model and where to fetch it.
type ModelSpec struct {
	Name       string
	URL        string
	SampleRate float64
	Words      bool
}

// LoadRecognizer makes sure the model is cached, announcing each lifecycle
// step on em, then loads the recognizer. Download failures are returned
// unwrapped so their message reads "Download failed: ...".
func LoadRecognizer(ctx context.Context, em *protocol.Emitter, cache *modelcache.Cache, spec ModelSpec,
	newRecognizer func(asr.RecognizerOptions) (asr.Recognizer, error)) (asr.Recognizer, error) {
	model := modelcache.Model{Name: spec.Name, URL: spec.URL, Engine: modelcache.EngineVosk, Archive: true}
	if known, ok := modelcache.Lookup(spec.Name); ok {
		model.SizeLabel = known.SizeLabel
		if model.URL == "" {
			model.URL = known.URL
		}
	}

	path, err := cache.Ensure(ctx, model, &eventReporter{em: em})
	if err != nil {
		return nil, err
	}
	if err := asr.CheckVoskModel(path); err != nil {
		return nil, err
	}

	if err := em.Status(protocol.StatusLoading, "Loading Vosk model..."); err != nil {
		return nil, err
	}
	rec, err := newRecognizer(asr.RecognizerOptions{
		ModelPath:  path,
		SampleRate: spec.SampleRate,
		Words:      spec.Words,
	})
	if err != nil {
		return nil, fmt.Errorf("load recognizer: %w", err)
	}
	if err := em.Status(protocol.StatusReady, "Vosk ready!"); err != nil {
		rec.Close()
		return nil, err
	}
	return rec, nil
}

// eventReporter turns cache progress into status events.
type eventReporter struct {
	em *protocol.Emitter
}

func (r *eventReporter) Start(m modelcache.Model) {
	msg := "Downloading Vosk model (one-time)..."
	if m.SizeLabel != "" {
		msg = fmt.Sprintf("Downloading Vosk model (one-time, %s)...", m.SizeLabel)
	}
	_ = r.em.Status(protocol.StatusDownloading, msg)
}

func (r *eventReporter) Progress(p modelcache.Progress) {
	_ = r.em.Status(protocol.StatusDownloading, p.String())
}

func (r *eventReporter) Extracting(modelcache.Model) {
	_ = r.em.Status(protocol.StatusExtracting, "Extracting model...")
}

func (r *eventReporter) Done(modelcache.Model, string) {
	_ = r.em.Status(protocol.StatusReady, "Model ready!")
}
