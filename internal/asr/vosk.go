//go:build vosk

package asr

import (
	"fmt"

	"scribe/internal/apperr"

	vosk "github.com/alphacep/vosk-api/go"
)

const voskBuilt = true

type voskRecognizer struct {
	opts  RecognizerOptions
	model *vosk.VoskModel
	rec   *vosk.VoskRecognizer
}

func newVoskRecognizer(opts RecognizerOptions) (Recognizer, error) {
	if err := CheckVoskModel(opts.ModelPath); err != nil {
		return nil, err
	}
	vosk.SetLogLevel(-1)
	model, err := vosk.NewModel(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load vosk model %s: %w", opts.ModelPath, err)
	}
	r := &voskRecognizer{opts: opts, model: model}
	if err := r.Reset(); err != nil {
		model.Free()
		return nil, err
	}
	return r, nil
}

func (r *voskRecognizer) AcceptWaveform(frame []byte) bool {
	return r.rec.AcceptWaveform(frame) == 1
}

func (r *voskRecognizer) Result() string        { return ParseText(r.rec.Result()) }
func (r *voskRecognizer) PartialResult() string { return ParsePartial(r.rec.PartialResult()) }
func (r *voskRecognizer) FinalResult() string   { return ParseText(r.rec.FinalResult()) }

// Reset replaces the recognizer with a fresh one on the same model.
func (r *voskRecognizer) Reset() error {
	rec, err := vosk.NewRecognizer(r.model, r.opts.SampleRate)
	if err != nil {
		return apperr.Wrap(apperr.Transcription, err, "create recognizer")
	}
	if r.opts.Words {
		rec.SetWords(1)
	}
	if r.rec != nil {
		r.rec.Free()
	}
	r.rec = rec
	return nil
}

func (r *voskRecognizer) Close() {
	if r.rec != nil {
		r.rec.Free()
		r.rec = nil
	}
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
}
