// Package asr wraps the speech engines. Engine bindings need cgo libraries,
// so each lives behind a build tag (whisper, vosk) with a stub that reports
// apperr.DependencyMissing.
package asr

import "context"

// Transcriber runs one-shot recognition over 16 kHz mono samples.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
	Close() error
}

// TranscriberOptions configures the batch engine.
type TranscriberOptions struct {
	ModelPath   string
	Language    string
	Temperature float32
	Threads     int
}

// Recognizer is a streaming recognizer fed 16-bit little-endian PCM frames.
// It is not safe for concurrent use.
type Recognizer interface {
	// AcceptWaveform feeds one frame and reports whether an utterance
	// boundary was reached.
	AcceptWaveform(frame []byte) bool
	// Result returns the text of the utterance just finalized.
	Result() string
	// PartialResult returns the in-progress hypothesis.
	PartialResult() string
	// FinalResult flushes and returns whatever is pending.
	FinalResult() string
	// Reset discards in-progress state.
	Reset() error
	Close()
}

// RecognizerOptions configures the streaming engine.
type RecognizerOptions struct {
	ModelPath  string
	SampleRate float64
	Words      bool
}

// whisper.cpp re-decodes failed windows at increasing temperatures in steps
// of this size unless the fallback is disabled with a negative increment.
const defaultTemperatureInc = 0.2

// temperatureFallback returns the fallback increment for temp: disabled at
// zero, whisper.cpp's default otherwise.
func temperatureFallback(temp float32) float32 {
	if temp == 0 {
		return -1
	}
	return defaultTemperatureInc
}

// NewTranscriber returns the whisper transcriber.
func NewTranscriber(opts TranscriberOptions) (Transcriber, error) {
	return newWhisperTranscriber(opts)
}

// NewRecognizer returns the vosk recognizer.
func NewRecognizer(opts RecognizerOptions) (Recognizer, error) {
	return newVoskRecognizer(opts)
}

// Built reports which engines this binary was compiled with.
func Built() (whisper, vosk bool) {
	return whisperBuilt, voskBuilt
}
