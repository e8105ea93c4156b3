//go:build !vosk

package asr

import "scribe/internal/apperr"

const voskBuilt = false

func newVoskRecognizer(RecognizerOptions) (Recognizer, error) {
	return nil, apperr.New(apperr.DependencyMissing, "Vosk not available. Rebuild with: go build -tags vosk (requires libvosk and portaudio)")
}
