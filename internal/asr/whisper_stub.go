//go:build !whisper

package asr

import "scribe/internal/apperr"

const whisperBuilt = false

func newWhisperTranscriber(TranscriberOptions) (Transcriber, error) {
	return nil, apperr.New(apperr.DependencyMissing, "Whisper not available. Rebuild with: go build -tags whisper (requires libwhisper)")
}
