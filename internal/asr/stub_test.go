//go:build !whisper && !vosk

package asr

import (
	"testing"

	"scribe/internal/apperr"
)

func TestStubsReportMissingDependency(t *testing.T) {
	if _, err := NewTranscriber(TranscriberOptions{ModelPath: "x"}); !apperr.Is(err, apperr.DependencyMissing) {
		t.Fatalf("transcriber err = %v", err)
	}
	if _, err := NewRecognizer(RecognizerOptions{ModelPath: "x"}); !apperr.Is(err, apperr.DependencyMissing) {
		t.Fatalf("recognizer err = %v", err)
	}
}
