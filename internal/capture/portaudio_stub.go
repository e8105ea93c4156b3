//go:build !vosk

package capture

import "scribe/internal/apperr"

func openPortAudio(Options, FrameFunc, ErrorFunc) (Stream, error) {
	return nil, apperr.New(apperr.DependencyMissing, "microphone capture not available. Rebuild with: go build -tags vosk (requires portaudio)")
}

func listDevices() ([]Device, error) {
	return nil, apperr.New(apperr.DependencyMissing, "build with '-tags vosk' to enable microphone listing (PortAudio required)")
}
