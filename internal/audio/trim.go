package audio

import (
	"fmt"

	vad "github.com/maxhawkins/go-webrtcvad"
)

const trimFrameMS = 30

// TrimSilence drops leading and trailing non-speech from 16 kHz samples using
// WebRTC VAD, keeping one frame of padding on each side. Input with no voiced
// frame is returned unchanged.
func TrimSilence(samples []float32, aggressiveness int) ([]float32, error) {
	frameLen := SampleRate * trimFrameMS / 1000
	v, err := vad.New()
	if err != nil {
		return nil, fmt.Errorf("vad init: %w", err)
	}
	if !v.ValidRateAndFrameLength(SampleRate, frameLen) {
		return nil, fmt.Errorf("invalid vad frame %d for %d Hz", frameLen, SampleRate)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, fmt.Errorf("vad mode: %w", err)
	}
	return trimFrames(samples, frameLen, func(frame []byte) (bool, error) {
		return v.Process(SampleRate, frame)
	})
}

// trimFrames classifies whole frames with voiced and cuts to the voiced span
// plus one frame either side. A trailing partial frame is kept only when the
// last full frame is voiced.
func trimFrames(samples []float32, frameLen int, voiced func([]byte) (bool, error)) ([]float32, error) {
	first, last := -1, -1
	frames := len(samples) / frameLen
	for i := 0; i < frames; i++ {
		ok, err := voiced(floatToPCM16(samples[i*frameLen : (i+1)*frameLen]))
		if err != nil {
			return nil, fmt.Errorf("vad process: %w", err)
		}
		if !ok {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return samples, nil
	}
	start := max(0, first-1) * frameLen
	end := min(len(samples), (last+2)*frameLen)
	if last == frames-1 {
		end = len(samples)
	}
	return samples[start:end], nil
}
