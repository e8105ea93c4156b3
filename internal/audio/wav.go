// Package audio turns PCM WAV files into the 16 kHz mono float32 samples the
// speech engines expect.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the rate every engine in this module consumes.
const SampleRate = 16000

// ErrUnsupportedFormat is returned for anything that is not a PCM WAV file.
var ErrUnsupportedFormat = errors.New("unsupported audio format: expected PCM WAV")

// ReadWAV decodes path and returns mono samples in [-1, 1] at SampleRate.
func ReadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, ErrUnsupportedFormat
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w (format tag %d)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return toMono16k(buf)
}

func toMono16k(buf *goaudio.IntBuffer) ([]float32, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrUnsupportedFormat
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float32(math.Pow(2, float64(depth-1)))

	frames := len(buf.Data) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		mono[i] = sum / float32(channels)
	}
	return resampleLinear(mono, buf.Format.SampleRate, SampleRate), nil
}

func resampleLinear(in []float32, srcSR, dstSR int) []float32 {
	if srcSR == dstSR || srcSR <= 0 || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}
	ratio := float64(dstSR) / float64(srcSR)
	outLen := int(float64(len(in))*ratio + 0.9999)
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = in[idx]*(1-frac) + in[idx+1]*frac
	}
	return out
}

// PCM16 encodes int16 samples as little-endian bytes, the layout the
// streaming recognizer accepts.
func PCM16(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func floatToPCM16(in []float32) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*math.MaxInt16)))
	}
	return out
}
