// Package capture streams microphone audio as 16-bit PCM frames through a
// callback invoked by the audio subsystem at a fixed cadence.
package capture

import "fmt"

// Options selects the input device and frame layout.
type Options struct {
	DeviceName string
	SampleRate int
	Channels   int
	BlockSize  int // frames per callback
}

// Device is an input device as reported by PortAudio.
type Device struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Channels  int     `json:"channels"`
	LatencyMs float64 `json:"latency_ms"`
	Default   bool    `json:"default"`
}

// Stream is a running capture. Close stops callbacks and releases the device.
type Stream interface {
	Start() error
	Close() error
}

// FrameFunc receives one block of little-endian int16 PCM. The slice is not
// reused after the call returns.
type FrameFunc func(frame []byte)

// ErrorFunc receives non-fatal device conditions such as overflow.
type ErrorFunc func(err error)

// Validate checks that opts describe a layout the recognizer can consume.
func Validate(opts Options) error {
	if opts.Channels != 1 {
		return fmt.Errorf("only mono input supported; set audio.channels = 1")
	}
	if opts.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive (got %d)", opts.SampleRate)
	}
	if opts.BlockSize <= 0 {
		return fmt.Errorf("audio.block_size must be positive (got %d)", opts.BlockSize)
	}
	return nil
}

// Open prepares a capture stream. Callbacks begin after Start.
func Open(opts Options, onFrame FrameFunc, onError ErrorFunc) (Stream, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}
	return openPortAudio(opts, onFrame, onError)
}

// Devices lists available input devices.
func Devices() ([]Device, error) {
	return listDevices()
}
