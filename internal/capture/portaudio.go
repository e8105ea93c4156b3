//go:build vosk

package capture

import (
	"fmt"
	"strings"

	"scribe/internal/apperr"
	"scribe/internal/audio"

	"github.com/gordonklaus/portaudio"
)

type paStream struct {
	stream *portaudio.Stream
}

func openPortAudio(opts Options, onFrame FrameFunc, onError ErrorFunc) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperr.Wrap(apperr.Capture, err, "portaudio init")
	}
	dev, err := selectDevice(opts.DeviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, apperr.Wrap(apperr.Capture, err, "select device")
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: opts.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(opts.SampleRate),
		FramesPerBuffer: opts.BlockSize,
	}
	callback := func(in []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags != 0 && onError != nil {
			onError(apperr.New(apperr.Capture, "Audio error: %s", describeFlags(flags)))
		}
		onFrame(audio.PCM16(in))
	}
	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, apperr.Wrap(apperr.Capture, err, "open stream")
	}
	return &paStream{stream: stream}, nil
}

func (s *paStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return apperr.Wrap(apperr.Capture, err, "start stream")
	}
	return nil
}

func (s *paStream) Close() error {
	_ = s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

func describeFlags(flags portaudio.StreamCallbackFlags) string {
	var parts []string
	if flags&portaudio.InputUnderflow != 0 {
		parts = append(parts, "input underflow")
	}
	if flags&portaudio.InputOverflow != 0 {
		parts = append(parts, "input overflow")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("stream flags 0x%x", uint64(flags))
	}
	return strings.Join(parts, ", ")
}

func selectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input devices found")
}

func listDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()
	out := []Device{}
	for i, d := range devs {
		if d.MaxInputChannels < 1 {
			continue
		}
		out = append(out, Device{
			Index:     i,
			Name:      d.Name,
			Channels:  d.MaxInputChannels,
			LatencyMs: d.DefaultLowInputLatency.Seconds() * 1000,
			Default:   def != nil && d.Name == def.Name,
		})
	}
	return out, nil
}
