//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"scribe/internal/apperr"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

const whisperBuilt = true

// whisperTranscriber holds a loaded whisper.cpp model.
type whisperTranscriber struct {
	opts  TranscriberOptions
	model whisper.Model
}

func newWhisperTranscriber(opts TranscriberOptions) (Transcriber, error) {
	model, err := whisper.New(opts.ModelPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transcription, err, "load model")
	}
	return &whisperTranscriber{opts: opts, model: model}, nil
}

// Transcribe decodes greedily at the configured temperature. whisper.cpp
// conditions each window on the previous text by default. At temperature 0
// the sampling fallback is disabled so output is deterministic.
func (t *whisperTranscriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	wctx, err := t.model.NewContext()
	if err != nil {
		return "", apperr.Wrap(apperr.Transcription, err, "new context")
	}
	if lang := strings.TrimSpace(t.opts.Language); lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			return "", apperr.Wrap(apperr.Transcription, err, fmt.Sprintf("set language %q", lang))
		}
	}
	wctx.SetTranslate(false)
	wctx.SetTemperature(t.opts.Temperature)
	wctx.SetTemperatureFallback(temperatureFallback(t.opts.Temperature))
	if t.opts.Threads > 0 {
		wctx.SetThreads(uint(t.opts.Threads))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", apperr.Wrap(apperr.Transcription, err, "process")
	}

	var b strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", apperr.Wrap(apperr.Transcription, err, "read segment")
		}
		b.WriteString(seg.Text)
		if !strings.HasSuffix(seg.Text, " ") {
			b.WriteByte(' ')
		}
	}
	return b.String(), nil
}

func (t *whisperTranscriber) Close() error {
	return t.model.Close()
}
