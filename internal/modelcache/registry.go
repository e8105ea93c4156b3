package modelcache

import (
	"sort"
	"strings"
)

// Engine names the recognizer a model belongs to.
type Engine string

const (
	EngineWhisper Engine = "whisper"
	EngineVosk    Engine = "vosk"
)

// Model describes a downloadable model. Archive models are zip files that
// unpack into a directory named after the model; the rest are single files.
type Model struct {
	Name      string
	Engine    Engine
	URL       string
	SizeLabel string
	Archive   bool
}

const (
	hfBase   = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"
	voskBase = "https://alphacephei.com/vosk/models/"
)

var registry = []Model{
	{Name: "ggml-tiny.en.bin", Engine: EngineWhisper, URL: hfBase + "ggml-tiny.en.bin", SizeLabel: "~75 MB"},
	{Name: "ggml-tiny.bin", Engine: EngineWhisper, URL: hfBase + "ggml-tiny.bin", SizeLabel: "~75 MB"},
	{Name: "ggml-base.en.bin", Engine: EngineWhisper, URL: hfBase + "ggml-base.en.bin", SizeLabel: "~142 MB"},
	{Name: "ggml-base.bin", Engine: EngineWhisper, URL: hfBase + "ggml-base.bin", SizeLabel: "~142 MB"},
	{Name: "ggml-small.bin", Engine: EngineWhisper, URL: hfBase + "ggml-small.bin", SizeLabel: "~466 MB"},
	{Name: "ggml-medium.bin", Engine: EngineWhisper, URL: hfBase + "ggml-medium.bin", SizeLabel: "~1.5 GB"},
	{Name: "ggml-large-v3-turbo.bin", Engine: EngineWhisper, URL: hfBase + "ggml-large-v3-turbo.bin", SizeLabel: "~1.6 GB"},
	{Name: "vosk-model-small-en-us-0.15", Engine: EngineVosk, URL: voskBase + "vosk-model-small-en-us-0.15.zip", SizeLabel: "~40 MB", Archive: true},
	{Name: "vosk-model-en-us-0.22-lgraph", Engine: EngineVosk, URL: voskBase + "vosk-model-en-us-0.22-lgraph.zip", SizeLabel: "~128 MB", Archive: true},
	{Name: "vosk-model-en-us-0.22", Engine: EngineVosk, URL: voskBase + "vosk-model-en-us-0.22.zip", SizeLabel: "~1.8 GB", Archive: true},
}

// Lookup finds a registered model by name.
func Lookup(name string) (Model, bool) {
	name = strings.TrimSpace(name)
	for _, m := range registry {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// All returns the registry sorted by engine then name.
func All() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Engine != out[j].Engine {
			return out[i].Engine < out[j].Engine
		}
		return out[i].Name < out[j].Name
	})
	return out
}
