package asr

import (
	"os"
	"path/filepath"

	"scribe/internal/apperr"
)

// voskModelMarkers are the acoustic model files a usable vosk model
// directory holds; the older flat layout keeps it at the root.
var voskModelMarkers = []string{
	filepath.Join("am", "final.mdl"),
	"final.mdl",
}

// CheckVoskModel reports whether dir looks like an unpacked vosk model.
// libvosk does not surface load failures to Go, so an empty or half-extracted
// directory has to be caught before it is handed over.
func CheckVoskModel(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apperr.Wrap(apperr.NotFound, err, "Vosk model not found")
	}
	if !info.IsDir() {
		return apperr.New(apperr.NotFound, "Vosk model %s is not a directory", dir)
	}
	for _, m := range voskModelMarkers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "Vosk model at %s is incomplete (no am/final.mdl); remove it to download again", dir)
}
