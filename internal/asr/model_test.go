package asr

import (
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/apperr"
)

func TestCheckVoskModel(t *testing.T) {
	dir := t.TempDir()
	if err := CheckVoskModel(filepath.Join(dir, "missing")); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("missing dir err = %v", err)
	}
	if err := CheckVoskModel(dir); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("empty dir err = %v", err)
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckVoskModel(file); err == nil {
		t.Fatalf("plain file accepted")
	}

	if err := os.MkdirAll(filepath.Join(dir, "am"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "am", "final.mdl"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckVoskModel(dir); err != nil {
		t.Fatalf("complete model rejected: %v", err)
	}

	flat := t.TempDir()
	if err := os.WriteFile(filepath.Join(flat, "final.mdl"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckVoskModel(flat); err != nil {
		t.Fatalf("flat layout rejected: %v", err)
	}
}
