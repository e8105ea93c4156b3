// Package modelcache downloads speech models once and keeps them under a
// local directory keyed by model name.
package modelcache

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/apperr"

	"github.com/sirupsen/logrus"
)

const userAgent = "scribe"

// Cache is a directory of models. Entries are either a file (whisper) or a
// directory (vosk) named after the model.
type Cache struct {
	Dir    string
	Client *http.Client
	Logger *logrus.Logger
}

// New returns a Cache rooted at dir using http.DefaultClient.
func New(dir string, logger *logrus.Logger) *Cache {
	return &Cache{Dir: dir, Client: http.DefaultClient, Logger: logger}
}

// Path is where the entry for name lives once ready.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// Present reports whether the entry for name is ready.
func (c *Cache) Present(name string) bool {
	_, err := os.Stat(c.Path(name))
	return err == nil
}

// Ensure returns the local path of m, downloading (and for archives,
// unpacking) it first when absent. Failures are apperr.Download.
func (c *Cache) Ensure(ctx context.Context, m Model, r Reporter) (string, error) {
	if r == nil {
		r = NopReporter{}
	}
	dest := c.Path(m.Name)
	if c.Present(m.Name) {
		return dest, nil
	}
	if m.URL == "" {
		return "", apperr.New(apperr.Download, "no download URL for model %q", m.Name)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.Download, err, "prepare model directory")
	}

	r.Start(m)
	c.logf("downloading %s from %s", m.Name, m.URL)

	if !m.Archive {
		if err := c.fetch(ctx, m.URL, dest, r.Progress); err != nil {
			return "", apperr.Wrap(apperr.Download, err, "Download failed")
		}
		r.Done(m, dest)
		return dest, nil
	}

	archive := filepath.Join(c.Dir, m.Name+".zip")
	if err := c.fetch(ctx, m.URL, archive, r.Progress); err != nil {
		return "", apperr.Wrap(apperr.Download, err, "Download failed")
	}
	r.Extracting(m)
	c.logf("extracting %s", archive)
	if err := unpackInto(archive, c.Dir, m.Name); err != nil {
		return "", apperr.Wrap(apperr.Download, err, "Extract failed")
	}
	if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logf("remove archive: %v", err)
	}
	r.Done(m, dest)
	return dest, nil
}

func (c *Cache) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Infof(format, args...)
	}
}

// fetch streams url into dest via a temporary file, reporting progress.
func (c *Cache) fetch(ctx context.Context, url, dest string, report func(Progress)) error {
	tmpPath := dest + ".part"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	pw := &progressWriter{p: Progress{Total: resp.ContentLength}, report: report}
	if pw.p.Total < 0 {
		pw.p.Total = 0
	}
	n, copyErr := io.Copy(io.MultiWriter(file, pw), resp.Body)
	closeErr := file.Close()
	if copyErr == nil && resp.ContentLength > 0 && n != resp.ContentLength {
		copyErr = io.ErrUnexpectedEOF
	}
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write destination file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close destination file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move downloaded file into place: %w", err)
	}
	return nil
}

// unpackInto extracts archive into a staging directory beside dir/name, then
// moves the model root into place so a half-extracted model is never seen
// as ready. Archives either hold a single top-level directory or the model
// files directly.
func unpackInto(archive, dir, name string) error {
	staging := filepath.Join(dir, "."+name+".extract")
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clear staging: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extractZip(archive, staging); err != nil {
		return err
	}

	root := staging
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		root = filepath.Join(staging, entries[0].Name())
	}
	return os.Rename(root, filepath.Join(dir, name))
}

func extractZip(archive, destDir string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, f := range reader.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, cleanDest) {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return dst.Close()
}
