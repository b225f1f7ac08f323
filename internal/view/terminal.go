package view

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

// Downloader fetches an artifact; qrapi.Client implements it.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) (string, error)
}

// Terminal prints the form state as lines and keeps files in a directory:
// the latest preview image and every downloaded artifact.
type Terminal struct {
	out        io.Writer
	dir        string
	downloader Downloader
	logger     *log.Logger
	timeout    time.Duration

	mu          sync.Mutex
	previewPath string
	lastSaved   string
	lastErr     string
}

// NewTerminal writes status lines to out and files into dir.
func NewTerminal(out io.Writer, dir string, d Downloader, logger *log.Logger) *Terminal {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Terminal{out: out, dir: dir, downloader: d, logger: logger, timeout: 30 * time.Second}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Terminal) SetVersionOptions(versions []int) {
	if len(versions) == 0 {
		return
	}
	t.printf("versions: auto, %d-%d", versions[0], versions[len(versions)-1])
}

func (t *Terminal) SetColorLabels(l form.ColorLabels) {
	if l.ShowGradient {
		t.printf("colors: %s %s | %s %s", l.FillLabel, l.FillHelp, l.GradientLabel, l.GradientHelp)
		return
	}
	t.printf("colors: %s %s", l.FillLabel, l.FillHelp)
}

func (t *Terminal) SetGenerating(busy bool) {
	if busy {
		t.printf("Generating...")
	}
}

func (t *Terminal) ClearError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = ""
}

func (t *Terminal) ShowError(msg string) {
	t.mu.Lock()
	t.lastErr = msg
	t.mu.Unlock()
	t.printf("error: %s", msg)
}

// LastError returns the notice currently shown, if any.
func (t *Terminal) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// ShowImage decodes a data URI and writes it to preview.<ext>. Plain URLs
// are only printed.
func (t *Terminal) ShowImage(src string) {
	data, ok := decodeDataURI(src)
	if !ok {
		t.printf("preview: %s", src)
		return
	}
	ext := mimetype.Detect(data).Extension()
	if ext == "" {
		ext = ".img"
	}
	path := filepath.Join(t.dir, "preview"+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.logger.Printf("write preview: %v", err)
		t.printf("preview: could not save image: %v", err)
		return
	}
	t.mu.Lock()
	t.previewPath = path
	t.mu.Unlock()
	t.printf("preview: %s (%d bytes)", path, len(data))
}

// PreviewPath is where the latest preview was written.
func (t *Terminal) PreviewPath() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previewPath
}

func (t *Terminal) SetDownload(url string) {
	if url != "" {
		t.printf("download ready: %s", url)
	}
}

// Navigate downloads the artifact into the output directory.
func (t *Terminal) Navigate(url string) {
	if t.downloader == nil {
		t.printf("download: %s", url)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	tmp, err := os.CreateTemp(t.dir, ".download-*")
	if err != nil {
		t.printf("download failed: %v", err)
		return
	}
	defer os.Remove(tmp.Name())
	name, err := t.downloader.Download(ctx, url, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		t.logger.Printf("download %s: %v", url, err)
		t.printf("download failed: %v", err)
		return
	}
	dest := filepath.Join(t.dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		t.printf("download failed: %v", err)
		return
	}
	t.mu.Lock()
	t.lastSaved = dest
	t.mu.Unlock()
	t.printf("saved %s", dest)
}

// LastSaved is the path of the most recent download.
func (t *Terminal) LastSaved() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSaved
}

func decodeDataURI(src string) ([]byte, bool) {
	if !strings.HasPrefix(src, "data:") {
		return nil, false
	}
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}
