// Package logging sets up the std logger with optional file rotation.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cristianadrielbraun/qrform/internal/config"
)

// Setup points the std logger at stderr and, when a directory is
// configured, at a rotated <name>.log in it. The returned closer flushes
// the rotated file.
func Setup(cfg config.LogConfig, name string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.Directory == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, name+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator, nil
}

// New returns a logger that shares the std logger's output with a prefix.
func New(prefix string) *log.Logger {
	return log.New(log.Writer(), prefix, log.Flags()|log.Lmsgprefix)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
