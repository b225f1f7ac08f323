package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cristianadrielbraun/qrform/internal/config"
	"github.com/cristianadrielbraun/qrform/internal/controller"
	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/internal/logging"
	"github.com/cristianadrielbraun/qrform/internal/qrapi"
	"github.com/cristianadrielbraun/qrform/internal/view"
)

// session bundles everything one controller lifetime needs.
type session struct {
	ctrl     *controller.Controller
	store    *form.Store
	page     *view.Page
	terminal *view.Terminal
	cfg      config.Config
}

func newSession(cfg config.Config, initial form.State, out io.Writer) (*session, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	client, err := qrapi.New(cfg.BaseURL,
		qrapi.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		qrapi.WithLogger(logging.New("[qrapi] ")),
	)
	if err != nil {
		return nil, err
	}
	store := form.NewStore(initial)
	page := view.NewPage()
	term := view.NewTerminal(out, cfg.OutputDir, client, logging.New("[view] "))
	ctrl := controller.New(client, view.Tee{term, page}, store,
		controller.WithDebounce(cfg.Debounce),
		controller.WithCleanupTimeout(cfg.CleanupTimeout),
		controller.WithLogger(logging.New("[session] ")),
		controller.WithPreflightValidation(),
	)
	page.SetForm(initial)
	ctrl.Initialize()
	return &session{ctrl: ctrl, store: store, page: page, terminal: term, cfg: cfg}, nil
}

// writePage saves the HTML snapshot of the form next to the preview.
func (s *session) writePage(ctx context.Context, path string) error {
	if path == "" {
		path = filepath.Join(s.cfg.OutputDir, "preview.html")
	}
	s.page.SetForm(s.store.Snapshot())
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.page.Render(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// close ends the controller session, giving cleanup a bounded grace period.
func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CleanupTimeout+time.Second)
	defer cancel()
	return s.ctrl.Close(ctx)
}
