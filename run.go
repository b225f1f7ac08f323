package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cristianadrielbraun/qrform/internal/config"
	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/internal/tui"
)

func runInteractive(ctx context.Context, cfg config.Config) error {
	initial, err := cfg.FormState()
	if err != nil {
		return err
	}
	s, err := newSession(cfg, initial, os.Stdout)
	if err != nil {
		return err
	}
	defer s.close()

	s.ctrl.Submit(ctx)
	if err := tui.NewSession(tui.NewSurveyDriver(), s.ctrl, s.store, os.Stdout).Run(ctx); err != nil {
		return err
	}
	if err := s.writePage(context.Background(), ""); err != nil {
		log.Printf("write page snapshot: %v", err)
	}
	return nil
}

// fieldFlags collects repeated -set field=value flags.
type fieldFlags []string

func (f *fieldFlags) String() string     { return strings.Join(*f, ",") }
func (f *fieldFlags) Set(v string) error { *f = append(*f, v); return nil }

func runGenerate(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var sets fieldFlags
	fs.Var(&sets, "set", "field=value, may be repeated (e.g. -set version=5 -set color_mask=solid)")
	logo := fs.String("logo", "", "embedded image file")
	download := fs.Bool("download", true, "download the artifact after generating")
	htmlPath := fs.String("html", "", "write an HTML snapshot of the form to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := cfg.FormState()
	if err != nil {
		return err
	}
	for _, kv := range sets {
		field, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("-set %q: want field=value", kv)
		}
		if err := st.Set(field, value); err != nil {
			return err
		}
	}
	if *logo != "" {
		b, err := os.ReadFile(*logo)
		if err != nil {
			return fmt.Errorf("read logo: %w", err)
		}
		up, err := form.NewUpload(*logo, b)
		if err != nil {
			return err
		}
		st.SetUpload(up)
	}

	s, err := newSession(cfg, st, os.Stdout)
	if err != nil {
		return err
	}
	defer s.close()

	s.ctrl.Submit(ctx)
	if *htmlPath != "" {
		if err := s.writePage(ctx, *htmlPath); err != nil {
			return fmt.Errorf("write page: %w", err)
		}
	}
	if msg := s.terminal.LastError(); msg != "" {
		return errors.New(msg)
	}
	if *download {
		s.ctrl.Download()
		if s.terminal.LastSaved() == "" {
			return errors.New("download failed")
		}
	}
	return nil
}
