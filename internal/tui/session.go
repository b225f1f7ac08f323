package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

// Controller is what the session drives; controller.Controller satisfies it.
type Controller interface {
	FieldChanged(field string)
	Submit(ctx context.Context)
	Download() bool
}

const (
	actionEdit = iota
	actionGenerate
	actionDownload
	actionQuit
)

var actions = []string{"Edit a field", "Generate QR code", "Download", "Quit"}

// Session is the interactive edit loop.
type Session struct {
	driver   PromptDriver
	ctrl     Controller
	store    *form.Store
	out      io.Writer
	readFile func(string) ([]byte, error)
}

// NewSession wires a prompt driver to a controller and the form store.
func NewSession(driver PromptDriver, ctrl Controller, store *form.Store, out io.Writer) *Session {
	return &Session{driver: driver, ctrl: ctrl, store: store, out: out, readFile: os.ReadFile}
}

// Run loops until the user quits, interrupts or ctx is cancelled. Quitting
// and interrupting both return nil.
func (s *Session) Run(ctx context.Context) error {
	for {
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: actions})
		if err != nil {
			return quietAbort(err)
		}
		switch idx {
		case actionEdit:
			if err := s.edit(ctx); err != nil {
				if errors.Is(err, ErrAborted) {
					continue
				}
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		case actionGenerate:
			s.ctrl.Submit(ctx)
		case actionDownload:
			if !s.ctrl.Download() {
				fmt.Fprintln(s.out, "Nothing to download yet, generate a QR code first.")
			}
		case actionQuit:
			return nil
		}
	}
}

func quietAbort(err error) error {
	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) edit(ctx context.Context) error {
	st := s.store.Snapshot()
	labels := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		labels[i] = fmt.Sprintf("%-16s %s", f, st.Get(f))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Field", Options: labels, PageSize: len(labels)})
	if err != nil {
		return err
	}
	field := form.Fields[idx]

	if field == form.FieldEmbeddedImage {
		return s.editUpload(ctx, st)
	}

	value, err := s.ask(ctx, field, st)
	if err != nil {
		return err
	}
	if err := s.store.Set(field, value); err != nil {
		return err
	}
	s.ctrl.FieldChanged(field)
	return nil
}

func (s *Session) ask(ctx context.Context, field string, st form.State) (string, error) {
	var options []string
	switch field {
	case form.FieldVersion:
		options = []string{"auto"}
		for _, v := range form.VersionOptions() {
			options = append(options, strconv.Itoa(v))
		}
	case form.FieldErrorCorrection:
		options = form.ErrorCorrections
	case form.FieldModuleDrawer:
		for _, d := range form.ModuleDrawers {
			options = append(options, string(d))
		}
	case form.FieldColorMask:
		for _, m := range form.ColorMasks {
			options = append(options, string(m))
		}
	}
	current := st.Get(field)
	if options != nil {
		def := 0
		for i, o := range options {
			if o == current {
				def = i
			}
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: field, Options: options, DefaultIndex: def, PageSize: 10})
		if err != nil {
			return "", err
		}
		return options[idx], nil
	}
	return s.driver.Input(ctx, InputConfig{
		Message: field,
		Default: current,
		Help:    helpFor(field, st),
		Validator: func(v string) error {
			probe := st
			return probe.Set(field, v)
		},
	})
}

func helpFor(field string, st form.State) string {
	labels := form.LabelsFor(st.ColorMask)
	switch field {
	case form.FieldFillColor:
		return labels.FillLabel + " " + labels.FillHelp
	case form.FieldGradientColor:
		if !labels.ShowGradient {
			return "Only used by gradient color masks"
		}
		return labels.GradientLabel + " " + labels.GradientHelp
	case form.FieldBoxSize:
		return "Pixels per module"
	case form.FieldBorder:
		return "Quiet zone width in modules"
	}
	return ""
}

func (s *Session) editUpload(ctx context.Context, st form.State) error {
	path, err := s.driver.Input(ctx, InputConfig{
		Message: "Embedded image path (empty to clear)",
		Default: "",
	})
	if err != nil {
		return err
	}
	var up *form.Upload
	if path != "" {
		b, err := s.readFile(path)
		if err != nil {
			return fmt.Errorf("read embedded image: %w", err)
		}
		if up, err = form.NewUpload(path, b); err != nil {
			return err
		}
	} else if st.EmbeddedImage == nil {
		return nil
	}
	if err := s.store.Update(func(st *form.State) error {
		st.SetUpload(up)
		return nil
	}); err != nil {
		return err
	}
	s.ctrl.FieldChanged(form.FieldEmbeddedImage)
	return nil
}
