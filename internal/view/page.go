// Package view holds the controller.View implementations: an HTML page
// snapshot, a terminal view for the interactive CLI and a fan-out Tee.
package view

import (
	"context"
	"io"
	"sync"

	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/web/components"
)

// Page keeps the state of the form page in memory and renders it as HTML.
type Page struct {
	mu    sync.Mutex
	state components.PageState
}

// NewPage returns a page showing the default form values.
func NewPage() *Page {
	return &Page{state: components.PageState{Form: form.Defaults()}}
}

func (p *Page) SetVersionOptions(versions []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Versions = append([]int(nil), versions...)
}

// SetForm sets the field values the page shows.
func (p *Page) SetForm(st form.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Form = st
}

func (p *Page) SetColorLabels(labels form.ColorLabels) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Labels = labels
}

func (p *Page) SetGenerating(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Generating = busy
}

func (p *Page) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Error = ""
}

// ShowError replaces the notice. The text is kept as given and escaped when
// rendered.
func (p *Page) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Error = msg
}

func (p *Page) ShowImage(src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.ImageSrc = src
}

func (p *Page) SetDownload(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.DownloadURL = url
}

// Navigate records the last followed link.
func (p *Page) Navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Navigated = url
}

// State returns a copy of the page state.
func (p *Page) State() components.PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	st.Versions = append([]int(nil), p.state.Versions...)
	return st
}

// Render writes the page as HTML.
func (p *Page) Render(ctx context.Context, w io.Writer) error {
	return components.Page(p.State()).Render(ctx, w)
}
