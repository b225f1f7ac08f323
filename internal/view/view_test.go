package view

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cristianadrielbraun/qrform/internal/controller"
	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/internal/qrapi"
)

var (
	_ controller.View = (*Page)(nil)
	_ controller.View = (*Terminal)(nil)
	_ controller.View = Tee(nil)
)

func pngDataURI(t *testing.T) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes()
}

func render(t *testing.T, p *Page) string {
	t.Helper()
	var b strings.Builder
	if err := p.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestPageRendersSingleErrorNotice(t *testing.T) {
	p := NewPage()
	p.ShowError("first")
	p.ClearError()
	p.ShowError(`<b>Invalid</b> color & "size"`)
	html := render(t, p)
	if n := strings.Count(html, `class="error-message"`); n != 1 {
		t.Fatalf("expected one error notice, got %d", n)
	}
	if !strings.Contains(html, "&lt;b&gt;Invalid&lt;/b&gt; color &amp; &#34;size&#34;") {
		t.Fatalf("error text not escaped once:\n%s", html)
	}
	if strings.Contains(html, "<b>") {
		t.Fatal("markup from the server leaked into the page")
	}
}

func TestPageShowsServerErrorVerbatim(t *testing.T) {
	p := NewPage()
	msg := "Invalid color: <none>"
	p.ShowError(msg)
	if got := p.State().Error; got != msg {
		t.Fatalf("stored error = %q, want %q", got, msg)
	}
	if html := render(t, p); !strings.Contains(html, "Invalid color: &lt;none&gt;") {
		t.Fatalf("error text changed:\n%s", html)
	}
}

func TestPageColorFieldsAndButtons(t *testing.T) {
	p := NewPage()
	p.SetVersionOptions(form.VersionOptions())
	st := form.Defaults()
	st.Version = 5
	p.SetForm(st)
	p.SetColorLabels(form.LabelsFor(form.MaskSolid))
	p.SetGenerating(true)
	html := render(t, p)
	if !strings.Contains(html, `id="gradient_color_container" class="form-group" style="display: none"`) {
		t.Fatal("gradient field should be hidden for solid")
	}
	if !strings.Contains(html, `<option value="5" selected>5</option>`) || !strings.Contains(html, `<option value="40">40</option>`) {
		t.Fatal("version options missing")
	}
	if !strings.Contains(html, "Generating...") || !strings.Contains(html, `id="download-btn" disabled`) {
		t.Fatal("expected generating button and disabled download")
	}

	p.SetColorLabels(form.LabelsFor(form.MaskVerticalGradient))
	p.SetGenerating(false)
	p.ShowImage("data:image/png;base64,QQ==")
	p.SetDownload("/download/abc123")
	html = render(t, p)
	for _, want := range []string{
		`style="display: flex"`,
		"Top Color:",
		"Bottom Color:",
		`<img id="qr-image" src="data:image/png;base64,QQ=="`,
		`href="/download/abc123"`,
		"Generate QR Code",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

type oneShotClient struct{ id string }

func (c oneShotClient) Generate(ctx context.Context, st form.State) (*qrapi.Result, error) {
	return &qrapi.Result{Success: true, Image: "data:image/png;base64,QQ==", QRID: c.id}, nil
}

func (oneShotClient) Cleanup(ctx context.Context, id string) error { return nil }

func (oneShotClient) DownloadURL(id string) string { return "http://localhost:8080/download/" + id }

func TestPageAfterSuccessfulGenerate(t *testing.T) {
	st := form.Defaults()
	st.ColorMask = form.MaskHorizontalGradient
	store := form.NewStore(st)
	p := NewPage()
	p.SetForm(store.Snapshot())
	c := controller.New(oneShotClient{id: "abc123"}, p, store)
	c.Initialize()
	c.Submit(context.Background())

	if got := p.State(); !got.DownloadEnabled() || got.DownloadURL != "http://localhost:8080/download/abc123" {
		t.Fatalf("download not enabled for abc123: %+v", got.DownloadURL)
	}
	html := render(t, p)
	if !strings.Contains(html, `<a id="download-btn" href="http://localhost:8080/download/abc123"`) {
		t.Fatalf("download link missing:\n%s", html)
	}
	for _, field := range form.Fields {
		if !strings.Contains(html, `name="`+field+`"`) {
			t.Errorf("field %s missing from the page", field)
		}
	}
	for _, want := range []string{
		`name="data" value="https://example.com"`,
		`<option value="horizontal_gradient" selected>`,
		`name="back_color" value="#FFFFFF"`,
		"Left Color:",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

type stubDownloader struct {
	url  string
	body string
	err  error
}

func (s *stubDownloader) Download(ctx context.Context, rawURL string, w io.Writer) (string, error) {
	s.url = rawURL
	if s.err != nil {
		return "", s.err
	}
	io.WriteString(w, s.body)
	return "qrcode.png", nil
}

func TestTerminalSavesPreviewAndDownload(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	dl := &stubDownloader{body: "ARTIFACT"}
	term := NewTerminal(&out, dir, dl, nil)

	src, raw := pngDataURI(t)
	term.ShowImage(src)
	if got := term.PreviewPath(); got != filepath.Join(dir, "preview.png") {
		t.Fatalf("preview path = %q", got)
	}
	saved, err := os.ReadFile(term.PreviewPath())
	if err != nil || !bytes.Equal(saved, raw) {
		t.Fatalf("preview not written: %v", err)
	}

	term.Navigate("http://x/download/abc123")
	if dl.url != "http://x/download/abc123" {
		t.Fatalf("downloaded %q", dl.url)
	}
	b, err := os.ReadFile(filepath.Join(dir, "qrcode.png"))
	if err != nil || string(b) != "ARTIFACT" {
		t.Fatalf("artifact not saved: %v", err)
	}
	if term.LastSaved() != filepath.Join(dir, "qrcode.png") {
		t.Fatalf("last saved = %q", term.LastSaved())
	}
}

func TestTerminalDownloadFailureIsReported(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, t.TempDir(), &stubDownloader{err: qrapi.ErrNotFound}, nil)
	term.Navigate("http://x/download/gone")
	if !strings.Contains(out.String(), "download failed: artifact not found") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if term.LastSaved() != "" {
		t.Fatal("nothing should be saved")
	}
}

func TestTeeFansOut(t *testing.T) {
	a, b := NewPage(), NewPage()
	tee := Tee{a, b}
	tee.ShowError("boom")
	tee.SetDownload("/download/x")
	for _, p := range []*Page{a, b} {
		st := p.State()
		if st.Error != "boom" || !st.DownloadEnabled() {
			t.Fatalf("state not forwarded: %+v", st)
		}
	}
}
