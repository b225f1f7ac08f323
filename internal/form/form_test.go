package form_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeParts(t *testing.T, body []byte, contentType string) (map[string]string, map[string][]byte) {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	values := map[string]string{}
	files := map[string][]byte{}
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		b, _ := io.ReadAll(p)
		if p.FileName() != "" {
			files[p.FormName()] = b
			continue
		}
		values[p.FormName()] = string(b)
	}
	return values, files
}

func TestVersionOptions(t *testing.T) {
	opts := form.VersionOptions()
	if len(opts) != 40 || opts[0] != 1 || opts[39] != 40 {
		t.Fatalf("unexpected version options: %v", opts)
	}
}

func gradient(fill, fillHelp, grad, gradHelp string) form.ColorLabels {
	return form.ColorLabels{ShowGradient: true, FillLabel: fill, FillHelp: fillHelp, GradientLabel: grad, GradientHelp: gradHelp}
}

func TestLabelsFor(t *testing.T) {
	tests := []struct {
		mask form.ColorMask
		want form.ColorLabels
	}{
		{form.MaskSolid, form.ColorLabels{FillLabel: "Fill Color:", FillHelp: "Color of the QR code modules"}},
		{form.MaskRadialGradient, gradient("Center Color:", "Color at the center of the QR code", "Edge Color:", "Color at the edges of the QR code")},
		{form.MaskSquareGradient, gradient("Center Color:", "Color at the center of the QR code", "Edge Color:", "Color at the edges of the QR code")},
		{form.MaskHorizontalGradient, gradient("Left Color:", "Color on the left side of the QR code", "Right Color:", "Color on the right side of the QR code")},
		{form.MaskVerticalGradient, gradient("Top Color:", "Color at the top of the QR code", "Bottom Color:", "Color at the bottom of the QR code")},
		{form.ColorMask("bogus"), form.ColorLabels{FillLabel: "Fill Color:", FillHelp: "Color of the QR code modules"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, form.LabelsFor(tt.mask)); diff != "" {
			t.Errorf("labels for %s mismatch (-want +got):\n%s", tt.mask, diff)
		}
	}
}

func TestEncodeSolidOmitsGradient(t *testing.T) {
	st := form.Defaults()
	if err := st.Set(form.FieldVersion, "5"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	ct, err := st.Encode(&buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, files := decodeParts(t, buf.Bytes(), ct)
	want := map[string]string{
		"data":             "https://example.com",
		"version":          "5",
		"error_correction": "M",
		"box_size":         "10",
		"border":           "4",
		"fill_color":       "#000000",
		"back_color":       "#FFFFFF",
		"module_drawer":    "square",
		"color_mask":       "solid",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(files) != 0 {
		t.Fatalf("expected no file parts, got %d", len(files))
	}
}

func TestEncodeGradientAndUpload(t *testing.T) {
	st := form.Defaults()
	_ = st.Set(form.FieldColorMask, "vertical_gradient")
	_ = st.Set(form.FieldGradientColor, "ff0000")
	logo := pngBytes(t)
	up, err := form.NewUpload("logo", logo)
	if err != nil {
		t.Fatalf("new upload: %v", err)
	}
	st.SetUpload(up)

	var buf bytes.Buffer
	ct, err := st.Encode(&buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, files := decodeParts(t, buf.Bytes(), ct)
	if values["version"] != "auto" {
		t.Errorf("version = %q, want auto", values["version"])
	}
	if values["gradient_color"] != "#ff0000" {
		t.Errorf("gradient_color = %q", values["gradient_color"])
	}
	if !bytes.Equal(files["embedded_image"], logo) {
		t.Errorf("embedded image bytes not preserved")
	}
	if up.Filename != "logo.png" {
		t.Errorf("filename = %q, want logo.png", up.Filename)
	}
}

func TestNewUploadRejectsNonImage(t *testing.T) {
	_, err := form.NewUpload("notes.txt", []byte("hello world"))
	if !errors.Is(err, form.ErrUnsupportedUpload) {
		t.Fatalf("expected ErrUnsupportedUpload, got %v", err)
	}
	if _, err := form.NewUpload("empty.png", nil); !errors.Is(err, form.ErrUnsupportedUpload) {
		t.Fatalf("expected ErrUnsupportedUpload for empty file, got %v", err)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	st := form.Defaults()
	cases := map[string]string{
		form.FieldVersion:         "41",
		form.FieldErrorCorrection: "Z",
		form.FieldModuleDrawer:    "hexagon",
		form.FieldColorMask:       "plaid",
		form.FieldBoxSize:         "big",
		"nope":                    "x",
	}
	for field, value := range cases {
		if err := st.Set(field, value); err == nil {
			t.Errorf("Set(%q, %q) should fail", field, value)
		}
	}
	if diff := cmp.Diff(form.Defaults(), st); diff != "" {
		t.Fatalf("failed edits changed state (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	st := form.Defaults()
	if err := st.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	st.FillColor = "black"
	err := st.Validate()
	if err == nil || !strings.Contains(err.Error(), "FillColor") {
		t.Fatalf("expected FillColor error, got %v", err)
	}

	st = form.Defaults()
	st.ColorMask = form.MaskRadialGradient
	st.GradientColor = ""
	if err := st.Validate(); err == nil {
		t.Fatal("gradient without second color should fail")
	}
}

func TestTransparentBackgroundIsSent(t *testing.T) {
	st := form.Defaults()
	if err := st.Set(form.FieldBackColor, "Transparent"); err != nil {
		t.Fatal(err)
	}
	if st.BackColor != form.Transparent {
		t.Fatalf("back color = %q, want %q", st.BackColor, form.Transparent)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("transparent background should validate: %v", err)
	}
	var body bytes.Buffer
	ct, err := st.Encode(&body)
	if err != nil {
		t.Fatal(err)
	}
	values, _ := decodeParts(t, body.Bytes(), ct)
	if got := values[form.FieldBackColor]; got != "transparent" {
		t.Fatalf("back_color = %q", got)
	}

	st.FillColor = "#transparent"
	if err := st.Validate(); err == nil {
		t.Fatal("#transparent is not a color")
	}
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	s := form.NewStore(form.Defaults())
	if err := s.Set(form.FieldData, "https://go.dev"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(form.FieldVersion, "99"); err == nil {
		t.Fatal("expected error")
	}
	got := s.Snapshot()
	if got.Data != "https://go.dev" || got.Version != form.AutoVersion {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
