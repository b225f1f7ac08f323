package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type generateResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	QRID    string `json:"qr_id"`
	Error   string `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRouter(New(store, nil)), store
}

func multipartBody(t *testing.T, fields map[string]string, logo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if logo != nil {
		part, err := mw.CreateFormFile("embedded_image", "logo.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(logo)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func postGenerate(t *testing.T, r http.Handler, fields map[string]string, logo []byte) (int, generateResponse) {
	t.Helper()
	body, ct := multipartBody(t, fields, logo)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var res generateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, res
}

func decodeDataURI(t *testing.T, src string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(src, prefix) {
		t.Fatalf("not a PNG data URI: %.40q", src)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(src, prefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func TestGenerateDownloadCleanup(t *testing.T) {
	r, store := newTestRouter(t)
	code, res := postGenerate(t, r, map[string]string{
		"data":       "https://example.com",
		"version":    "5",
		"color_mask": "solid",
		"box_size":   "4",
		"border":     "2",
	}, nil)
	if code != http.StatusOK || !res.Success || res.QRID == "" {
		t.Fatalf("generate failed: %d %+v", code, res)
	}
	img := decodeDataURI(t, res.Image)
	// Version 5 is 37 modules wide.
	if b := img.Bounds(); b.Dx() != b.Dy() || b.Dx() < 37*4 {
		t.Errorf("unexpected image size %v", b)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/"+res.QRID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "qrcode.png") {
		t.Errorf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}

	path, ok := store.Path(res.QRID)
	if !ok {
		t.Fatal("artifact not tracked")
	}
	form := url.Values{"qr_id": {res.QRID}}
	req := httptest.NewRequest(http.MethodPost, "/cleanup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cleanup status = %d", w.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("artifact still on disk: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/"+res.QRID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("download after cleanup status = %d", w.Code)
	}
}

func TestGenerateTransparentBackground(t *testing.T) {
	r, _ := newTestRouter(t)
	code, res := postGenerate(t, r, map[string]string{
		"data":       "https://example.com",
		"back_color": "transparent",
	}, nil)
	if code != http.StatusOK || !res.Success {
		t.Fatalf("generate failed: %d %+v", code, res)
	}
	decodeDataURI(t, res.Image)
}

func TestGenerateErrorStripsMarkupFromInput(t *testing.T) {
	r, _ := newTestRouter(t)
	code, res := postGenerate(t, r, map[string]string{"fill_color": "<b>red</b>"}, nil)
	if code != http.StatusBadRequest || res.Success {
		t.Fatalf("expected rejection, got %d %+v", code, res)
	}
	if res.Error != "Invalid color: red" {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	r, store := newTestRouter(t)
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"color", map[string]string{"fill_color": "#zzzzzz"}, "Invalid color: #zzzzzz"},
		{"version", map[string]string{"version": "41"}, "Invalid version: 41"},
		{"box size", map[string]string{"box_size": "big"}, "Invalid box size: big"},
		{"empty data", map[string]string{"data": "  "}, "Data is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := postGenerate(t, r, tt.fields, nil)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d", code)
			}
			if diff := cmp.Diff(generateResponse{Error: tt.want}, res); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if store.Len() != 0 {
		t.Fatalf("failed requests left %d files", store.Len())
	}
}

func TestGenerateGradientShapesAndLogo(t *testing.T) {
	r, store := newTestRouter(t)
	logo := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			logo.Set(x, y, color.RGBA{200, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo); err != nil {
		t.Fatal(err)
	}

	for _, drawer := range []string{"square", "gapped_square", "circle", "rounded", "vertical_bars", "horizontal_bars"} {
		code, res := postGenerate(t, r, map[string]string{
			"data":             "hello",
			"module_drawer":    drawer,
			"color_mask":       "horizontal_gradient",
			"gradient_color":   "#ff0000",
			"error_correction": "H",
		}, nil)
		if code != http.StatusOK || !res.Success {
			t.Fatalf("%s: %d %+v", drawer, code, res)
		}
	}

	code, res := postGenerate(t, r, map[string]string{"data": "https://example.com/with/logo", "error_correction": "H"}, buf.Bytes())
	if code != http.StatusOK || !res.Success {
		t.Fatalf("logo: %d %+v", code, res)
	}
	// 7 artifacts plus the saved upload.
	if got := store.Len(); got != 8 {
		t.Fatalf("tracked files = %d, want 8", got)
	}
}

func TestParseColorParam(t *testing.T) {
	tests := map[string]color.RGBA{
		"#000000":     {0, 0, 0, 255},
		"ff8000":      {255, 128, 0, 255},
		"#fff":        {255, 255, 255, 255},
		"transparent": {0, 0, 0, 0},
	}
	for in, want := range tests {
		got, err := parseColorParam(in)
		if err != nil || got != want {
			t.Errorf("parseColorParam(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12", "#gggggg", "red"} {
		if _, err := parseColorParam(bad); err == nil {
			t.Errorf("parseColorParam(%q) should fail", bad)
		}
	}
}

func TestStoreCloseRemovesEverything(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	id, path := store.NewID()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store.Track(id, path)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file survived Close")
	}
	if store.Remove(id) {
		t.Fatal("Remove after Close should report nothing removed")
	}
}
