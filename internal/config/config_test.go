package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()
	path := writeFile(t, dir, "qrform.yaml", `
baseURL: http://qr.internal:9000
debounce: 250ms
outputDir: out
form:
  version: "5"
  color_mask: radial_gradient
logs:
  directory: logs
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://qr.internal:9000" || cfg.Debounce != 250*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.OutputDir != filepath.Join(dir, "out") || cfg.Logs.Directory != filepath.Join(dir, "logs") {
		t.Fatalf("relative paths not resolved: %q %q", cfg.OutputDir, cfg.Logs.Directory)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.Logs.MaxSizeMB != 25 || cfg.Server.Addr != ":8080" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	st, err := cfg.FormState()
	if err != nil {
		t.Fatalf("form state: %v", err)
	}
	want := form.Defaults()
	want.Version = 5
	want.ColorMask = form.MaskRadialGradient
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("form state mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QRFORM_BASE_URL", "http://env:1234")
	t.Setenv("QRFORM_DEBOUNCE", "1s")
	t.Setenv("PORT", "9999")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://env:1234" || cfg.Debounce != time.Second || cfg.Server.Addr != ":9999" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "QRFORM_OUTPUT_DIR=/tmp/qr-out\n")
	t.Cleanup(func() { os.Unsetenv("QRFORM_OUTPUT_DIR") })
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != "/tmp/qr-out" {
		t.Fatalf("output dir = %q", cfg.OutputDir)
	}
}

func TestLoadErrors(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
	t.Setenv("QRFORM_DEBOUNCE", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("bad duration should fail")
	}
}

func TestFormStateRejectsUnknownValues(t *testing.T) {
	cfg := Default()
	cfg.Form = map[string]string{"module_drawer": "hexagon"}
	if _, err := cfg.FormState(); err == nil {
		t.Fatal("expected error")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
