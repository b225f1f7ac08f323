package controller_test

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrform/internal/controller"
	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/internal/handlers"
	"github.com/cristianadrielbraun/qrform/internal/qrapi"
	"github.com/cristianadrielbraun/qrform/internal/view"
)

func TestSessionAgainstDevServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := handlers.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	srv := httptest.NewServer(handlers.NewRouter(handlers.New(store, nil)))
	defer srv.Close()

	client, err := qrapi.New(srv.URL, qrapi.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	page := view.NewPage()
	term := view.NewTerminal(io.Discard, outDir, client, nil)
	fs := form.NewStore(form.Defaults())
	_ = fs.Set(form.FieldVersion, "5")
	ctrl := controller.New(client, view.Tee{term, page}, fs)
	ctrl.Initialize()

	ctrl.Submit(context.Background())
	id := ctrl.CurrentID()
	if id == "" {
		t.Fatalf("no artifact id, page error: %q", page.State().Error)
	}
	st := page.State()
	if !strings.HasPrefix(st.ImageSrc, "data:image/png;base64,") || st.DownloadURL != client.DownloadURL(id) || st.Generating {
		t.Fatalf("unexpected page state: generating=%t download=%q", st.Generating, st.DownloadURL)
	}

	if !ctrl.Download() {
		t.Fatal("download should navigate")
	}
	if _, err := os.Stat(term.LastSaved()); err != nil {
		t.Fatalf("artifact not saved: %v", err)
	}

	_ = fs.Set(form.FieldFillColor, "#12345")
	ctrl.Submit(context.Background())
	if got := page.State().Error; !strings.HasPrefix(got, "Invalid color") {
		t.Fatalf("error = %q", got)
	}
	if ctrl.CurrentID() != id {
		t.Fatal("failure must keep the previous artifact id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctrl.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := store.Path(id); ok {
		t.Fatal("artifact should be cleaned up when the session closes")
	}
}
