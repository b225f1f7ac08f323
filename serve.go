package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrform/internal/config"
	"github.com/cristianadrielbraun/qrform/internal/handlers"
	"github.com/cristianadrielbraun/qrform/internal/logging"
)

func runServe(ctx context.Context, cfg config.Config) error {
	store, err := handlers.NewStore(cfg.Server.StorageDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("remove temporary files: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Writer()
	h := handlers.New(store, logging.New(""))
	r := handlers.NewRouter(h, gin.Logger(), gin.Recovery())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("qrform dev server listening on %s (storage %s)", cfg.Server.Addr, store.Dir())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
