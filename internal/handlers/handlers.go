// Package handlers is a development server for the QR form: it implements
// POST /generate, GET /download/:id and POST /cleanup so the client can be
// run and tested end to end.
package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxUploadBytes caps the request body, matching the form's upload limit.
const MaxUploadBytes = 16 << 20

// Handler holds the artifact store shared by the routes.
type Handler struct {
	store  *Store
	logger *log.Logger
}

// New returns a Handler backed by store.
func New(store *Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{store: store, logger: logger}
}

// NewRouter wires the contract routes. Pass gin.Logger() and friends as
// middleware; tests pass none.
func NewRouter(h *Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware...)
	r.MaxMultipartMemory = MaxUploadBytes
	r.Use(limitBody(MaxUploadBytes))

	r.POST("/generate", h.Generate)
	r.GET("/download/:id", h.Download)
	r.POST("/cleanup", h.Cleanup)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
