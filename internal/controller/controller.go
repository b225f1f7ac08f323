// Package controller drives one QR form session: it submits the form,
// applies the result to a View and manages the lifecycle of the server-side
// artifact (download and cleanup when the session ends).
package controller

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cristianadrielbraun/qrform/internal/debounce"
	"github.com/cristianadrielbraun/qrform/internal/form"
	"github.com/cristianadrielbraun/qrform/internal/qrapi"
)

const (
	fallbackError         = "Failed to generate QR code"
	transportErrorPrefix  = "An error occurred: "
	defaultCleanupTimeout = 5 * time.Second
)

// Client is the subset of qrapi.Client the controller uses.
type Client interface {
	Generate(ctx context.Context, st form.State) (*qrapi.Result, error)
	Cleanup(ctx context.Context, id string) error
	DownloadURL(id string) string
}

// View is whatever displays the form. Implementations must be safe for use
// from several goroutines; state changes arrive serialized, Navigate may not.
type View interface {
	SetVersionOptions(versions []int)
	SetColorLabels(labels form.ColorLabels)
	SetGenerating(busy bool)
	ClearError()
	ShowError(msg string)
	ShowImage(src string)
	// SetDownload enables the download action for url; "" disables it.
	SetDownload(url string)
	Navigate(url string)
}

// Source supplies the form values at submission time.
type Source interface {
	Snapshot() form.State
}

// Controller is one form session. Create it with New and end it with Close.
type Controller struct {
	client   Client
	view     View
	source   Source
	debounce *debounce.Debouncer
	logger   *log.Logger

	cleanupTimeout time.Duration
	preflight      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // in-flight generations and cleanups

	mu        sync.Mutex
	seq       uint64
	currentID string
	armed     bool
	closed    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period for DebouncedGenerate.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = debounce.New(d) }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCleanupTimeout bounds each background cleanup request.
func WithCleanupTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.cleanupTimeout = d
		}
	}
}

// WithPreflightValidation checks the form locally and shows validation
// failures without contacting the server.
func WithPreflightValidation() Option {
	return func(c *Controller) { c.preflight = true }
}

// New creates a session bound to client, view and source.
func New(client Client, view View, source Source, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		client:         client,
		view:           view,
		source:         source,
		debounce:       debounce.New(debounce.DefaultDelay),
		logger:         log.New(io.Discard, "", 0),
		cleanupTimeout: defaultCleanupTimeout,
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize fills the version selector and sets the color labels for the
// current mask. Call it once before the first edit.
func (c *Controller) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetVersionOptions(form.VersionOptions())
	c.view.SetColorLabels(form.LabelsFor(c.source.Snapshot().ColorMask))
}

// UpdateColorInputs relabels the color inputs for mask. No request is made.
func (c *Controller) UpdateColorInputs(mask form.ColorMask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetColorLabels(form.LabelsFor(mask))
}

// FieldChanged is the listener for every input: the color mask relabels
// the inputs, then any edit schedules a debounced generation.
func (c *Controller) FieldChanged(field string) {
	if field == form.FieldColorMask {
		c.UpdateColorInputs(c.source.Snapshot().ColorMask)
	}
	c.DebouncedGenerate()
}

// Submit is an explicit submit: generate now with the loading state shown.
func (c *Controller) Submit(ctx context.Context) {
	c.Generate(ctx, true)
}

// DebouncedGenerate schedules a quiet generation after the debounce delay,
// replacing any schedule that has not fired yet.
func (c *Controller) DebouncedGenerate() {
	c.debounce.Trigger(func() {
		c.Generate(c.ctx, false)
	})
}

// Generate submits the current form and applies the outcome to the view.
// Failures end up as an error notice; nothing is returned or raised.
// Only the newest request may touch the view: an older response that
// arrives late is dropped.
func (c *Controller) Generate(ctx context.Context, showLoading bool) {
	c.debounce.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	token := c.seq
	c.wg.Add(1)
	defer c.wg.Done()
	if showLoading {
		c.view.SetGenerating(true)
	}
	c.view.ClearError()
	c.mu.Unlock()

	st := c.source.Snapshot()
	var (
		res *qrapi.Result
		err error
	)
	if c.preflight {
		if verr := st.Validate(); verr != nil {
			res = &qrapi.Result{Error: verr.Error()}
		}
	}
	if res == nil {
		res, err = c.client.Generate(ctx, st)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The session is gone; nothing will ever download this artifact.
		if err == nil && res.Success {
			c.Cleanup(res.QRID)
		}
		return
	}
	if token != c.seq {
		c.logger.Printf("dropping stale response for request %d, latest is %d", token, c.seq)
		return
	}
	c.view.SetGenerating(false)
	switch {
	case err != nil:
		c.logger.Printf("generate failed: %v", err)
		c.view.ShowError(transportErrorPrefix + err.Error())
	case !res.Success:
		msg := res.Error
		if msg == "" {
			msg = fallbackError
		}
		c.logger.Printf("generate rejected: %s", msg)
		c.view.ShowError(msg)
	default:
		c.view.ShowImage(res.Image)
		if res.QRID != "" {
			c.view.SetDownload(c.client.DownloadURL(res.QRID))
		}
		c.currentID = res.QRID
		c.armed = true
		c.logger.Printf("generated qr_id=%s", res.QRID)
	}
}

// CurrentID returns the id of the last applied successful generation.
func (c *Controller) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// Download navigates the view to the current artifact. It reports false and
// does nothing when no generation has succeeded yet.
func (c *Controller) Download() bool {
	c.mu.Lock()
	id := c.currentID
	c.mu.Unlock()
	if id == "" {
		return false
	}
	c.view.Navigate(c.client.DownloadURL(id))
	return true
}

// Cleanup tells the server id may be discarded. It returns immediately; the
// request runs in the background and is abandoned if it outlives Close.
func (c *Controller) Cleanup(id string) {
	if id == "" {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.cleanupTimeout)
		defer cancel()
		if err := c.client.Cleanup(ctx, id); err != nil {
			c.logger.Printf("cleanup %s: %v", id, err)
			return
		}
		c.logger.Printf("cleanup sent for qr_id=%s", id)
	}()
}

// Close ends the session, the equivalent of the page unloading. A pending
// debounced generation is dropped and, if a generation succeeded, exactly
// one cleanup is sent for the last id. A generation still in flight is
// cleaned up when its response arrives. Close waits for in-flight requests
// and outstanding cleanups until ctx is done. Later calls are no-ops.
func (c *Controller) Close(ctx context.Context) error {
	c.debounce.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	id, armed := c.currentID, c.armed
	c.armed = false
	c.mu.Unlock()

	if armed {
		c.Cleanup(id)
	}
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
