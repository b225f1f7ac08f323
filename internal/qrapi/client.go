// Package qrapi talks to the QR generation endpoints: POST /generate,
// GET /download/{qr_id} and POST /cleanup.
package qrapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

// ErrNotFound is returned when the server no longer has the artifact.
var ErrNotFound = errors.New("artifact not found")

// DefaultFilename is used when a download carries no Content-Disposition.
const DefaultFilename = "qrcode.png"

// Result is the JSON body returned by POST /generate.
type Result struct {
	Success bool   `json:"success"`
	Image   string `json:"image,omitempty"`
	QRID    string `json:"qr_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client is a small HTTP client for the generation server.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	v := strings.TrimSpace(baseURL)
	if v == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("only http and https base URLs are supported")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log.New(os.Stderr, "[qrapi] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u.Path = c.base.Path + "/" + strings.Join(parts, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

// Generate submits the form. The body is decoded whatever the status code,
// since the server reports validation failures as {success:false}.
// A returned error means the exchange itself failed.
func (c *Client) Generate(ctx context.Context, st form.State) (*Result, error) {
	var body bytes.Buffer
	contentType, err := st.Encode(&body)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("generate"), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err)
	}
	c.logger.Printf("generate: status=%d success=%t qr_id=%s in %s", resp.StatusCode, res.Success, res.QRID, time.Since(start).Round(time.Millisecond))
	return &res, nil
}

// DownloadURL is the navigation target for an artifact.
func (c *Client) DownloadURL(id string) string {
	return c.endpoint("download", id)
}

// Download fetches rawURL into w and returns the server-suggested filename.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode >= 300:
		return "", fmt.Errorf("download failed: %s", resp.Status)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("download body: %w", err)
	}
	return filenameFrom(resp.Header.Get("Content-Disposition")), nil
}

// Cleanup tells the server the artifact may be discarded. The response is
// not inspected; only transport failures are reported.
func (c *Client) Cleanup(ctx context.Context, id string) error {
	vals := url.Values{"qr_id": {id}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("cleanup"), strings.NewReader(vals.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return DefaultFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return DefaultFilename
	}
	return params["filename"]
}
