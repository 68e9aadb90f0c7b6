// Package download provides an HTTP Downloader for driver archives.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure Downloader implements the interface.
var _ driven.Downloader = (*Downloader)(nil)

// Default configuration values.
const (
	// DefaultHeaderTimeout bounds the wait for response headers. The body
	// itself is only bounded by the context, since the browser archive is
	// well over 100 MB.
	DefaultHeaderTimeout = 30 * time.Second

	// DefaultUserAgent identifies the tool to the storage bucket.
	DefaultUserAgent = "bom-scrapper"
)

// Config holds configuration for the downloader.
type Config struct {
	// HeaderTimeout is the response header timeout (default: 30s).
	HeaderTimeout time.Duration

	// UserAgent is sent with every request (default: bom-scrapper).
	UserAgent string

	// Client overrides the HTTP client entirely.
	Client *http.Client
}

// Downloader streams archives over HTTP.
type Downloader struct {
	client    *http.Client
	userAgent string
}

// NewDownloader creates a new HTTP downloader.
func NewDownloader(cfg Config) *Downloader {
	if cfg.HeaderTimeout == 0 {
		cfg.HeaderTimeout = DefaultHeaderTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := cfg.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.HeaderTimeout
		client = &http.Client{Transport: transport}
	}

	return &Downloader{
		client:    client,
		userAgent: cfg.UserAgent,
	}
}

// Download streams url into w.
func (d *Downloader) Download(
	ctx context.Context,
	url string,
	w io.Writer,
	progress driven.ProgressFunc,
) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: GET %s: %s", domain.ErrDownloadFailed, url, resp.Status)
	}

	total := resp.ContentLength
	src := io.Reader(resp.Body)
	if progress != nil {
		progress(0, total)
		src = &progressReader{r: resp.Body, total: total, fn: progress}
	}

	n, err := io.Copy(w, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: body truncated after %d bytes", domain.ErrDownloadFailed, n)
		}
		return n, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	if total >= 0 && n != total {
		return n, fmt.Errorf("%w: got %d of %d bytes", domain.ErrDownloadFailed, n, total)
	}
	return n, nil
}

// progressReader reports cumulative bytes read.
type progressReader struct {
	r       io.Reader
	written int64
	total   int64
	fn      driven.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.written, p.total)
	}
	return n, err
}
