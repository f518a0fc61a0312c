// Package web is the HTTP transport used to download channel pages.
package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/oops"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; tgweb2rss/1.0)"
	// maxBodySize bounds a single page download.
	maxBodySize = 8 << 20
)

// Config holds the client settings. Zero values select the defaults.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// HTTPClient replaces the underlying client, e.g. to go through a proxy.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client downloads pages with GET requests. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// New creates a new web client
func New(cfg Config) *Client {
	c := &Client{
		http:      cfg.HTTPClient,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Get fetches rawURL with params appended to its query and returns the
// response body. Responses other than 2xx fail with errors.ErrUnexpectedStatus.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", oops.In("web").With("url", rawURL).Wrap(err)
	}

	query := u.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return "", oops.In("web").With("url", u.String()).Wrap(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", oops.In("web").With("url", u.String()).Wrap(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Fetched page", "url", u.String(), "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", oops.In("web").
			With("url", u.String(), "status", resp.StatusCode).
			Wrapf(errors.ErrUnexpectedStatus, "GET %s: %s", u.Redacted(), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", oops.In("web").With("url", u.String()).Wrap(err)
	}

	return string(body), nil
}
