package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	cerrors "github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/observability"
)

// Defaults for [Client].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultTimeout  = 30 * time.Second
	maxBody         = 32 << 20
)

// Client fetches remote documents with retry and an optional on-disk cache.
type Client struct {
	HTTP     *http.Client
	Cache    *ResponseCache // nil disables caching
	Attempts int
	Delay    time.Duration
	Logger   *log.Logger
}

// NewClient returns a client with default retry settings.
func NewClient(cache *ResponseCache) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: DefaultTimeout},
		Cache:    cache,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Get returns the body at url. A fresh cache entry is returned without a
// request; a stale one is used only when the fetch fails.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var stale []byte
	if c.Cache != nil {
		body, ok, err := c.Cache.Get(url)
		switch {
		case ok:
			c.debug("http cache hit", "url", url)
			return body, nil
		case errors.Is(err, ErrExpired):
			stale = body
		}
	}

	var body []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		body, err = c.fetch(ctx, url)
		if err != nil {
			c.debug("fetch failed", "url", url, "err", err)
		}
		return err
	})
	if err != nil {
		if stale != nil {
			c.warn("using stale cached response", "url", url, "err", err)
			return stale, nil
		}
		if ctx.Err() != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "fetch %s", url)
	}

	if c.Cache != nil {
		if err := c.Cache.Set(url, body); err != nil {
			c.warn("http cache write failed", "url", url, "err", err)
		}
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{URL: url, Status: resp.StatusCode}
		if se.Transient() {
			return nil, &RetryableError{Err: se}
		}
		return nil, se
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	return body, nil
}

func (c *Client) debug(msg string, kv ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, kv...)
	}
}

func (c *Client) warn(msg string, kv ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, kv...)
	}
}
