// Package apiclient talks to the external barangay REST API: it encodes
// list parameters, decodes the offset pagination envelope, maps error
// responses to typed errors, and coalesces identical concurrent reads.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/timeouts"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Config describes how to reach the API. Either Token or the client
// credential fields may be set; with neither, requests are anonymous.
type Config struct {
	BaseURL string

	// Token is a static bearer token.
	Token string

	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// Timeout bounds a whole request. Zero uses timeouts.Fetch().
	Timeout time.Duration

	// Transport wraps the underlying round tripper, for metrics.
	Transport http.RoundTripper

	UserAgent string
}

// Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	token     string
	userAgent string
	timeout   time.Duration
	log       *zap.Logger

	reads singleflight.Group
}

// New validates cfg and builds a client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	hc := &http.Client{Transport: rt}

	if cfg.ClientID != "" {
		if cfg.TokenURL == "" {
			return nil, errors.New("apiclient: client credentials need a token URL")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		// Token requests use the same transport, so they are measured too.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = cc.Client(ctx)
		if cfg.Token != "" {
			logger.Warn("both api token and client credentials configured; using client credentials")
			cfg.Token = ""
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "barangayhub"
	}

	return &Client{
		base:      base,
		http:      hc,
		token:     cfg.Token,
		userAgent: ua,
		timeout:   cfg.Timeout,
		log:       logger,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) requestTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return timeouts.Fetch()
}

// Get issues a GET for path with query q and returns the body of a 2xx
// response. Concurrent calls for the same path and query share one
// request; each caller still stops waiting when its own ctx ends.
func (c *Client) Get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	key := path
	if len(q) > 0 {
		key += "?" + q.Encode()
	}

	ch := c.reads.DoChan(key, func() (any, error) {
		// The shared request outlives any single caller's cancellation.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.requestTimeout())
		defer cancel()
		return c.do(rctx, http.MethodGet, path, q)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("api read coalesced", zap.String("key", key))
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
		var eb struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Detail = eb.Detail
		}
		c.log.Warn("api request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}
	return body, nil
}

// Ping checks that the API answers at all. Any response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/", nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return nil
	}
	return err
}
