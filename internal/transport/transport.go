// Package transport provides the scanner's request layer: a small
// interface the deep crawl scheduler depends on, and a default
// HTTP-backed implementation adapted from the teacher's fast HTTP
// client (connection pooling, content-type binary filtering, retry).
package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/corescan/corescan/internal/corerrors"
)

// RequestOptions parameterizes one Request call.
type RequestOptions struct {
	Headers map[string]string
	Timeout time.Duration
}

// Response is the raw result of fetching one URL.
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
	FinalURL    string
	Duration    time.Duration
}

// Transport fetches a single URL. Satisfied by HTTPTransport.
type Transport interface {
	Request(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error)
}

// maxBodyBytes bounds how much of a response body is read, mirroring the
// teacher's 5MB cap.
const maxBodyBytes = 5 * 1024 * 1024

// binaryContentPrefixes are content types never worth extracting from.
var binaryContentPrefixes = []string{
	"image/", "video/", "audio/", "font/",
	"application/octet-stream", "application/pdf", "application/zip",
	"application/x-font", "application/vnd.ms-fontobject",
}

// HTTPTransport is a connection-pooled HTTP client tuned for crawling many
// hosts concurrently, adapted from the teacher's internal/http.FastClient.
type HTTPTransport struct {
	client    *http.Client
	userAgent string

	mu      sync.RWMutex
	headers map[string]string
}

// Config configures HTTPTransport.
type Config struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	UserAgent           string
	SkipTLSVerify       bool
	Headers             map[string]string
}

// DefaultConfig returns tuned defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:             10 * time.Second,
		MaxIdleConns:        500,
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     100,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// NewHTTPTransport builds an HTTPTransport from cfg.
func NewHTTPTransport(cfg Config) *HTTPTransport {
	rt := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify},
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
	}
}

// SetHeaders updates the default headers sent with every request.
func (t *HTTPTransport) SetHeaders(headers map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.headers = headers
}

// Request fetches rawURL, returning its status, content type and body.
// Binary content types are reported with an empty body so callers never
// hand image/font/archive bytes into the extraction pipeline.
func (t *HTTPTransport) Request(ctx context.Context, rawURL string, opts RequestOptions) (*Response, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "transport", err, "failed to build request").WithURL(rawURL)
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")

	t.mu.RLock()
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	t.mu.RUnlock()
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	client := t.client
	if opts.Timeout > 0 {
		cloned := *t.client
		cloned.Timeout = opts.Timeout
		client = &cloned
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "transport", err, "request failed").WithURL(rawURL)
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}

	if isBinaryContentType(out.ContentType) {
		out.Duration = time.Since(start)
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "transport", err, "failed reading body").WithURL(rawURL)
	}
	out.Body = string(body)
	out.Duration = time.Since(start)
	return out, nil
}

// Fetch adapts Request to internal/deepcrawl's narrower Transport
// interface (status, content type, body, error).
func (t *HTTPTransport) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (int, string, string, error) {
	resp, err := t.Request(ctx, rawURL, RequestOptions{Timeout: timeout})
	if err != nil {
		return 0, "", "", err
	}
	return resp.StatusCode, resp.ContentType, resp.Body, nil
}

// Close releases pooled connections.
func (t *HTTPTransport) Close() {
	t.client.CloseIdleConnections()
}

func isBinaryContentType(contentType string) bool {
	lower := strings.ToLower(contentType)
	for _, prefix := range binaryContentPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
