package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxConnsPerHost != 100 {
		t.Errorf("MaxConnsPerHost = %d, want 100", cfg.MaxConnsPerHost)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should not be empty")
	}
}

func TestHTTPTransport_Request_ReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(DefaultConfig())
	resp, err := tr.Request(context.Background(), srv.URL, RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Body != "<html><body>hi</body></html>" {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestHTTPTransport_Request_SkipsBinaryBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(DefaultConfig())
	resp, err := tr.Request(context.Background(), srv.URL, RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != "" {
		t.Errorf("expected empty body for binary content type, got %q", resp.Body)
	}
}

func TestHTTPTransport_Fetch_AdaptsToDeepcrawlTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte("console.log('hi')"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(DefaultConfig())
	status, contentType, body, err := tr.Fetch(context.Background(), srv.URL, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 || contentType != "application/javascript" || body != "console.log('hi')" {
		t.Errorf("unexpected fetch result: %d %q %q", status, contentType, body)
	}
}

func TestHTTPTransport_SetHeaders(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Custom")
	}))
	defer srv.Close()

	tr := NewHTTPTransport(DefaultConfig())
	tr.SetHeaders(map[string]string{"X-Custom": "value"})
	if _, err := tr.Request(context.Background(), srv.URL, RequestOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "value" {
		t.Errorf("X-Custom header = %q, want %q", seen, "value")
	}
}
