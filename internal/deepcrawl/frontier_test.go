package deepcrawl

import (
	"testing"

	"github.com/corescan/corescan/internal/content"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/patterns"
)

func TestIsPageUrl(t *testing.T) {
	cases := map[string]bool{
		"https://app.example.com/":          true,
		"https://app.example.com/dashboard": true,
		"https://app.example.com/page.html": true,
		"https://app.example.com/app.js":    false,
		"https://app.example.com/logo.png":  false,
	}
	for u, want := range cases {
		if got := isPageUrl(u); got != want {
			t.Errorf("isPageUrl(%q) = %v, want %v", u, got, want)
		}
	}
}

func TestFrontierURLs_FiltersByConfigFlags(t *testing.T) {
	result := &content.Result{Categories: map[string][]detect.Detection{
		patterns.CategoryURLs: {
			{Value: "/dashboard"},
		},
		patterns.CategoryJSFiles: {
			{Value: "/static/app.js"},
		},
		patterns.CategoryRelativeAPIs: {
			{Value: "/api/users"},
		},
	}}

	cfg := Config{ScanHtmlFiles: true, ScanJsFiles: true, ScanApiFiles: true}
	urls := frontierURLs(result, "https://app.example.com", cfg)

	want := map[string]bool{
		"https://app.example.com/dashboard":  true,
		"https://app.example.com/static/app.js": true,
		"https://app.example.com/api/users":  true,
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for _, u := range urls {
		if !want[u] {
			t.Errorf("unexpected url %q", u)
		}
	}
}

func TestFrontierURLs_RespectsDisabledFlags(t *testing.T) {
	result := &content.Result{Categories: map[string][]detect.Detection{
		patterns.CategoryJSFiles: {{Value: "/static/app.js"}},
	}}
	cfg := Config{ScanHtmlFiles: true, ScanJsFiles: false, ScanApiFiles: true}
	urls := frontierURLs(result, "https://app.example.com", cfg)
	for _, u := range urls {
		if u == "https://app.example.com/static/app.js" {
			t.Fatalf("expected JS file to be excluded when ScanJsFiles is false")
		}
	}
}
