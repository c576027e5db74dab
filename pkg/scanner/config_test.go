package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corescan/corescan/internal/deepcrawl"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.PerRequestTimeout != 5*time.Second {
		t.Errorf("PerRequestTimeout = %v, want 5s", cfg.PerRequestTimeout)
	}
	if !cfg.ScanJsFiles || !cfg.ScanHtmlFiles {
		t.Error("ScanJsFiles and ScanHtmlFiles should default true")
	}
	if cfg.ScanApiFiles {
		t.Error("ScanApiFiles should default false")
	}
	if !cfg.VueDetector.Enabled {
		t.Error("VueDetector.Enabled should default true")
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v, want {5 10}", cfg.RateLimit)
	}
}

func TestScopeConfig_Mode(t *testing.T) {
	cases := []struct {
		name string
		cfg  ScopeConfig
		want deepcrawl.DomainMode
	}{
		{"same origin", ScopeConfig{}, deepcrawl.DomainSameOrigin},
		{"subdomains", ScopeConfig{AllowSubdomains: true}, deepcrawl.DomainSameOriginAndSubdomains},
		{"any", ScopeConfig{AllowAllDomains: true}, deepcrawl.DomainAny},
		{"any wins over subdomains", ScopeConfig{AllowSubdomains: true, AllowAllDomains: true}, deepcrawl.DomainAny},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.cfg.Mode()
			if got != c.want {
				t.Errorf("Mode() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing target")
	}

	cfg.Target = "https://example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := cfg.Clone()
	bad.MaxDepth = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for MaxDepth < 1")
	}

	bad = cfg.Clone()
	bad.Concurrency = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for Concurrency < 1")
	}

	bad = cfg.Clone()
	bad.PerRequestTimeout = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-positive PerRequestTimeout")
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "https://example.com"
	cfg.CustomHeaders = map[string]string{"X-Test": "1"}

	clone := cfg.Clone()
	clone.Target = "https://other.example.com"
	clone.CustomHeaders["X-Test"] = "2"

	if cfg.Target == clone.Target {
		t.Error("Clone should not alias Target mutation")
	}
	if cfg.CustomHeaders["X-Test"] != "1" {
		t.Error("Clone should deep-copy CustomHeaders")
	}
}

func TestConfig_SaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Target = "https://example.com"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Target != cfg.Target {
		t.Errorf("Target = %q, want %q", loaded.Target, cfg.Target)
	}
	if loaded.MaxDepth != cfg.MaxDepth {
		t.Errorf("MaxDepth = %d, want %d", loaded.MaxDepth, cfg.MaxDepth)
	}
}

func TestConfig_LoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "target: https://example.com\nmaxDepth: 7\nconcurrency: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Target != "https://example.com" {
		t.Errorf("Target = %q, want https://example.com", cfg.Target)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d, want 7", cfg.MaxDepth)
	}
}
