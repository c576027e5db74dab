package scanner

import (
	"testing"
	"time"
)

func newTestScanner() *Scanner {
	return &Scanner{config: DefaultConfig()}
}

func TestWithTarget(t *testing.T) {
	s := newTestScanner()
	if err := WithTarget("https://example.com")(s); err != nil {
		t.Fatalf("WithTarget() error = %v", err)
	}
	if s.config.Target != "https://example.com" {
		t.Errorf("Target = %s, want https://example.com", s.config.Target)
	}
}

func TestWithMaxDepth(t *testing.T) {
	tests := []struct {
		name   string
		input  int
		expect int
	}{
		{"normal value", 5, 5},
		{"zero", 0, 1},
		{"negative", -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScanner()
			if err := WithMaxDepth(tt.input)(s); err != nil {
				t.Fatalf("WithMaxDepth() error = %v", err)
			}
			if s.config.MaxDepth != tt.expect {
				t.Errorf("MaxDepth = %d, want %d", s.config.MaxDepth, tt.expect)
			}
		})
	}
}

func TestWithConcurrency(t *testing.T) {
	s := newTestScanner()
	if err := WithConcurrency(0)(s); err != nil {
		t.Fatalf("WithConcurrency() error = %v", err)
	}
	if s.config.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", s.config.Concurrency)
	}
}

func TestWithTimeout(t *testing.T) {
	s := newTestScanner()
	if err := WithTimeout(2 * time.Second)(s); err != nil {
		t.Fatalf("WithTimeout() error = %v", err)
	}
	if s.config.PerRequestTimeout != 2*time.Second {
		t.Errorf("PerRequestTimeout = %v, want 2s", s.config.PerRequestTimeout)
	}
}

func TestWithDomainScope(t *testing.T) {
	s := newTestScanner()
	if err := WithDomainScope(true, false)(s); err != nil {
		t.Fatalf("WithDomainScope() error = %v", err)
	}
	if !s.config.Scope.AllowSubdomains || s.config.Scope.AllowAllDomains {
		t.Errorf("Scope = %+v, want {true false}", s.config.Scope)
	}
}

func TestWithFrontierFilters(t *testing.T) {
	s := newTestScanner()
	if err := WithFrontierFilters(false, false, true)(s); err != nil {
		t.Fatalf("WithFrontierFilters() error = %v", err)
	}
	if s.config.ScanJsFiles || s.config.ScanHtmlFiles || !s.config.ScanApiFiles {
		t.Errorf("frontier filters = js:%v html:%v api:%v, want false false true",
			s.config.ScanJsFiles, s.config.ScanHtmlFiles, s.config.ScanApiFiles)
	}
}

func TestWithVueDetector(t *testing.T) {
	s := newTestScanner()
	cfg := VueDetectorConfig{Enabled: false, Timeout: time.Second, MaxDepth: 10}
	if err := WithVueDetector(cfg)(s); err != nil {
		t.Fatalf("WithVueDetector() error = %v", err)
	}
	if s.config.VueDetector != cfg {
		t.Errorf("VueDetector = %+v, want %+v", s.config.VueDetector, cfg)
	}
}

func TestWithRateLimit(t *testing.T) {
	s := newTestScanner()
	if err := WithRateLimit(20, 40)(s); err != nil {
		t.Fatalf("WithRateLimit() error = %v", err)
	}
	if s.config.RateLimit.RequestsPerSecond != 20 || s.config.RateLimit.Burst != 40 {
		t.Errorf("RateLimit = %+v, want {20 40}", s.config.RateLimit)
	}
}

func TestWithUserAgent(t *testing.T) {
	s := newTestScanner()
	if err := WithUserAgent("custom-agent/1.0")(s); err != nil {
		t.Fatalf("WithUserAgent() error = %v", err)
	}
	if s.config.UserAgent != "custom-agent/1.0" {
		t.Errorf("UserAgent = %s, want custom-agent/1.0", s.config.UserAgent)
	}
}

func TestWithCustomHeaders(t *testing.T) {
	s := newTestScanner()
	if err := WithCustomHeaders(map[string]string{"X-A": "1"})(s); err != nil {
		t.Fatalf("WithCustomHeaders() error = %v", err)
	}
	if err := WithCustomHeaders(map[string]string{"X-B": "2"})(s); err != nil {
		t.Fatalf("WithCustomHeaders() error = %v", err)
	}
	if s.config.CustomHeaders["X-A"] != "1" || s.config.CustomHeaders["X-B"] != "2" {
		t.Errorf("CustomHeaders = %+v, want both X-A and X-B merged", s.config.CustomHeaders)
	}
}

func TestWithVerboseAndDebug(t *testing.T) {
	s := newTestScanner()
	if err := WithVerbose(true)(s); err != nil {
		t.Fatalf("WithVerbose() error = %v", err)
	}
	if err := WithDebug(true)(s); err != nil {
		t.Fatalf("WithDebug() error = %v", err)
	}
	if !s.config.Verbose || !s.config.Debug {
		t.Errorf("Verbose/Debug = %v/%v, want true/true", s.config.Verbose, s.config.Debug)
	}
}

func TestWithConfig(t *testing.T) {
	s := newTestScanner()
	cfg := DefaultConfig()
	cfg.Target = "https://replaced.example.com"
	if err := WithConfig(cfg)(s); err != nil {
		t.Fatalf("WithConfig() error = %v", err)
	}
	if s.config != cfg {
		t.Error("WithConfig should replace the scanner's config pointer")
	}
}
