package scanner

import (
	"time"

	"github.com/corescan/corescan/internal/corelog"
)

// Option is a functional option for configuring a Scanner, matching the
// teacher's pkg/crawler Option pattern.
type Option func(*Scanner) error

// WithTarget sets the target URL to scan.
func WithTarget(url string) Option {
	return func(s *Scanner) error {
		s.config.Target = url
		return nil
	}
}

// WithMaxDepth sets the deep crawl's maximum layer depth.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) error {
		if depth < 1 {
			depth = 1
		}
		s.config.MaxDepth = depth
		return nil
	}
}

// WithConcurrency sets the per-layer worker pool size.
func WithConcurrency(n int) Option {
	return func(s *Scanner) error {
		if n < 1 {
			n = 1
		}
		s.config.Concurrency = n
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scanner) error {
		s.config.PerRequestTimeout = timeout
		return nil
	}
}

// WithDomainScope sets the deep crawl's domain policy inputs.
func WithDomainScope(allowSubdomains, allowAllDomains bool) Option {
	return func(s *Scanner) error {
		s.config.Scope.AllowSubdomains = allowSubdomains
		s.config.Scope.AllowAllDomains = allowAllDomains
		return nil
	}
}

// WithFrontierFilters sets which discovered-URL classes the deep crawl
// scheduler follows (spec §4.10's scanJsFiles/scanHtmlFiles/scanApiFiles).
func WithFrontierFilters(scanJS, scanHTML, scanAPI bool) Option {
	return func(s *Scanner) error {
		s.config.ScanJsFiles = scanJS
		s.config.ScanHtmlFiles = scanHTML
		s.config.ScanApiFiles = scanAPI
		return nil
	}
}

// WithVueDetector configures the Vue introspector (C8).
func WithVueDetector(cfg VueDetectorConfig) Option {
	return func(s *Scanner) error {
		s.config.VueDetector = cfg
		return nil
	}
}

// WithRateLimit sets the per-domain request pacing.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(s *Scanner) error {
		s.config.RateLimit.RequestsPerSecond = requestsPerSecond
		s.config.RateLimit.Burst = burst
		return nil
	}
}

// WithUserAgent sets the user agent string sent on every request.
func WithUserAgent(ua string) Option {
	return func(s *Scanner) error {
		s.config.UserAgent = ua
		return nil
	}
}

// WithCustomHeaders merges additional headers into every request.
func WithCustomHeaders(headers map[string]string) Option {
	return func(s *Scanner) error {
		if s.config.CustomHeaders == nil {
			s.config.CustomHeaders = make(map[string]string)
		}
		for k, v := range headers {
			s.config.CustomHeaders[k] = v
		}
		return nil
	}
}

// WithSettingsFile points the scanner at a settings file (spec §9's
// regexSettings/customRegexConfigs/domainScanSettings/vueDetectorSettings).
func WithSettingsFile(path string) Option {
	return func(s *Scanner) error {
		s.config.SettingsFilePath = path
		return nil
	}
}

// WithStateFile enables BoltDB-backed persistence of scan results and
// deep-crawl state at path.
func WithStateFile(path string) Option {
	return func(s *Scanner) error {
		s.config.StateFilePath = path
		return nil
	}
}

// WithOutputFile sets where the final ScanResult is written as JSON.
func WithOutputFile(path string) Option {
	return func(s *Scanner) error {
		s.config.OutputFilePath = path
		return nil
	}
}

// WithVerbose enables info-level logging.
func WithVerbose(verbose bool) Option {
	return func(s *Scanner) error {
		s.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug-level logging.
func WithDebug(debug bool) Option {
	return func(s *Scanner) error {
		s.config.Debug = debug
		return nil
	}
}

// WithLogger sets a custom logger, bypassing the one New would otherwise
// build from Verbose/Debug.
func WithLogger(l *corelog.Logger) Option {
	return func(s *Scanner) error {
		s.log = l
		return nil
	}
}

// WithConfig replaces the entire configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Scanner) error {
		s.config = cfg
		return nil
	}
}
