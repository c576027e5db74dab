package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corescan/corescan/internal/deepcrawl"
)

// ScopeConfig mirrors spec §9's domainScanSettings: which hosts the deep
// crawl scheduler follows links onto.
type ScopeConfig struct {
	AllowSubdomains bool `json:"allowSubdomains" yaml:"allowSubdomains"`
	AllowAllDomains bool `json:"allowAllDomains" yaml:"allowAllDomains"`
}

// Mode resolves the scope config down to the scheduler's DomainMode enum.
func (s ScopeConfig) Mode() deepcrawl.DomainMode {
	switch {
	case s.AllowAllDomains:
		return deepcrawl.DomainAny
	case s.AllowSubdomains:
		return deepcrawl.DomainSameOriginAndSubdomains
	default:
		return deepcrawl.DomainSameOrigin
	}
}

// VueDetectorConfig mirrors spec §9's vueDetectorSettings.
type VueDetectorConfig struct {
	Enabled          bool          `json:"enabled" yaml:"enabled"`
	EnableGuardPatch bool          `json:"enableGuardPatch" yaml:"enableGuardPatch"`
	EnableAuthPatch  bool          `json:"enableAuthPatch" yaml:"enableAuthPatch"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`
	MaxDepth         int           `json:"maxDepth" yaml:"maxDepth"`
}

// RateLimitConfig parameterizes the per-domain pacing internal/ratelimit
// applies between fetches.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// Config is the scanner's full configuration, built the way the
// teacher's pkg/crawler.Config is: a flat struct with tags for both
// on-disk formats, a constructor, file load/save, Validate, and Clone.
type Config struct {
	Target string `json:"target" yaml:"target"`

	MaxDepth          int           `json:"maxDepth" yaml:"maxDepth"`
	Concurrency       int           `json:"concurrency" yaml:"concurrency"`
	PerRequestTimeout time.Duration `json:"perRequestTimeout" yaml:"perRequestTimeout"`

	ScanJsFiles   bool `json:"scanJsFiles" yaml:"scanJsFiles"`
	ScanHtmlFiles bool `json:"scanHtmlFiles" yaml:"scanHtmlFiles"`
	ScanApiFiles  bool `json:"scanApiFiles" yaml:"scanApiFiles"`

	Scope       ScopeConfig       `json:"scope" yaml:"scope"`
	VueDetector VueDetectorConfig `json:"vueDetector" yaml:"vueDetector"`
	RateLimit   RateLimitConfig   `json:"rateLimit" yaml:"rateLimit"`

	UserAgent     string            `json:"userAgent" yaml:"userAgent"`
	CustomHeaders map[string]string `json:"customHeaders" yaml:"customHeaders"`

	SettingsFilePath string `json:"settingsFilePath" yaml:"settingsFilePath"`
	StateFilePath    string `json:"stateFilePath" yaml:"stateFilePath"`
	OutputFilePath   string `json:"outputFilePath" yaml:"outputFilePath"`

	Verbose bool `json:"verbose" yaml:"verbose"`
	Debug   bool `json:"debug" yaml:"debug"`
}

// DefaultConfig mirrors the teacher's DefaultConfig: sane values for an
// out-of-the-box single-target scan.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:          3,
		Concurrency:       4,
		PerRequestTimeout: 5 * time.Second,
		ScanJsFiles:       true,
		ScanHtmlFiles:     true,
		ScanApiFiles:      false,
		Scope:             ScopeConfig{AllowSubdomains: false, AllowAllDomains: false},
		VueDetector: VueDetectorConfig{
			Enabled:  true,
			Timeout:  5 * time.Second,
			MaxDepth: 500,
		},
		RateLimit:     RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
		UserAgent:     "corescan/1.0",
		CustomHeaders: make(map[string]string),
	}
}

// LoadFromFile loads a Config from a YAML (or JSON, since yaml.v3 parses
// well-formed JSON directly) file, matching the teacher's
// pkg/crawler/config.go LoadFromFile order.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config as YAML or JSON: %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile writes the Config as JSON, mirroring the teacher's
// Config.SaveToFile.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that cannot produce a meaningful scan.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("target URL is required")
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("maxDepth must be at least 1")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.PerRequestTimeout <= 0 {
		return fmt.Errorf("perRequestTimeout must be positive")
	}
	return nil
}

// Clone deep-copies a Config via a JSON round-trip, matching the
// teacher's Config.Clone.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	_ = json.Unmarshal(data, clone)
	return clone
}
