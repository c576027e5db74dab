// Package scanner is the library surface other programs embed: it wires
// the Pattern/AST extraction engines, the Content Extractor, the Vue and
// webpack analyzers, and the Deep Crawl Scheduler into one orchestrator,
// the way the teacher's pkg/crawler.Crawler wires its own components.
package scanner

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/content"
	"github.com/corescan/corescan/internal/coremetrics"
	"github.com/corescan/corescan/internal/corelog"
	"github.com/corescan/corescan/internal/corerrors"
	"github.com/corescan/corescan/internal/deepcrawl"
	"github.com/corescan/corescan/internal/patterns"
	"github.com/corescan/corescan/internal/persist"
	"github.com/corescan/corescan/internal/ratelimit"
	"github.com/corescan/corescan/internal/settingsstore"
	"github.com/corescan/corescan/internal/transport"
	"github.com/corescan/corescan/internal/vueintrospect"
	"github.com/corescan/corescan/internal/visitors"
	"github.com/corescan/corescan/internal/webpackchunks"
)

// Scanner is the main scan orchestrator.
type Scanner struct {
	config *Config

	log     *corelog.Logger
	metrics *coremetrics.Collector

	patternsExt *patterns.Extractor
	astExt      *astextract.Extractor
	contentExt  *content.Extractor
	transport   *transport.HTTPTransport
	limiter     *ratelimit.Limiter

	settings settingsstore.Store
	store    *persist.BoltStore

	mu        sync.Mutex
	scheduler *deepcrawl.Scheduler
	running   atomic.Bool
}

// New builds a Scanner from the given options, validating the resulting
// configuration before wiring components.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{config: DefaultConfig()}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if s.log == nil {
		s.log = corelog.New(corelog.Config{Level: levelFor(s.config), Pretty: true, Component: "scanner"})
	}

	s.metrics = coremetrics.New()

	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize wires every internal component, applying settings-store
// overrides when a settings file was configured.
func (s *Scanner) initialize() error {
	patternsExt, err := patterns.NewExtractor()
	if err != nil {
		return fmt.Errorf("failed to create pattern extractor: %w", err)
	}
	s.patternsExt = patternsExt

	if s.config.SettingsFilePath != "" {
		store, err := settingsstore.NewFileStore(s.config.SettingsFilePath)
		if err != nil {
			return fmt.Errorf("failed to load settings file: %w", err)
		}
		s.settings = store
		if err := s.applySettings(store); err != nil {
			return err
		}
	}

	s.astExt = astextract.NewExtractor(s.log)
	s.astExt.RegisterVisitor(visitors.NewCredential())
	s.astExt.RegisterVisitor(visitors.NewAPIEndpoint())
	s.astExt.RegisterVisitor(visitors.NewSensitiveFunction())
	s.astExt.RegisterVisitor(visitors.NewConfigObject())
	s.astExt.RegisterVisitor(visitors.NewEncodedString())

	s.contentExt = content.NewExtractor(s.patternsExt, s.astExt, s.log)

	tcfg := transport.DefaultConfig()
	tcfg.Timeout = s.config.PerRequestTimeout
	tcfg.UserAgent = s.config.UserAgent
	tcfg.Headers = s.config.CustomHeaders
	s.transport = transport.NewHTTPTransport(tcfg)

	s.limiter = ratelimit.NewLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)

	if s.config.StateFilePath != "" {
		store, err := persist.NewBoltStore(s.config.StateFilePath, s.config.Target)
		if err != nil {
			return fmt.Errorf("failed to open state store: %w", err)
		}
		s.store = store
	}

	return nil
}

// applySettings loads regex overrides and domain/vue settings from a
// settingsstore.Store into the scanner's configuration and pattern set.
func (s *Scanner) applySettings(store settingsstore.Store) error {
	regex, err := store.RegexSettings()
	if err != nil {
		return fmt.Errorf("failed to read regex settings: %w", err)
	}
	custom, err := store.CustomRegexConfigs()
	if err != nil {
		return fmt.Errorf("failed to read custom regex configs: %w", err)
	}
	if err := s.patternsExt.LoadPatterns(regex, custom); err != nil {
		return fmt.Errorf("failed to load patterns from settings: %w", err)
	}

	if domain, err := store.DomainScanSettings(); err == nil {
		s.config.Scope.AllowSubdomains = domain.AllowSubdomains
		s.config.Scope.AllowAllDomains = domain.AllowAllDomains
	}
	if vue, err := store.VueDetectorSettings(); err == nil {
		s.config.VueDetector = VueDetectorConfig{
			Enabled:          vue.Enabled,
			EnableGuardPatch: vue.EnableGuardPatch,
			EnableAuthPatch:  vue.EnableAuthPatch,
			Timeout:          vue.Timeout,
			MaxDepth:         vue.MaxDepth,
		}
	}
	return nil
}

func levelFor(cfg *Config) corelog.Level {
	switch {
	case cfg.Debug:
		return corelog.DebugLevel
	case cfg.Verbose:
		return corelog.InfoLevel
	default:
		return corelog.WarnLevel
	}
}

// ScanPage fetches pageURL once and runs the full per-page pipeline
// (spec §4.7): content extraction, Vue static route extraction over any
// discovered scripts, and webpack chunk analysis over the page's own
// inline scripts.
func (s *Scanner) ScanPage(ctx context.Context, pageURL string) (*ScanResult, error) {
	result := newScanResult(pageURL)

	if err := s.limiter.WaitDomain(ctx, hostOf(pageURL)); err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "scanner", err, "rate limiter wait failed")
	}

	resp, err := s.transport.Request(ctx, pageURL, transport.RequestOptions{Timeout: s.config.PerRequestTimeout})
	if err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "scanner", err, "failed to fetch target")
	}

	page := &content.Page{
		HTML:           resp.Body,
		URL:            resp.FinalURL,
		IsTopWindow:    true,
		TargetURLMatch: true,
	}
	pageRes, err := s.contentExt.ExtractPage(page)
	if err != nil {
		result.addError(err)
	} else {
		for cat, ds := range pageRes.Categories {
			result.addAll(cat, ds)
			result.Stats.DetectionsRaw += len(ds)
		}
	}

	if s.config.VueDetector.Enabled {
		result.VueRoutes = append(result.VueRoutes, s.staticVueRoutes(resp.Body, pageURL)...)
		result.WebpackChunks = append(result.WebpackChunks, s.webpackChunks(resp.Body, pageURL)...)
	}

	s.metrics.RecordPageFetched()
	s.metrics.RecordPageExtracted()
	result.Stats.PagesScanned = 1
	result.CompletedAt = time.Now()
	result.Stats.Duration = result.CompletedAt.Sub(result.StartedAt)

	if s.store != nil {
		_ = s.store.SaveScanResults(ctx, persist.ScanResults{Target: pageURL, Categories: result.Categories})
	}
	return result, nil
}

// staticVueRoutes runs the regex-driven Vue route extractor (C8's static
// branch) over a page's inline script text.
func (s *Scanner) staticVueRoutes(html, pageURL string) []vueintrospect.RouteRecord {
	extractor := vueintrospect.NewStaticExtractor(originOf(pageURL), pageURL)
	return extractor.ExtractRoutes(html)
}

// webpackChunks runs the webpack chunk-map reconstruction (C9) over a
// page's inline script text.
func (s *Scanner) webpackChunks(html, pageURL string) []webpackchunks.ChunkURL {
	return webpackchunks.Analyze(html, originOf(pageURL), "/", nil)
}

// LiveVueRoutes drives a headless browser to pageURL and runs the live-DOM
// Vue introspector (C8's live branch), for callers that want router
// internals a static regex pass over fetched text cannot see (route
// guards, resolved component names). Requires a running rod/Chrome
// endpoint reachable via the default launcher.
func (s *Scanner) LiveVueRoutes(ctx context.Context, pageURL string) ([]vueintrospect.RouteRecord, error) {
	if !s.config.VueDetector.Enabled {
		return nil, nil
	}
	browser := rod.New()
	if err := browser.Connect(); err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "scanner", err, "failed to connect to browser")
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, corerrors.Wrap(corerrors.FetchError, "scanner", err, "failed to open page")
	}
	defer page.Close()

	introspector := vueintrospect.NewLiveIntrospector(page, s.log)
	found, _, err := introspector.FindRoot()
	if err != nil || !found {
		return nil, err
	}
	if routerFound, _, err := introspector.FindRouter(); err != nil || !routerFound {
		return nil, err
	}
	return introspector.ListRoutes()
}

// DeepScan runs the Deep Crawl Scheduler (C10) seeded from the scan
// target, following discovered links per the scanner's domain policy and
// frontier filters until maxDepth, cancellation, or Stop.
func (s *Scanner) DeepScan(ctx context.Context, seedURL string) (*ScanResult, error) {
	result := newScanResult(seedURL)

	policy, err := deepcrawl.NewDomainPolicy(s.config.Scope.Mode(), seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build domain policy: %w", err)
	}

	var store deepcrawl.Store
	if s.store != nil {
		store = persist.Adapter{Store: s.store, Target: seedURL}
	}

	cfg := deepcrawl.Config{
		MaxDepth:          s.config.MaxDepth,
		Concurrency:       s.config.Concurrency,
		PerRequestTimeout: s.config.PerRequestTimeout,
		ScanJsFiles:       s.config.ScanJsFiles,
		ScanHtmlFiles:     s.config.ScanHtmlFiles,
		ScanApiFiles:      s.config.ScanApiFiles,
		DomainPolicy:      policy,
	}

	onProgress := func(snap deepcrawl.Snapshot) {
		s.log.Debugf("deep scan progress: %d pages scanned", snap.PagesScanned)
	}

	sched := deepcrawl.NewScheduler(cfg, &limitedTransport{t: s.transport, l: s.limiter}, s.contentExt, store, onProgress)

	s.mu.Lock()
	s.scheduler = sched
	s.mu.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)

	categories := sched.Run(ctx, originOf(seedURL), []string{seedURL})
	for cat, ds := range categories {
		result.addAll(cat, ds)
	}
	result.CompletedAt = time.Now()
	result.Stats.Duration = result.CompletedAt.Sub(result.StartedAt)

	if s.store != nil {
		_ = s.store.SaveScanResults(ctx, persist.ScanResults{Target: seedURL, Categories: result.Categories})
	}
	return result, nil
}

// Stop requests that an in-progress DeepScan halt after its current
// layer's in-flight workers complete (spec §5's cancellation semantics).
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// IsRunning reports whether a DeepScan is currently in progress.
func (s *Scanner) IsRunning() bool {
	return s.running.Load()
}

// Close releases the scanner's persistent resources.
func (s *Scanner) Close() error {
	s.transport.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// limitedTransport adapts transport.HTTPTransport plus a per-domain rate
// limiter into deepcrawl.Transport, so the scheduler's workers are paced
// without needing to know about internal/ratelimit themselves.
type limitedTransport struct {
	t *transport.HTTPTransport
	l *ratelimit.Limiter
}

func (lt *limitedTransport) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (int, string, string, error) {
	if err := lt.l.WaitDomain(ctx, hostOf(rawURL)); err != nil {
		return 0, "", "", err
	}
	return lt.t.Fetch(ctx, rawURL, timeout)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
