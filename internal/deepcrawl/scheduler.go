// Package deepcrawl implements the Deep Crawl Scheduler (C10): a layered
// BFS over discovered URLs with a bounded per-layer worker pool, content-
// hash dedup, domain policy gating, and throttled externalization (spec
// §4.10), adapted from the teacher's internal/queue and internal/state
// packages.
package deepcrawl

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corescan/corescan/internal/content"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/merge"
	"github.com/corescan/corescan/internal/patterns"
)

// Config parameterizes one scheduler run.
type Config struct {
	MaxDepth          int
	Concurrency       int
	PerRequestTimeout time.Duration
	ScanJsFiles       bool
	ScanHtmlFiles     bool
	ScanApiFiles      bool
	DomainPolicy      *DomainPolicy
}

// Transport fetches one URL, returning its status, content type and
// body. Implemented by internal/transport's HTTPTransport.
type Transport interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) (status int, contentType string, body string, err error)
}

// PageExtractor runs the per-page extraction pipeline (internal/content's
// Extractor satisfies this).
type PageExtractor interface {
	ExtractPage(page *content.Page) (*content.Result, error)
	ExtractRaw(text, sourceURL string, isScript bool) (*content.Result, error)
}

// Store persists a throttled snapshot of the aggregate result.
// Implemented by internal/persist's BoltStore.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is one point-in-time view of the scan's aggregate state.
type Snapshot struct {
	Categories   map[string][]detect.Detection
	PagesScanned int
}

// ProgressFunc receives throttled progress snapshots.
type ProgressFunc func(snap Snapshot)

// Scheduler runs the layered BFS of spec §4.10 over one scan's lifetime.
type Scheduler struct {
	cfg        Config
	transport  Transport
	extractor  PageExtractor
	store      Store
	onProgress ProgressFunc

	scanned *scannedSet
	cache   *urlCache
	hashes  *hashSet

	mu           sync.Mutex
	aggregate    map[string][]detect.Detection
	pagesScanned int

	running atomic.Bool

	workerProgressMu sync.Mutex
	lastWorkerUpdate time.Time

	displayMu   sync.Mutex
	lastDisplay time.Time

	persistMu      sync.Mutex
	lastPersist    time.Time
	persistPending atomic.Bool
}

// NewScheduler wires a Scheduler. onProgress and store may be nil.
func NewScheduler(cfg Config, transport Transport, extractor PageExtractor, store Store, onProgress ProgressFunc) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	return &Scheduler{
		cfg:       cfg,
		transport: transport,
		extractor: extractor,
		store:     store,
		onProgress: onProgress,
		scanned:   newScannedSet(),
		cache:     newURLCache(100),
		hashes:    newHashSet(),
		aggregate: make(map[string][]detect.Detection),
	}
}

// Run executes the layered BFS from seedURLs against origin, until the
// frontier is exhausted, maxDepth is reached, Stop is called, or ctx is
// cancelled. It always returns the aggregate result gathered so far.
func (s *Scheduler) Run(ctx context.Context, origin string, seedURLs []string) map[string][]detect.Detection {
	s.running.Store(true)
	layer := dedupStrings(seedURLs)

	for depth := 0; depth < s.cfg.MaxDepth && len(layer) > 0; depth++ {
		if ctx.Err() != nil || !s.running.Load() {
			break
		}
		layer = s.runLayer(ctx, origin, layer)
	}

	s.flush(ctx)
	return s.snapshotCategories()
}

// Stop requests cancellation: in-flight workers complete, the current
// queue drains, and Run's final flush still runs (spec §5).
func (s *Scheduler) Stop() {
	s.running.Store(false)
}

// runLayer processes one BFS layer with up to Concurrency workers
// pulling from a shared channel, returning the next layer's frontier.
func (s *Scheduler) runLayer(ctx context.Context, origin string, urls []string) []string {
	jobs := make(chan string, len(urls))
	for _, u := range urls {
		jobs <- u
	}
	close(jobs)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var nextLayer []string
	queued := make(map[string]bool)

	worker := func() {
		defer wg.Done()
		for u := range jobs {
			if !s.running.Load() || ctx.Err() != nil {
				continue
			}
			found := s.processURL(ctx, origin, u)

			mu.Lock()
			for _, f := range found {
				if !queued[f] {
					queued[f] = true
					nextLayer = append(nextLayer, f)
				}
			}
			mu.Unlock()

			s.maybeWorkerProgress()
			s.externalize(ctx)
		}
	}

	n := s.cfg.Concurrency
	if n > len(urls) {
		n = len(urls)
	}
	if n < 1 {
		n = 1
	}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go worker()
	}
	wg.Wait()
	return nextLayer
}

// processURL fetches (or reuses a cached body for) rawURL, skips it if
// its content hash was already seen this scan, extracts, merges the
// result into the aggregate, and returns newly discovered in-scope
// candidate URLs.
func (s *Scheduler) processURL(ctx context.Context, origin, rawURL string) []string {
	if !s.scanned.MarkIfNew(rawURL) {
		return nil
	}
	if s.cfg.DomainPolicy != nil && !s.cfg.DomainPolicy.Allowed(rawURL) {
		return nil
	}

	body, cached := s.cache.Get(rawURL)
	var contentType string
	if !cached {
		var err error
		_, contentType, body, err = s.transport.Fetch(ctx, rawURL, s.cfg.PerRequestTimeout)
		if err != nil {
			return nil
		}
		s.cache.Put(rawURL, body)
	}

	if s.hashes.SeenOrAdd(djb2Hash(body)) {
		return nil
	}

	result, err := s.extract(rawURL, contentType, body)
	if err != nil || result == nil {
		return nil
	}

	s.mergeAggregate(result)
	s.mu.Lock()
	s.pagesScanned++
	s.mu.Unlock()

	return s.harvest(result, origin)
}

func (s *Scheduler) extract(rawURL, contentType, body string) (*content.Result, error) {
	if looksLikeHTML(contentType, body) {
		return s.extractor.ExtractPage(&content.Page{HTML: body, URL: rawURL, IsTopWindow: true, TargetURLMatch: true})
	}
	isScript := strings.HasSuffix(strings.ToLower(rawURL), ".js") || strings.Contains(contentType, "javascript")
	return s.extractor.ExtractRaw(body, rawURL, isScript)
}

func looksLikeHTML(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	trimmed := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html")
}

// mergeAggregate unions result's categories into the aggregate via the
// same dedup semantics internal/merge applies within one page (spec
// §4.10's "for each category, union-add by value; cross-category dedup
// rules from §4.6 apply").
func (s *Scheduler) mergeAggregate(result *content.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cat, ds := range result.Categories {
		s.aggregate[cat] = merge.Merge(s.aggregate[cat], ds)
	}
	s.aggregate[patterns.CategoryRelativeAPIs] = merge.DedupAPIs(
		s.aggregate[patterns.CategoryAbsoluteAPIs], s.aggregate[patterns.CategoryRelativeAPIs])
}

func (s *Scheduler) harvest(result *content.Result, origin string) []string {
	candidates := frontierURLs(result, origin, s.cfg)
	var out []string
	for _, u := range candidates {
		if s.scanned.Contains(u) {
			continue
		}
		if s.cfg.DomainPolicy != nil && !s.cfg.DomainPolicy.Allowed(u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (s *Scheduler) snapshotCategories() map[string][]detect.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]detect.Detection, len(s.aggregate))
	for k, v := range s.aggregate {
		cp := make([]detect.Detection, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func (s *Scheduler) currentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Categories: s.aggregate, PagesScanned: s.pagesScanned}
}

// maybeWorkerProgress implements spec §4.10's per-layer worker-pool
// progress cadence, throttled to ~500ms.
func (s *Scheduler) maybeWorkerProgress() {
	if s.onProgress == nil {
		return
	}
	s.workerProgressMu.Lock()
	defer s.workerProgressMu.Unlock()
	if time.Since(s.lastWorkerUpdate) < 500*time.Millisecond {
		return
	}
	s.lastWorkerUpdate = time.Now()
	s.onProgress(s.currentSnapshot())
}

// externalize implements spec §4.10's "throttled externalization": a
// display update fires at most every 2s; a storage write fires at most
// every 5s with in-flight writes coalesced (a write request arriving
// while one is pending is dropped, not queued).
func (s *Scheduler) externalize(ctx context.Context) {
	s.displayMu.Lock()
	if time.Since(s.lastDisplay) >= 2*time.Second {
		s.lastDisplay = time.Now()
		snap := s.currentSnapshot()
		s.displayMu.Unlock()
		if s.onProgress != nil {
			s.onProgress(snap)
		}
	} else {
		s.displayMu.Unlock()
	}

	if s.store == nil {
		return
	}
	s.persistMu.Lock()
	if time.Since(s.lastPersist) < 5*time.Second {
		s.persistMu.Unlock()
		return
	}
	if !s.persistPending.CompareAndSwap(false, true) {
		s.persistMu.Unlock()
		return
	}
	s.lastPersist = time.Now()
	s.persistMu.Unlock()

	go func() {
		defer s.persistPending.Store(false)
		_ = s.store.Save(ctx, s.currentSnapshot())
	}()
}

// flush issues one final display update and one final storage write
// regardless of throttles (spec §4.10's scan-completion rule).
func (s *Scheduler) flush(ctx context.Context) {
	if s.onProgress != nil {
		s.onProgress(s.currentSnapshot())
	}
	if s.store != nil {
		_ = s.store.Save(ctx, s.currentSnapshot())
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
