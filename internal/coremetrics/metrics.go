// Package coremetrics collects scan-time counters and gauges.
package coremetrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates counters for a single scan run.
type Collector struct {
	// Pipeline throughput
	pagesFetched    atomic.Int64
	pagesExtracted  atomic.Int64
	scriptsSeen     atomic.Int64
	bytesProcessed  atomic.Int64
	fetchErrors     atomic.Int64

	// Pattern engine (C2)
	patternMatches    atomic.Int64
	patternsCapped    atomic.Int64 // times a per-pattern match cap was hit
	patternIterations atomic.Int64

	// AST engine (C3/C5)
	astParses       atomic.Int64
	astParseErrors  atomic.Int64
	astCacheHits    atomic.Int64
	astCacheMisses  atomic.Int64
	astFallbackUsed atomic.Int64 // module->script->loose fallback invoked

	// Merge (C6)
	detectionsRaw       atomic.Int64
	detectionsMerged     atomic.Int64
	doubleVerifiedCount atomic.Int64

	// Deep crawl (C10)
	urlsQueued     atomic.Int64
	urlsVisited    atomic.Int64
	urlsDeduped    atomic.Int64
	contentDeduped atomic.Int64
	activeWorkers  atomic.Int64

	// response time histogram, buckets in ms: <50,<100,<250,<500,<1000,<2500,<5000,<10000,>=10000
	responseBuckets [9]atomic.Int64

	startTime time.Time

	mu           sync.RWMutex
	errorsByKind map[string]*atomic.Int64
}

// New creates a Collector for a fresh scan run.
func New() *Collector {
	return &Collector{
		startTime:    time.Now(),
		errorsByKind: make(map[string]*atomic.Int64),
	}
}

func (c *Collector) RecordPageFetched()   { c.pagesFetched.Add(1) }
func (c *Collector) RecordPageExtracted() { c.pagesExtracted.Add(1) }
func (c *Collector) RecordScriptSeen()    { c.scriptsSeen.Add(1) }
func (c *Collector) RecordBytes(n int64)  { c.bytesProcessed.Add(n) }
func (c *Collector) RecordFetchError()    { c.fetchErrors.Add(1) }

func (c *Collector) RecordPatternMatch(n int64)  { c.patternMatches.Add(n) }
func (c *Collector) RecordPatternCapped()        { c.patternsCapped.Add(1) }
func (c *Collector) RecordPatternIteration(n int64) { c.patternIterations.Add(n) }

func (c *Collector) RecordASTParse()       { c.astParses.Add(1) }
func (c *Collector) RecordASTParseError()  { c.astParseErrors.Add(1) }
func (c *Collector) RecordASTCacheHit()    { c.astCacheHits.Add(1) }
func (c *Collector) RecordASTCacheMiss()   { c.astCacheMisses.Add(1) }
func (c *Collector) RecordASTFallbackUsed() { c.astFallbackUsed.Add(1) }

func (c *Collector) RecordDetectionsRaw(n int64)    { c.detectionsRaw.Add(n) }
func (c *Collector) RecordDetectionsMerged(n int64) { c.detectionsMerged.Add(n) }
func (c *Collector) RecordDoubleVerified()          { c.doubleVerifiedCount.Add(1) }

func (c *Collector) RecordURLQueued()     { c.urlsQueued.Add(1) }
func (c *Collector) RecordURLVisited()    { c.urlsVisited.Add(1) }
func (c *Collector) RecordURLDeduped()    { c.urlsDeduped.Add(1) }
func (c *Collector) RecordContentDeduped() { c.contentDeduped.Add(1) }
func (c *Collector) SetActiveWorkers(n int64) { c.activeWorkers.Store(n) }

// RecordResponseTime buckets a fetch latency for the summary histogram.
func (c *Collector) RecordResponseTime(d time.Duration) {
	ms := d.Milliseconds()
	c.responseBuckets[bucketFor(ms)].Add(1)
}

func bucketFor(ms int64) int {
	switch {
	case ms < 50:
		return 0
	case ms < 100:
		return 1
	case ms < 250:
		return 2
	case ms < 500:
		return 3
	case ms < 1000:
		return 4
	case ms < 2500:
		return 5
	case ms < 5000:
		return 6
	case ms < 10000:
		return 7
	default:
		return 8
	}
}

// RecordErrorKind increments a named error counter (corerrors.Kind.String()).
func (c *Collector) RecordErrorKind(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctr, ok := c.errorsByKind[kind]
	if !ok {
		ctr = &atomic.Int64{}
		c.errorsByKind[kind] = ctr
	}
	ctr.Add(1)
}

// ASTCacheHitRate reports the AST extraction cache's hit ratio, or 0 if unused.
func (c *Collector) ASTCacheHitRate() float64 {
	hits := c.astCacheHits.Load()
	misses := c.astCacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Snapshot is a point-in-time, read-only copy of the collected counters.
type Snapshot struct {
	Elapsed             time.Duration      `json:"elapsed"`
	PagesFetched        int64              `json:"pages_fetched"`
	PagesExtracted      int64              `json:"pages_extracted"`
	ScriptsSeen         int64              `json:"scripts_seen"`
	BytesProcessed      int64              `json:"bytes_processed"`
	FetchErrors         int64              `json:"fetch_errors"`
	PatternMatches      int64              `json:"pattern_matches"`
	PatternsCapped      int64              `json:"patterns_capped"`
	ASTParses           int64              `json:"ast_parses"`
	ASTParseErrors      int64              `json:"ast_parse_errors"`
	ASTCacheHitRate     float64            `json:"ast_cache_hit_rate"`
	ASTFallbackUsed     int64              `json:"ast_fallback_used"`
	DetectionsRaw       int64              `json:"detections_raw"`
	DetectionsMerged    int64              `json:"detections_merged"`
	DoubleVerifiedCount int64              `json:"double_verified_count"`
	URLsQueued          int64              `json:"urls_queued"`
	URLsVisited         int64              `json:"urls_visited"`
	URLsDeduped         int64              `json:"urls_deduped"`
	ContentDeduped      int64              `json:"content_deduped"`
	ActiveWorkers       int64              `json:"active_workers"`
	ErrorsByKind        map[string]int64   `json:"errors_by_kind,omitempty"`
	ResponseTimeBuckets [9]int64           `json:"response_time_buckets_ms"`
}

// Snapshot captures the current counter values.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	errs := make(map[string]int64, len(c.errorsByKind))
	for k, v := range c.errorsByKind {
		errs[k] = v.Load()
	}
	c.mu.RUnlock()

	var buckets [9]int64
	for i := range c.responseBuckets {
		buckets[i] = c.responseBuckets[i].Load()
	}

	return Snapshot{
		Elapsed:             time.Since(c.startTime),
		PagesFetched:        c.pagesFetched.Load(),
		PagesExtracted:      c.pagesExtracted.Load(),
		ScriptsSeen:         c.scriptsSeen.Load(),
		BytesProcessed:      c.bytesProcessed.Load(),
		FetchErrors:         c.fetchErrors.Load(),
		PatternMatches:      c.patternMatches.Load(),
		PatternsCapped:      c.patternsCapped.Load(),
		ASTParses:           c.astParses.Load(),
		ASTParseErrors:      c.astParseErrors.Load(),
		ASTCacheHitRate:     c.ASTCacheHitRate(),
		ASTFallbackUsed:     c.astFallbackUsed.Load(),
		DetectionsRaw:       c.detectionsRaw.Load(),
		DetectionsMerged:    c.detectionsMerged.Load(),
		DoubleVerifiedCount: c.doubleVerifiedCount.Load(),
		URLsQueued:          c.urlsQueued.Load(),
		URLsVisited:         c.urlsVisited.Load(),
		URLsDeduped:         c.urlsDeduped.Load(),
		ContentDeduped:      c.contentDeduped.Load(),
		ActiveWorkers:       c.activeWorkers.Load(),
		ErrorsByKind:        errs,
		ResponseTimeBuckets: buckets,
	}
}
