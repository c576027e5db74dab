package astextract

import (
	"context"
	"sync"
	"time"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/corelog"
	"github.com/corescan/corescan/internal/corerrors"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/jsast"
)

// DefaultMaxFileSize bounds the code Extract will parse (spec §4.5 step 1).
const DefaultMaxFileSize = 1 << 20 // 1 MiB

// DefaultParseTimeout matches spec §5's per-file parser timeout.
const DefaultParseTimeout = 5 * time.Second

// Metadata reports the bookkeeping fields spec §4.5 asks extract() to
// return alongside Detections.
type Metadata struct {
	ParseTime         time.Duration
	ExtractTime       time.Duration
	NodeCount         int
	VisitedCount      int
	FallbackUsed      bool
	CacheHit          bool
	TimedOut          bool
	SkippedDueToSize  bool
}

// Result is the outcome of a single Extract/ExtractWithTimeout/SafeExtract
// call.
type Result struct {
	Success    bool
	Detections []detect.Detection
	Errors     []error
	Metadata   Metadata
}

// Extractor registers Visitors and runs parse-and-visit over JS source.
type Extractor struct {
	mu          sync.RWMutex
	visitors    []Visitor
	byName      map[string]int // name -> index into visitors
	cache       *astCache
	maxFileSize int
	log         *corelog.Logger
}

// NewExtractor builds an Extractor with an empty visitor registry and the
// default cache size / file size bound.
func NewExtractor(log *corelog.Logger) *Extractor {
	if log == nil {
		log = corelog.NewDefault()
	}
	return &Extractor{
		byName:      make(map[string]int),
		cache:       newASTCache(DefaultCacheSize),
		maxFileSize: DefaultMaxFileSize,
		log:         log.WithComponent("astextract"),
	}
}

// RegisterVisitor adds v to the registry; a visitor with the same Name()
// replaces the prior registration (idempotent, per spec §4.5).
func (e *Extractor) RegisterVisitor(v Visitor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.byName[v.Name()]; ok {
		e.visitors[idx] = v
		return
	}
	e.byName[v.Name()] = len(e.visitors)
	e.visitors = append(e.visitors, v)
}

// dispatchTable builds a node-kind -> enabled-visitor-list map for the
// current registry (spec §4.5 step 4).
func (e *Extractor) dispatchTable() map[string][]Visitor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	table := make(map[string][]Visitor)
	for _, v := range e.visitors {
		if !v.Enabled() {
			continue
		}
		for _, kind := range v.NodeKinds() {
			table[kind] = append(table[kind], v)
		}
	}
	return table
}

// Extract parses code and dispatches registered visitors across the
// resulting AST, returning Detections and extraction metadata.
func (e *Extractor) Extract(code, sourceURL string) *Result {
	meta := Metadata{}
	if len(code) > e.maxFileSize {
		meta.SkippedDueToSize = true
		return &Result{Success: false, Metadata: meta}
	}

	key := hashCode(code)
	parseStart := time.Now()
	program, parsedSource, cacheHit := e.cache.get(key)
	if !cacheHit {
		res, err := jsast.Parse(code, sourceURL)
		meta.ParseTime = time.Since(parseStart)
		if err != nil || res.Program == nil {
			meta.FallbackUsed = true
			if err != nil {
				e.log.WithURL(sourceURL).Debugf("parse failed, falling back to regex-only: %v", err)
			}
			return &Result{Success: false, Metadata: meta, Errors: []error{err}}
		}
		program = res.Program
		parsedSource = res.Preprocessed
		e.cache.put(key, program, parsedSource)
	} else {
		meta.CacheHit = true
		meta.ParseTime = time.Since(parseStart)
	}

	dispatch := e.dispatchTable()
	ctx := newVisitContext(sourceURL, parsedSource)

	extractStart := time.Now()
	var detections []detect.Detection
	var errs []error
	e.walk(program, dispatch, ctx, &meta, &detections, &errs)
	meta.ExtractTime = time.Since(extractStart)

	return &Result{Success: true, Detections: detections, Errors: errs, Metadata: meta}
}

// walk is the DFS with ancestor-stack maintenance described in spec §4.5
// step 5.
func (e *Extractor) walk(node ast.Node, dispatch map[string][]Visitor, ctx *VisitContext, meta *Metadata, out *[]detect.Detection, errs *[]error) {
	if node == nil {
		return
	}
	meta.NodeCount++
	kind := kindOf(node)

	matched := dispatch[kind]
	if len(matched) > 0 {
		meta.VisitedCount++
	}
	for _, v := range matched {
		*out = append(*out, safeVisit(v, node, kind, ctx, e.log, errs)...)
	}

	ctx.Ancestors = append(ctx.Ancestors, node)
	for _, child := range children(node) {
		e.walk(child, dispatch, ctx, meta, out, errs)
	}
	ctx.Ancestors = ctx.Ancestors[:len(ctx.Ancestors)-1]

	for _, v := range matched {
		safeLeave(v, node, kind, ctx, e.log, errs)
	}
}

func safeVisit(v Visitor, node ast.Node, kind string, ctx *VisitContext, log *corelog.Logger, errs *[]error) (detections []detect.Detection) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("visitor panicked: " + v.Name())
			*errs = append(*errs, corerrors.New(corerrors.VisitorError, "astextract", "visitor panicked").WithCategory(v.Name()))
		}
	}()
	return v.Visit(node, kind, ctx)
}

func safeLeave(v Visitor, node ast.Node, kind string, ctx *VisitContext, log *corelog.Logger, errs *[]error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("visitor Leave panicked: " + v.Name())
			*errs = append(*errs, corerrors.New(corerrors.VisitorError, "astextract", "visitor Leave panicked").WithCategory(v.Name()))
		}
	}()
	v.Leave(node, kind, ctx)
}

// ExtractWithTimeout wraps Extract with a cancellation timer; on elapse it
// resolves with FallbackUsed=true, TimedOut=true and no detections (spec
// §4.5).
func (e *Extractor) ExtractWithTimeout(ctx context.Context, code, sourceURL string, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = DefaultParseTimeout
	}
	done := make(chan *Result, 1)
	go func() {
		done <- e.Extract(code, sourceURL)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		return &Result{Success: false, Metadata: Metadata{FallbackUsed: true, TimedOut: true}}
	case <-ctx.Done():
		return &Result{Success: false, Metadata: Metadata{FallbackUsed: true, TimedOut: true}}
	}
}

// SafeExtract never panics out to the caller; any unexpected error from
// Extract's internals is surfaced as a failed, empty Result instead.
func (e *Extractor) SafeExtract(code, sourceURL string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithURL(sourceURL).Warn("astextract: recovered from unexpected panic")
			result = &Result{Success: false, Errors: []error{corerrors.New(corerrors.VisitorError, "astextract", "recovered panic")}}
		}
	}()
	return e.Extract(code, sourceURL)
}
