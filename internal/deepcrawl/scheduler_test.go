package deepcrawl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corescan/corescan/internal/content"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/patterns"
)

type fakeTransport struct {
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newFakeTransport(pages map[string]string) *fakeTransport {
	return &fakeTransport{pages: pages, hits: make(map[string]int)}
}

func (f *fakeTransport) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (int, string, string, error) {
	f.mu.Lock()
	f.hits[rawURL]++
	f.mu.Unlock()
	body, ok := f.pages[rawURL]
	if !ok {
		return 404, "", "", nil
	}
	contentType := "text/html"
	if len(body) > 0 && body[0] != '<' {
		contentType = "application/javascript"
	}
	return 200, contentType, body, nil
}

// fakeExtractor turns each fetched document into a single "urls" category
// detection per testURLRefs entry, so the scheduler's harvest step has
// something concrete to chase without depending on the real content
// pipeline's goquery/regex/AST machinery.
type fakeExtractor struct {
	refs map[string][]string // source URL -> discovered relative URLs
}

func (f *fakeExtractor) ExtractPage(page *content.Page) (*content.Result, error) {
	return f.extract(page.URL), nil
}

func (f *fakeExtractor) ExtractRaw(text, sourceURL string, isScript bool) (*content.Result, error) {
	return f.extract(sourceURL), nil
}

func (f *fakeExtractor) extract(sourceURL string) *content.Result {
	result := &content.Result{Categories: map[string][]detect.Detection{}}
	for _, ref := range f.refs[sourceURL] {
		result.Categories[patterns.CategoryURLs] = append(result.Categories[patterns.CategoryURLs], detect.Detection{
			Type:  detect.TypeURL,
			Value: ref,
		})
	}
	return result
}

func TestScheduler_CrawlsLayersAndMergesAggregate(t *testing.T) {
	origin := "https://app.example.com"
	pages := map[string]string{
		origin + "/":       "<html>root</html>",
		origin + "/page-a": "<html>a</html>",
		origin + "/page-b": "<html>b</html>",
	}
	refs := map[string][]string{
		origin + "/":       {"/page-a", "/page-b"},
		origin + "/page-a": {"/page-b"}, // already discovered, should not duplicate
	}

	transport := newFakeTransport(pages)
	extractor := &fakeExtractor{refs: refs}

	policy, err := NewDomainPolicy(DomainSameOrigin, origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sched := NewScheduler(Config{
		MaxDepth:      5,
		Concurrency:   2,
		ScanHtmlFiles: true,
		DomainPolicy:  policy,
	}, transport, extractor, nil, nil)

	aggregate := sched.Run(context.Background(), origin, []string{origin + "/"})

	urls := aggregate[patterns.CategoryURLs]
	seen := map[string]bool{}
	for _, d := range urls {
		seen[d.Value] = true
	}
	if !seen["/page-a"] || !seen["/page-b"] {
		t.Fatalf("expected both discovered pages in aggregate, got %+v", urls)
	}

	if transport.hits[origin+"/page-b"] != 1 {
		t.Fatalf("expected /page-b fetched exactly once despite being discovered twice, got %d", transport.hits[origin+"/page-b"])
	}
}

// TestScheduler_StopHaltsFurtherLayers stops the scheduler from within a
// progress callback fired after the first URL completes, and verifies the
// next layer (which would fetch /page-a) never runs.
func TestScheduler_StopHaltsFurtherLayers(t *testing.T) {
	origin := "https://app.example.com"
	pages := map[string]string{
		origin + "/":       "<html>root</html>",
		origin + "/page-a": "<html>a</html>",
	}
	refs := map[string][]string{
		origin + "/": {"/page-a"},
	}
	transport := newFakeTransport(pages)
	extractor := &fakeExtractor{refs: refs}

	var sched *Scheduler
	stopOnce := sync.Once{}
	onProgress := func(snap Snapshot) {
		stopOnce.Do(sched.Stop)
	}
	sched = NewScheduler(Config{MaxDepth: 5, Concurrency: 1, ScanHtmlFiles: true}, transport, extractor, nil, onProgress)

	aggregate := sched.Run(context.Background(), origin, []string{origin + "/"})

	if transport.hits[origin+"/"] != 1 {
		t.Fatalf("expected root page fetched once, got %d", transport.hits[origin+"/"])
	}
	if transport.hits[origin+"/page-a"] != 0 {
		t.Fatalf("expected /page-a never fetched after Stop, got %d", transport.hits[origin+"/page-a"])
	}
	urls := aggregate[patterns.CategoryURLs]
	if len(urls) != 1 || urls[0].Value != "/page-a" {
		t.Fatalf("expected root page's own discovery still present in aggregate, got %+v", urls)
	}
}

func TestScheduler_SkipsDuplicateContentHash(t *testing.T) {
	origin := "https://app.example.com"
	pages := map[string]string{
		origin + "/a": "<html>same</html>",
		origin + "/b": "<html>same</html>",
	}
	transport := newFakeTransport(pages)
	extractor := &fakeExtractor{refs: map[string][]string{}}

	sched := NewScheduler(Config{MaxDepth: 2, Concurrency: 2, ScanHtmlFiles: true}, transport, extractor, nil, nil)
	sched.Run(context.Background(), origin, []string{origin + "/a", origin + "/b"})

	if sched.pagesScanned != 1 {
		t.Fatalf("expected only one page extracted due to identical content hash, got %d", sched.pagesScanned)
	}
}
