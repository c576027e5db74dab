// Package content implements the per-page orchestrator (C7): it harvests
// DOM fragments into non-script/script text sources, runs both extraction
// engines over each, merges, enriches with a domain rollup, and normalizes
// everything into the canonical result schema of spec §6.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/corelog"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/merge"
	"github.com/corescan/corescan/internal/patterns"
)

// ASTSizeCutoff bounds the script text size eligible for the AST pass
// (spec §4.7 step 3); over cap falls back to regex-only.
const ASTSizeCutoff = 200 * 1024

// Page is the minimal per-page input the extractor needs: the raw HTML,
// the page's own URL, and whether it is the top-level window (spec §4.7
// step 1's "only run on the top-level window" guard).
type Page struct {
	HTML    string
	URL     string
	Title   string
	// IsTopWindow reports whether this Page is window.top (not an
	// iframe). TargetURLMatch reports whether URL matches the scan's
	// intended target URL. Both must hold or ExtractPage returns the
	// empty result per spec §4.7 step 1.
	IsTopWindow    bool
	TargetURLMatch bool
}

// Result is the canonical per-page extraction result: category name
// (spec §6's schema keys) -> Detections.
type Result struct {
	Categories map[string][]detect.Detection
}

func newResult() *Result {
	return &Result{Categories: make(map[string][]detect.Detection)}
}

func (r *Result) addAll(category string, ds []detect.Detection) {
	if len(ds) == 0 {
		return
	}
	r.Categories[category] = append(r.Categories[category], ds...)
}

// Extractor runs the per-page pipeline: text harvesting, the pattern and
// AST engines, merge, and domain rollup.
type Extractor struct {
	patterns *patterns.Extractor
	ast      *astextract.Extractor
	log      *corelog.Logger
}

// NewExtractor wires a patterns.Extractor and an astextract.Extractor
// (with its visitors already registered by the caller) into a content
// Extractor.
func NewExtractor(p *patterns.Extractor, a *astextract.Extractor, log *corelog.Logger) *Extractor {
	if log == nil {
		log = corelog.NewDefault()
	}
	return &Extractor{patterns: p, ast: a, log: log.WithComponent("content")}
}

// ExtractPage runs the full per-page workflow of spec §4.7.
func (e *Extractor) ExtractPage(page *Page) (*Result, error) {
	result := newResult()
	if !page.IsTopWindow || !page.TargetURLMatch {
		return result, nil
	}

	nonScript, script := e.buildTextSources(page)

	nonScriptRes, err := e.runPass(nonScript, page.URL, false)
	if err != nil {
		return nil, err
	}
	scriptRes, err := e.runPass(script, page.URL, true)
	if err != nil {
		return nil, err
	}

	for cat, ds := range nonScriptRes.Categories {
		result.addAll(cat, ds)
	}
	for cat, ds := range scriptRes.Categories {
		result.addAll(cat, ds)
	}

	e.enrich(result, page)
	return result, nil
}

// runPass extracts regex detections always, and AST detections only when
// useAST and the content is under ASTSizeCutoff, merging the two engines'
// output per category via internal/merge.
func (e *Extractor) runPass(text, sourceURL string, useAST bool) (*Result, error) {
	out := newResult()
	if strings.TrimSpace(text) == "" {
		return out, nil
	}

	regexRes, err := e.patterns.ExtractPatterns(text, sourceURL)
	if err != nil {
		return nil, err
	}

	var astDetections []detect.Detection
	if useAST && len(text) <= ASTSizeCutoff && e.ast != nil {
		astRes := e.ast.SafeExtract(text, sourceURL)
		if astRes.Success {
			astDetections = astRes.Detections
		}
	}

	astByCategory := groupByCategory(astDetections)
	categories := make(map[string]bool, len(regexRes.Categories)+len(astByCategory))
	for cat := range regexRes.Categories {
		categories[cat] = true
	}
	for cat := range astByCategory {
		categories[cat] = true
	}
	for cat := range categories {
		out.Categories[cat] = merge.Merge(astByCategory[cat], regexRes.Categories[cat])
	}
	return out, nil
}

// groupByCategory buckets AST Detections by the schema category key their
// Type maps onto (spec §6), so they land in the same bucket a regex
// Detection of the equivalent artifact would and can be merged/
// double-verified against it (spec §4.6's worked credential example).
func groupByCategory(ds []detect.Detection) map[string][]detect.Detection {
	out := make(map[string][]detect.Detection)
	for _, d := range ds {
		out[categoryForType(d)] = append(out[categoryForType(d)], d)
	}
	return out
}

// categoryForType maps an AST visitor's Detection.Type onto the regex
// engine's category-key vocabulary where a direct analogue exists
// (credential/api_endpoint), so the two engines' output can be merged and
// double-verification can fire. Visitors with no regex analogue
// (sensitive_function, config_object, encoded_string) keep their own Type
// string as a category key, extending the produced schema.
func categoryForType(d detect.Detection) string {
	switch d.Type {
	case detect.TypeCredential:
		return patterns.CategoryCredentials
	case detect.TypeAPIEndpoint:
		if strings.HasPrefix(d.Value, "http://") || strings.HasPrefix(d.Value, "https://") {
			return patterns.CategoryAbsoluteAPIs
		}
		return patterns.CategoryRelativeAPIs
	default:
		return string(d.Type)
	}
}

// buildTextSources assembles the non-script and script text blobs of
// spec §4.7 step 2 via goquery DOM traversal.
func (e *Extractor) buildTextSources(page *Page) (nonScript, script string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		e.log.WithURL(page.URL).Warnf("content: failed to parse HTML: %v", err)
		return "", ""
	}

	var nonScriptBuilder, scriptBuilder strings.Builder

	elided := doc.Clone()
	elided.Find("script").Each(func(i int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			nonScriptBuilder.WriteString(src)
			nonScriptBuilder.WriteString("\n")
		}
		s.SetText("")
	})
	html, _ := elided.Html()
	nonScriptBuilder.WriteString(html)
	nonScriptBuilder.WriteString("\n")

	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		nonScriptBuilder.WriteString(s.Text())
		nonScriptBuilder.WriteString("\n")
	})
	doc.Find("link[rel='stylesheet']").Each(func(i int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			nonScriptBuilder.WriteString("/* stylesheet: " + href + " */\n")
		}
	})
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			nonScriptBuilder.WriteString(href)
			nonScriptBuilder.WriteString("\n")
		}
	})

	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			scriptBuilder.WriteString("// external: " + src + "\n")
			return
		}
		scriptBuilder.WriteString(s.Text())
		scriptBuilder.WriteString("\n")
	})

	return nonScriptBuilder.String(), scriptBuilder.String()
}

// ExtractRaw runs the per-text pipeline directly, bypassing HTML
// parsing — used by the deep crawl scheduler (C10) for fetched non-HTML
// resources such as API responses or standalone JS files.
func (e *Extractor) ExtractRaw(text, sourceURL string, isScript bool) (*Result, error) {
	result, err := e.runPass(text, sourceURL, isScript)
	if err != nil {
		return nil, err
	}
	e.enrich(result, &Page{URL: sourceURL})
	return result, nil
}

// enrich performs spec §4.7 step 4 (domain rollup) and step 5
// (cross-category dedup) in place on result.
func (e *Extractor) enrich(result *Result, page *Page) {
	urlBearing := [][]detect.Detection{
		result.Categories["urls"],
		result.Categories["absoluteApis"],
		result.Categories["jsFiles"],
		result.Categories["cssFiles"],
		result.Categories["images"],
		result.Categories["githubUrls"],
		result.Categories["webhookUrls"],
	}
	existing := make(map[string]bool, len(result.Categories["domains"]))
	for _, d := range result.Categories["domains"] {
		existing[d.Value] = true
	}
	for _, d := range merge.RollupDomains(urlBearing...) {
		if existing[d.Value] {
			continue
		}
		existing[d.Value] = true
		d.SourceURL = page.URL
		result.Categories["domains"] = append(result.Categories["domains"], d)
	}

	result.Categories["relativeApis"] = merge.DedupAPIs(result.Categories["absoluteApis"], result.Categories["relativeApis"])

	for cat, ds := range result.Categories {
		for i := range ds {
			if ds[i].SourceURL == "" {
				ds[i].SourceURL = page.URL
			}
			if ds[i].PageTitle == "" {
				ds[i].PageTitle = page.Title
			}
		}
		result.Categories[cat] = ds
	}
}
