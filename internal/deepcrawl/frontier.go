package deepcrawl

import (
	"net/url"
	"strings"

	"github.com/corescan/corescan/internal/content"
	"github.com/corescan/corescan/internal/patterns"
)

// isPageUrl implements spec §4.10's heuristic: not a resource file, ends
// with "/" or ".html"/".htm", or has no dotted last path segment.
func isPageUrl(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" || strings.HasSuffix(path, "/") {
		return true
	}
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return true
	}
	last := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		last = path[idx+1:]
	}
	return !strings.Contains(last, ".")
}

// frontierURLs selects the next crawl frontier from one page's
// extraction result, per spec §4.10's option-flag filters, resolving
// relative values against origin.
func frontierURLs(result *content.Result, origin string, cfg Config) []string {
	seen := map[string]bool{}
	var candidates []string
	addCategory := func(cat string) {
		for _, d := range result.Categories[cat] {
			resolved := resolveAgainst(origin, d.Value)
			if resolved == "" || seen[resolved] {
				continue
			}
			seen[resolved] = true
			candidates = append(candidates, resolved)
		}
	}
	addCategory(patterns.CategoryURLs)
	addCategory(patterns.CategoryAbsoluteAPIs)
	addCategory(patterns.CategoryRelativeAPIs)
	addCategory(patterns.CategoryJSFiles)

	var out []string
	for _, u := range candidates {
		lower := strings.ToLower(u)
		switch {
		case cfg.ScanHtmlFiles && isPageUrl(u):
			out = append(out, u)
		case cfg.ScanJsFiles && strings.HasSuffix(lower, ".js"):
			out = append(out, u)
		case cfg.ScanApiFiles && !isPageUrl(u) && !strings.HasSuffix(lower, ".js"):
			out = append(out, u)
		}
	}
	return out
}

func resolveAgainst(origin, ref string) string {
	base, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}
