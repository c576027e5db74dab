package vueintrospect

import (
	"regexp"
	"strings"
)

// routePatterns are the ~10 regex patterns of spec §4.8's static branch,
// each producing a path capture group.
var routePatterns = []*regexp.Regexp{
	regexp.MustCompile(`path\s*:\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`routes\s*:\s*\[\s*\{[^}]*path\s*:\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`router\.addRoute\s*\(\s*['"]?([^'",)]+)['"]?`),
	regexp.MustCompile(`router\.(?:push|replace)\s*\(\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`\$router\.(?:push|replace)\s*\(\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?:to|:to)\s*=\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`href\s*=\s*['"]#(/[^'"]*)['"]`),
	regexp.MustCompile(`name\s*:\s*['"][^'"]+['"][^}]*path\s*:\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`redirect\s*:\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`component\s*:\s*\(\)\s*=>\s*import\(['"][^'"]*['"]\)[^}]*path\s*:\s*['"]([^'"]+)['"]`),
}

var templateExprPattern = regexp.MustCompile(`\$\{.*\}`)
var staticFileExtPattern = regexp.MustCompile(`\.(?:js|css|png|jpe?g|gif|svg|ico|json|woff2?|ttf|map)$`)

// assetDirs are the known build-output directories stripped when
// composing the application base path (spec §4.8).
var assetDirs = []string{"assets", "dist", "js", "css", "static", "build", "public"}
var resourceExtSuffixes = []string{".js", ".html", ".css", ".json", ".vue"}

// StaticExtractor runs the regex-driven route extraction over fetched JS
// text (spec §4.8's static branch, used by the deep crawl scheduler).
type StaticExtractor struct {
	// Origin and basePath compose fullUrl for each extracted path.
	Origin   string
	BasePath string
}

// NewStaticExtractor builds a StaticExtractor, computing BasePath from
// scriptURL via spec §4.8's "remove trailing resource segments and known
// asset directories" rule.
func NewStaticExtractor(origin, scriptURL string) *StaticExtractor {
	return &StaticExtractor{Origin: origin, BasePath: computeBasePath(scriptURL)}
}

func computeBasePath(scriptURL string) string {
	path := scriptURL
	if idx := strings.Index(path, "://"); idx != -1 {
		if slash := strings.Index(path[idx+3:], "/"); slash != -1 {
			path = path[idx+3+slash:]
		} else {
			return "/"
		}
	}
	for _, ext := range resourceExtSuffixes {
		if strings.HasSuffix(path, ext) {
			path = path[:strings.LastIndex(path, "/")+1]
			break
		}
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	filtered := parts[:0]
	for _, p := range parts {
		isAsset := false
		for _, a := range assetDirs {
			if strings.EqualFold(p, a) {
				isAsset = true
				break
			}
		}
		if p != "" && !isAsset {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return "/"
	}
	return "/" + strings.Join(filtered, "/") + "/"
}

// ExtractRoutes applies routePatterns over js and returns one RouteRecord
// per unique normalized path surviving the template-expression/full-URL/
// static-file filters.
func (s *StaticExtractor) ExtractRoutes(js string) []RouteRecord {
	seen := make(map[string]bool)
	var out []RouteRecord

	for _, re := range routePatterns {
		for _, m := range re.FindAllStringSubmatch(js, -1) {
			if len(m) < 2 {
				continue
			}
			path := m[1]
			if !isEligiblePath(path) {
				continue
			}
			path = normalizePath(path)
			if seen[path] {
				continue
			}
			seen[path] = true
			rec := newRouteRecord(path, "", s.composeFullURL(path), "static", nil)
			out = append(out, rec)
		}
	}
	return out
}

func isEligiblePath(path string) bool {
	if path == "" {
		return false
	}
	if templateExprPattern.MatchString(path) {
		return false
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return false
	}
	if staticFileExtPattern.MatchString(strings.ToLower(path)) {
		return false
	}
	return true
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// composeFullURL builds origin+base+#+path by default (hash-router
// composition), per spec §4.8.
func (s *StaticExtractor) composeFullURL(path string) string {
	base := s.BasePath
	if base == "" {
		base = "/"
	}
	return s.Origin + base + "#" + path
}
