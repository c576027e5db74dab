package patterns

import (
	"strings"
	"time"

	"github.com/corescan/corescan/internal/corerrors"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/filter"
)

// DefaultMatchCap is the default per-pattern match limit (spec §4.2 step 6).
const DefaultMatchCap = 5000

// Extractor runs the regex extraction sub-passes over content using the
// currently loaded PatternSet. Not safe for concurrent LoadPatterns/
// UpdatePatterns calls against concurrent ExtractPatterns (single-writer,
// matching spec §3's PatternSet lifecycle note).
type Extractor struct {
	ps       *PatternSet
	matchCap int
}

// NewExtractor builds an Extractor seeded with the built-in PatternSet.
func NewExtractor() (*Extractor, error) {
	ps, err := DefaultPatternSet()
	if err != nil {
		return nil, err
	}
	return &Extractor{ps: ps, matchCap: DefaultMatchCap}, nil
}

// LoadPatterns (re)loads the PatternSet from settings-provided literal
// overrides, keyed by the built-in category names, plus custom_-prefixed
// entries. Idempotent: previously loaded custom_* entries survive a
// reload unless explicitly replaced in customEntries.
func (e *Extractor) LoadPatterns(overrides map[string]string, customEntries map[string]string) error {
	preserved := make(map[string]*entry)
	for key, ent := range e.ps.entries {
		if strings.HasPrefix(key, "custom_") {
			preserved[key] = ent
		}
	}

	ps, err := DefaultPatternSet()
	if err != nil {
		return err
	}
	for key, literal := range overrides {
		def, ok := defaultLiterals[key]
		target := def.target
		if !ok {
			target = detect.Type(key)
		}
		compiled, err := compile(literal)
		if err != nil {
			return err
		}
		ps.set(key, target, compiled)
	}

	seen := make(map[string]bool)
	for name, literal := range customEntries {
		key := "custom_" + name
		if seen[key] {
			return corerrors.New(corerrors.PatternError, "patterns", "duplicate custom pattern key: "+key)
		}
		seen[key] = true
		compiled, err := compile(literal)
		if err != nil {
			return err
		}
		ps.set(key, detect.CustomType(name), compiled)
	}
	for key, ent := range preserved {
		if _, replaced := ps.entries[key]; !replaced {
			ps.set(key, ent.targetType, ent)
		}
	}

	e.ps = ps
	return nil
}

// UpdatePatterns re-applies settings overrides while preserving custom_*
// entries, same invariant as LoadPatterns.
func (e *Extractor) UpdatePatterns(overrides map[string]string) error {
	return e.LoadPatterns(overrides, nil)
}

// Result is the per-call extraction output: category name -> Detections.
type Result struct {
	Categories map[string][]detect.Detection
	Capped     []string // categories that hit the per-pattern match cap
}

func newResult() *Result {
	return &Result{Categories: make(map[string][]detect.Detection)}
}

func (r *Result) add(category string, d detect.Detection) {
	r.Categories[category] = append(r.Categories[category], d)
}

// ExtractPatterns runs the API, resource, generic, and dynamic-custom
// sub-passes over content, attributing every Detection to sourceURL.
func (e *Extractor) ExtractPatterns(content, sourceURL string) (*Result, error) {
	result := newResult()
	now := time.Now()

	e.apiSubPass(content, sourceURL, now, result)
	e.resourceSubPass(content, sourceURL, now, result)
	e.genericSubPass(content, sourceURL, now, result)
	e.customSubPass(content, sourceURL, now, result)

	return result, nil
}

func (e *Extractor) apiSubPass(content, sourceURL string, now time.Time, result *Result) {
	if ent, ok := e.ps.get("absoluteApi"); ok {
		for _, m := range e.matchAll(ent, content, CategoryAbsoluteAPIs, result) {
			v := m.text
			if strings.Contains(v, "http://") || strings.Contains(v, "https://") {
				// absolute paths are expected here; reject only if this
				// is actually a bare-domain-less "urls"-shaped value is
				// handled by the resource pass. Static/garbage rejection:
			}
			if filter.IsStaticFile(v) || filter.IsFilteredByRegex(v) || filter.ContainsFilteredContentType(v) {
				continue
			}
			result.add(CategoryAbsoluteAPIs, newDetection(detect.TypeAPIEndpoint, v, 0.6, detect.SourceRegex, sourceURL, now, nil))
		}
	}

	absoluteSeen := make(map[string]bool)
	for _, d := range result.Categories[CategoryAbsoluteAPIs] {
		absoluteSeen[d.Value] = true
	}

	if ent, ok := e.ps.get("relativeApi"); ok {
		for _, m := range e.matchAll(ent, content, CategoryRelativeAPIs, result) {
			v := normalizeRelative(m.text)
			if filter.IsStaticFile(v) || filter.IsFilteredByRegex(v) || filter.ContainsFilteredContentType(v) {
				continue
			}
			if absoluteSeen[v] {
				continue
			}
			result.add(CategoryRelativeAPIs, newDetection(detect.TypeAPIEndpoint, v, 0.6, detect.SourceRegex, sourceURL, now, nil))
		}
	}
}

// normalizeRelative strips a single leading "." segment while keeping the
// "/", per spec §4.2 step 2.
func normalizeRelative(v string) string {
	if strings.HasPrefix(v, "./") {
		return v[1:]
	}
	if v == "." {
		return "/"
	}
	return v
}

func (e *Extractor) resourceSubPass(content, sourceURL string, now time.Time, result *Result) {
	resourceKeys := []struct {
		key      string
		category string
	}{
		{"jsFile", CategoryJSFiles},
		{"cssFile", CategoryCSSFiles},
		{"image", CategoryImages},
		{"url", CategoryURLs},
	}

	domainsAdded := make(map[string]bool)
	addDomain := func(v string) {
		host := extractHost(v)
		if host == "" || domainsAdded[host] {
			return
		}
		if !filter.IsValidDomain(host) {
			return
		}
		domainsAdded[host] = true
		result.add(CategoryDomains, newDetection(detect.TypeDomain, host, 0.6, detect.SourceRegex, sourceURL, now, nil))
	}

	for _, rk := range resourceKeys {
		ent, ok := e.ps.get(rk.key)
		if !ok {
			continue
		}
		for _, m := range e.matchAll(ent, content, rk.category, result) {
			v := m.text
			category := reclassifyByExtension(v, rk.category)
			targetType := detect.TypeURL
			switch category {
			case CategoryImages:
				targetType = detect.TypeImage
			case CategoryJSFiles:
				targetType = detect.TypeJSFile
			case CategoryCSSFiles:
				targetType = detect.TypeCSSFile
			}
			result.add(category, newDetection(targetType, v, 0.6, detect.SourceRegex, sourceURL, now, nil))
			addDomain(v)
		}
	}
}

// reclassifyByExtension re-buckets a URL match from the generic "url"
// category into images/jsFiles/cssFiles based on its file extension, per
// spec §4.2 step 3.
func reclassifyByExtension(v, fallback string) string {
	lower := strings.ToLower(stripQuery(v))
	switch {
	case hasAnySuffix(lower, ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"):
		return CategoryImages
	case hasAnySuffix(lower, ".js", ".mjs", ".cjs"):
		return CategoryJSFiles
	case hasAnySuffix(lower, ".css"):
		return CategoryCSSFiles
	default:
		return fallback
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func stripQuery(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}

func extractHost(rawURL string) string {
	v := rawURL
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	v = strings.TrimPrefix(v, "wss://")
	v = strings.TrimPrefix(v, "ws://")
	if i := strings.IndexAny(v, "/?#"); i >= 0 {
		v = v[:i]
	}
	return v
}

func (e *Extractor) genericSubPass(content, sourceURL string, now time.Time, result *Result) {
	for _, category := range genericCategories {
		key := genericKeyFor(category)
		ent, ok := e.ps.get(key)
		if !ok {
			continue
		}
		for _, m := range e.matchAll(ent, content, category, result) {
			v := m.text
			if m.group1 != "" {
				v = m.group1
			}
			if !passesCategoryFilter(category, v) {
				continue
			}
			conf := 0.6
			result.add(category, newDetection(ent.targetType, v, conf, detect.SourceRegex, sourceURL, now, nil))
		}
	}
}

// genericKeyFor maps a category constant back to its PatternSet key.
func genericKeyFor(category string) string {
	switch category {
	case CategoryDomains:
		return "domain"
	case CategoryEmails:
		return "email"
	case CategoryPhones:
		return "phone"
	case CategoryCredentials:
		return "credentials"
	case CategoryIPs:
		return "ip"
	case CategoryPaths:
		return "paths"
	case CategoryJWTs:
		return "jwt"
	case CategoryGithubURLs:
		return "github"
	case CategoryVueFiles:
		return "vue"
	case CategoryCompanies:
		return "company"
	case CategoryComments:
		return "comments"
	case CategoryIDCards:
		return "idCard"
	case CategoryBearerTokens:
		return "bearerToken"
	case CategoryBasicAuth:
		return "basicAuth"
	case CategoryAuthHeaders:
		return "authHeader"
	case CategoryWechatAppIDs:
		return "wechatAppId"
	case CategoryAWSKeys:
		return "awsKey"
	case CategoryGoogleKeys:
		return "googleApiKey"
	case CategoryGithubTokens:
		return "githubToken"
	case CategoryGitlabTokens:
		return "gitlabToken"
	case CategoryWebhookURLs:
		return "webhookUrls"
	case CategoryCryptoUsage:
		return "cryptoUsage"
	default:
		return ""
	}
}

// passesCategoryFilter applies the category-specific rejection rules of
// spec §4.2 step 4.
func passesCategoryFilter(category, value string) bool {
	switch category {
	case CategoryDomains:
		return filter.IsValidDomain(value) && !filter.IsFilteredByRegex(value)
	case CategoryVueFiles:
		return len(value) >= 10 && strings.HasPrefix(value, "/")
	case CategoryCredentials:
		return !filter.IsCSSStyleCode(value)
	case CategoryComments:
		return !filter.IsEmptyComment(value)
	case CategoryIDCards:
		return isValidIDCard(value)
	default:
		return true
	}
}

func (e *Extractor) customSubPass(content, sourceURL string, now time.Time, result *Result) {
	for _, key := range e.ps.order {
		if !strings.HasPrefix(key, "custom_") {
			continue
		}
		ent := e.ps.entries[key]
		for _, m := range e.matchAll(ent, content, key, result) {
			v := m.text
			if m.group1 != "" {
				v = m.group1
			}
			result.add(key, newDetection(ent.targetType, v, 0.6, detect.SourceRegex, sourceURL, now, nil))
		}
	}
}

func newDetection(t detect.Type, value string, confidence float64, source detect.Source, sourceURL string, now time.Time, loc *detect.Location) detect.Detection {
	return detect.Detection{
		Type:        t,
		Value:       value,
		Confidence:  confidence,
		Location:    loc,
		SourceURL:   sourceURL,
		ExtractedAt: now,
		Source:      source,
	}
}
