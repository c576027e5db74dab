// Package patterns implements the configurable regex extraction engine
// (C2): an ordered PatternSet plus the Extractor that runs the API,
// resource, generic, and dynamic-custom sub-passes over a content string.
package patterns

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/corescan/corescan/internal/corerrors"
	"github.com/corescan/corescan/internal/detect"
)

// category names, matching spec §4.2's canonical set.
const (
	CategoryAbsoluteAPIs = "absoluteApis"
	CategoryRelativeAPIs = "relativeApis"
	CategoryJSFiles      = "jsFiles"
	CategoryCSSFiles     = "cssFiles"
	CategoryImages       = "images"
	CategoryURLs         = "urls"
	CategoryDomains      = "domains"
	CategoryEmails       = "emails"
	CategoryPhones       = "phones"
	CategoryCredentials  = "credentials"
	CategoryIPs          = "ips"
	CategoryPaths        = "paths"
	CategoryJWTs         = "jwts"
	CategoryGithubURLs   = "githubUrls"
	CategoryVueFiles     = "vueFiles"
	CategoryCompanies    = "companies"
	CategoryComments     = "comments"
	CategoryIDCards      = "idCards"
	CategoryBearerTokens = "bearerTokens"
	CategoryBasicAuth    = "basicAuth"
	CategoryAuthHeaders  = "authHeaders"
	CategoryWechatAppIDs = "wechatAppIds"
	CategoryAWSKeys      = "awsKeys"
	CategoryGoogleKeys   = "googleApiKeys"
	CategoryGithubTokens = "githubTokens"
	CategoryGitlabTokens = "gitlabTokens"
	CategoryWebhookURLs  = "webhookUrls"
	CategoryCryptoUsage  = "cryptoUsage"
)

// AllCategories lists every built-in category key, used by
// internal/settingsstore to reject custom_* collisions with a built-in
// name (spec §4.2/§9).
var AllCategories = []string{
	CategoryAbsoluteAPIs, CategoryRelativeAPIs, CategoryJSFiles, CategoryCSSFiles,
	CategoryImages, CategoryURLs, CategoryDomains, CategoryEmails, CategoryPhones,
	CategoryCredentials, CategoryIPs, CategoryPaths, CategoryJWTs, CategoryGithubURLs,
	CategoryVueFiles, CategoryCompanies, CategoryComments, CategoryIDCards,
	CategoryBearerTokens, CategoryBasicAuth, CategoryAuthHeaders, CategoryWechatAppIDs,
	CategoryAWSKeys, CategoryGoogleKeys, CategoryGithubTokens, CategoryGitlabTokens,
	CategoryWebhookURLs, CategoryCryptoUsage,
}

// genericCategories lists every category the generic sub-pass iterates,
// in the order spec §4.2 step 4 enumerates them.
var genericCategories = []string{
	CategoryDomains, CategoryEmails, CategoryPhones, CategoryCredentials,
	CategoryIPs, CategoryPaths, CategoryJWTs, CategoryGithubURLs,
	CategoryVueFiles, CategoryCompanies, CategoryComments, CategoryIDCards,
	CategoryBearerTokens, CategoryBasicAuth, CategoryAuthHeaders,
	CategoryWechatAppIDs, CategoryAWSKeys, CategoryGoogleKeys,
	CategoryGithubTokens, CategoryGitlabTokens, CategoryWebhookURLs,
	CategoryCryptoUsage,
}

// entry is a single compiled pattern in a PatternSet.
type entry struct {
	key         string
	targetType  detect.Type
	re          *regexp.Regexp  // RE2 fast path
	re2         *regexp2.Regexp // look-around fallback, nil unless needed
	lookaround  bool
	raw         string
}

// PatternSet is the ordered patternKey -> entry mapping plus custom_*
// entries, mutated only by LoadPatterns/UpdatePatterns (single-writer).
type PatternSet struct {
	order   []string
	entries map[string]*entry
}

func newPatternSet() *PatternSet {
	return &PatternSet{entries: make(map[string]*entry)}
}

func (ps *PatternSet) set(key string, targetType detect.Type, e *entry) {
	if _, exists := ps.entries[key]; !exists {
		ps.order = append(ps.order, key)
	}
	e.key = key
	e.targetType = targetType
	ps.entries[key] = e
}

func (ps *PatternSet) get(key string) (*entry, bool) {
	e, ok := ps.entries[key]
	return e, ok
}

// compile parses a pattern given either as a `/body/flags` literal or a
// bare string (flags default to "g", matching spec §4.2's uniform parser).
// Patterns containing a look-around assertion cannot compile under Go's
// RE2-based regexp package; those are compiled with regexp2 instead (see
// DESIGN.md Open Question 1).
func compile(pattern string) (*entry, error) {
	body, flags := splitLiteral(pattern)
	goFlags := translateFlags(flags)

	src := body
	if goFlags != "" {
		src = "(?" + goFlags + ")" + body
	}

	if re, err := regexp.Compile(src); err == nil {
		return &entry{re: re, raw: pattern}, nil
	}

	opts := regexp2.None
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	re2, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, corerrors.Wrap(corerrors.PatternError, "patterns", err, "failed to compile pattern: "+pattern)
	}
	return &entry{re2: re2, lookaround: true, raw: pattern}, nil
}

// splitLiteral parses "/body/flags" into (body, flags); bare strings are
// returned with the default "g" flag.
func splitLiteral(pattern string) (body, flags string) {
	if len(pattern) >= 2 && pattern[0] == '/' {
		if i := strings.LastIndex(pattern, "/"); i > 0 {
			return pattern[1:i], pattern[i+1:]
		}
	}
	return pattern, "g"
}

// translateFlags maps JS regex flags to Go's inline flag letters; "g" has
// no Go equivalent (Go always finds all matches via FindAll*) and "m"/"s"
// map directly.
func translateFlags(flags string) string {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i':
			b.WriteRune('i')
		case 'm':
			b.WriteRune('m')
		case 's':
			b.WriteRune('s')
		}
	}
	return b.String()
}
