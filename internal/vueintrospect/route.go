// Package vueintrospect locates Vue Router configurations and enumerates
// their routes, via a live-DOM branch (rod-backed, run during page scan)
// and a static branch (regex-driven, run during deep crawl over fetched
// JS text) — spec §4.8.
package vueintrospect

import "strings"

// authMetaPattern is the ~case-insensitive substring match for spec
// §4.8's "classify hasAuth" rule.
var authMetaKeywords = []string{"auth", "requireauth", "requiresauth", "authenticated", "login", "permission", "role"}

// sensitiveRouteKeywords is the ~25-term list of spec §4.8's
// sensitive-route heuristic.
var sensitiveRouteKeywords = []string{
	"admin", "manage", "dashboard", "system", "config", "setting", "user",
	"account", "profile", "password", "secret", "api", "upload", "file",
	"download", "export", "import", "backup", "log", "audit", "monitor",
	"debug", "test", "dev",
}

// RouteRecord is the universal Vue route record of spec §3.
type RouteRecord struct {
	Path            string
	FullPath        string
	Name            string
	Meta            map[string]string
	HasAuth         bool
	Source          string // "live" | "static"
	MatchedKeyword  string
}

// classifyHasAuth applies spec §4.8's meta-key/value rule: a meta key
// matches an auth pattern (case-insensitive substring) and its value is
// auth-truthy ("true", "1", non-empty array/object rendered as non-empty
// string, or the literal boolean true).
func classifyHasAuth(meta map[string]string) bool {
	for k, v := range meta {
		if !matchesAuthKey(k) {
			continue
		}
		if isAuthTruthy(v) {
			return true
		}
	}
	return false
}

func matchesAuthKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range authMetaKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isAuthTruthy(value string) bool {
	v := strings.TrimSpace(strings.ToLower(value))
	switch v {
	case "true", "1":
		return true
	case "", "false", "0", "null", "undefined", "[]", "{}":
		return false
	}
	return true
}

// classifySensitive reports the first sensitive-route keyword that path
// or name contains, or "" if none match (spec §4.8's sensitive-route
// heuristic).
func classifySensitive(path, name string) string {
	haystack := strings.ToLower(path + " " + name)
	for _, kw := range sensitiveRouteKeywords {
		if strings.Contains(haystack, kw) {
			return kw
		}
	}
	return ""
}

// newRouteRecord builds a RouteRecord with HasAuth/MatchedKeyword derived
// from path/name/meta.
func newRouteRecord(path, name, fullPath, source string, meta map[string]string) RouteRecord {
	if meta == nil {
		meta = map[string]string{}
	}
	return RouteRecord{
		Path:           path,
		FullPath:       fullPath,
		Name:           name,
		Meta:           meta,
		HasAuth:        classifyHasAuth(meta),
		Source:         source,
		MatchedKeyword: classifySensitive(path, name),
	}
}
