// Package webpackchunks reconstructs webpack chunk name/hash maps from
// bundler runtime code and enumerates the chunk URLs a page would lazily
// load (spec §4.9).
package webpackchunks

import (
	"regexp"
	"strconv"
	"strings"
)

// ChunkURL is one lazily-loadable bundle discovered from webpack runtime
// code.
type ChunkURL struct {
	URL     string
	ChunkID string
	Type    string // always "async"
	Source  string
}

var reservedMapKeys = map[string]bool{
	"id": true, "name": true, "type": true, "hash": true, "version": true, "mode": true,
}

type mapLiteral map[string]string

// reClassicDualMap matches pattern 1: a name map and a hash map indexed
// by the same variable, joined by "." (`nameMap[e]+"."+hashMap[e]+suffix`).
// Both maps may appear bare (`map[e]`) or parenthesized either around just
// the map literal (`(map)[e]`) or around the whole index expression
// (`(map[e])`), so the optional parens are checked on both sides of the
// index for each map.
var reClassicDualMap = regexp.MustCompile(`\(?\s*(\{(?:[^{}]|\{[^{}]*\})*\})\)?\s*\[\s*(\w+)\s*\]\s*\)?\s*\+\s*["` + "`" + `']\.["` + "`" + `']\s*\+\s*\(?\s*(\{(?:[^{}]|\{[^{}]*\})*\})\)?\s*\[\s*\2\s*\]\s*\)?\s*\+\s*["` + "`" + `']([^"` + "`" + `']{0,20})["` + "`" + `']`)

// reSingleMapSuffix matches patterns 2, 3, 5 and 6: a single map literal
// indexed by a variable and concatenated with a trailing quoted suffix. As
// with reClassicDualMap, the map/index pair may be wrapped in parens either
// side of the index.
var reSingleMapSuffix = regexp.MustCompile(`\(?\s*(\{(?:[^{}]|\{[^{}]*\})*\})\)?\s*\[\s*(\w+)\s*\]\s*\)?\s*\+\s*["` + "`" + `']([^"` + "`" + `']{1,20})["` + "`" + `']`)

// reWebpackRequireU matches pattern 4: webpack 5's
// `__webpack_require__.u = function(e){ return ...{"0":"abc",...}[e] ... }`.
var reWebpackRequireU = regexp.MustCompile(`__webpack_require__\.u\s*=\s*function\s*\(\s*(\w+)\s*\)\s*\{[\s\S]{0,400}?(\{(?:[^{}]|\{[^{}]*\})*\})\s*\[\s*\1\s*\]\s*(?:\+\s*["` + "`" + `']([^"` + "`" + `']{0,20})["` + "`" + `'])?`)

// rePublicPath picks up webpack's `__webpack_require__.p = "..."` public
// path assignment, used to resolve relative chunk names.
var rePublicPath = regexp.MustCompile(`__webpack_require__\.p\s*=\s*["` + "`" + `']([^"` + "`" + `']*)["` + "`" + `']`)

// reChunkLiteral and reVendorsCommons are the lightweight patterns that
// scan for chunk-shaped file names directly in string literals.
var reChunkLiteral = regexp.MustCompile(`["` + "`" + `'](\d+\.[a-f0-9]{6,}\.js)["` + "`" + `']`)
var reVendorsCommons = regexp.MustCompile(`(?:^|[/"` + "`" + `'])((?:vendors|commons)~[\w.-]+\.js)`)

// Analyze reconstructs lazily-loaded webpack chunk URLs from bundler
// runtime code, per the six recognized patterns of spec §4.9 plus the
// lightweight chunk-shaped string-literal scan. loadedURLs suppresses
// chunks that duplicate an already-requested <script src>.
func Analyze(runtimeJS, origin, publicPath string, loadedURLs map[string]bool) []ChunkURL {
	if loadedURLs == nil {
		loadedURLs = map[string]bool{}
	}
	if pp := rePublicPath.FindStringSubmatch(runtimeJS); len(pp) > 1 && pp[1] != "" {
		publicPath = pp[1]
	}

	var out []ChunkURL
	seen := map[string]bool{}
	add := func(id, name, hash, suffix, source string) {
		base := name
		if base == "" {
			base = id
		}
		if base == "" {
			return
		}
		filename := base
		if hash != "" {
			filename += "." + hash
		}
		filename += suffix
		u := joinPublicPath(origin, publicPath, filename)
		if loadedURLs[u] || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, ChunkURL{URL: u, ChunkID: id, Type: "async", Source: source})
	}

	for _, m := range reClassicDualMap.FindAllStringSubmatch(runtimeJS, -1) {
		suffix := m[4]
		if !looksLikeSuffix(suffix) {
			continue
		}
		nameMap := parseMapLiteral(m[1])
		hashMap := parseMapLiteral(m[3])
		for id, name := range nameMap {
			if hash, ok := hashMap[id]; ok {
				add(id, name, hash, suffix, "runtime-classic")
			}
		}
	}

	for _, m := range reSingleMapSuffix.FindAllStringSubmatch(runtimeJS, -1) {
		classifyMapLiteral(parseMapLiteral(m[1]), m[3], "runtime-simplified", add)
	}

	for _, m := range reWebpackRequireU.FindAllStringSubmatch(runtimeJS, -1) {
		classifyMapLiteral(parseMapLiteral(m[2]), m[3], "runtime-webpack5", add)
	}

	for _, m := range reChunkLiteral.FindAllStringSubmatch(runtimeJS, -1) {
		emitLiteral(&out, seen, origin, publicPath, m[1], loadedURLs)
	}
	for _, m := range reVendorsCommons.FindAllStringSubmatch(runtimeJS, -1) {
		emitLiteral(&out, seen, origin, publicPath, m[1], loadedURLs)
	}

	return out
}

func emitLiteral(out *[]ChunkURL, seen map[string]bool, origin, publicPath, filename string, loadedURLs map[string]bool) {
	u := joinPublicPath(origin, publicPath, filename)
	if loadedURLs[u] || seen[u] {
		return
	}
	seen[u] = true
	*out = append(*out, ChunkURL{URL: u, ChunkID: filename, Type: "async", Source: "runtime-literal"})
}

// classifyMapLiteral distinguishes pattern 5 (all-numeric keys, a plain
// id/hash map) from pattern 6 (named-chunk keys, excluding reserved-
// looking keys such as "id"/"name"/"type").
func classifyMapLiteral(lit mapLiteral, suffix, source string, add func(id, name, hash, suffix, source string)) {
	if suffix == "" {
		suffix = ".js"
	}
	if !looksLikeSuffix(suffix) || len(lit) == 0 {
		return
	}
	allNumeric := true
	hasReserved := false
	for k := range lit {
		if _, err := strconv.Atoi(k); err != nil {
			allNumeric = false
		}
		if reservedMapKeys[strings.ToLower(k)] {
			hasReserved = true
		}
	}
	if hasReserved && !allNumeric {
		return
	}
	for k, v := range lit {
		if allNumeric {
			add(k, "", v, suffix, source)
		} else {
			add(k, k, v, suffix, source)
		}
	}
}

func looksLikeSuffix(s string) bool {
	return strings.HasPrefix(s, ".") && len(s) <= 12 && !strings.ContainsAny(s, " {}()[]\t\n")
}

func joinPublicPath(origin, publicPath, filename string) string {
	if strings.HasPrefix(publicPath, "http://") || strings.HasPrefix(publicPath, "https://") {
		return ensureTrailingSlash(publicPath) + filename
	}
	path := publicPath
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(origin, "/") + ensureTrailingSlash(path) + filename
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// parseMapLiteral parses the contents of a brace-delimited JS object
// literal into a string map, tolerating unquoted numeric keys.
func parseMapLiteral(raw string) mapLiteral {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	out := mapLiteral{}
	for _, entry := range splitTopLevel(raw, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := splitTopLevel(entry, ':')
		if len(parts) != 2 {
			continue
		}
		key := unquote(strings.TrimSpace(parts[0]))
		val := unquote(strings.TrimSpace(parts[1]))
		if key == "" {
			continue
		}
		out[key] = val
	}
	return out
}

// splitTopLevel splits s on sep, ignoring occurrences inside quotes or
// nested brackets/braces/parens.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '{' || c == '[' || c == '(':
			depth++
		case c == '}' || c == ']' || c == ')':
			depth--
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
