package filter

import "regexp"
import "strings"

// cssUnits are suffixes that make a bare number read as a CSS length.
var cssUnits = []string{"px", "em", "rem", "%", "vh", "vw", "pt", "pc", "ch", "ex"}

// cssKeywords are common value-position keywords that look like credential
// lookalikes but are really style values.
var cssKeywords = []string{
	"solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset",
	"default", "block", "inline", "flex", "grid", "none", "auto", "inherit",
	"initial", "unset", "absolute", "relative", "fixed", "sticky", "static",
	"bold", "italic", "normal", "uppercase", "lowercase", "capitalize",
}

var cssRGBAPattern = regexp.MustCompile(`(?i)^rgba?\(\s*[\d.%,\s]+\)$`)
var cssHexColorPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3}|[0-9a-f]{4}|[0-9a-f]{6}|[0-9a-f]{8})$`)
var cssCompoundPattern = regexp.MustCompile(`(?i)^-?\d+(\.\d+)?(px|em|rem|%|vh|vw|pt)\s+(solid|dashed|dotted|double|none)\s+#?[0-9a-f]{3,8}$`)

// IsCSSStyleCode reports whether s is shaped like a CSS value, used to
// suppress false-positive credential detections that happen to look like
// short tokens (e.g. "3px solid #fff").
func IsCSSStyleCode(s string) bool {
	v := strings.TrimSpace(s)
	if v == "" {
		return false
	}
	if cssRGBAPattern.MatchString(v) || cssHexColorPattern.MatchString(v) || cssCompoundPattern.MatchString(v) {
		return true
	}
	lower := strings.ToLower(v)
	for _, kw := range cssKeywords {
		if lower == kw {
			return true
		}
	}
	for _, unit := range cssUnits {
		if strings.HasSuffix(lower, unit) {
			rest := strings.TrimSuffix(lower, unit)
			if isNumeric(rest) {
				return true
			}
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	seenDot := false
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r == '.' {
			if seenDot {
				return false
			}
			seenDot = true
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// commentDelimiters are stripped by IsEmptyComment before checking residue.
var commentDelimiters = []string{"//", "/*", "*/", "<!--", "-->"}

// IsEmptyComment reports whether s is a comment whose content, after
// stripping delimiters and whitespace, is empty.
func IsEmptyComment(s string) bool {
	v := s
	for _, d := range commentDelimiters {
		v = strings.ReplaceAll(v, d, "")
	}
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "*-")
	return strings.TrimSpace(v) == ""
}

// noiseList is an enumerated set of framework-doc URLs and boilerplate
// patterns that recur across codebases without carrying useful signal.
var noiseList = []string{
	"vuejs.org", "reactjs.org", "angular.io", "developer.mozilla.org",
	"w3.org", "github.com/facebook", "stackoverflow.com",
	"/android/i.test", "/ios/i.test", "/iphone/i.test",
	"yyyy/mm/dd", "yyyy-mm-dd", "dd/mm/yyyy", "mm/dd/yyyy",
	"lorem ipsum", "the quick brown fox",
}

// ContainsFilteredContentType reports whether s contains known-noise
// substrings (framework doc URLs, boilerplate regex/date-format text).
func ContainsFilteredContentType(s string) bool {
	lower := strings.ToLower(s)
	for _, n := range noiseList {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

var methodCallShape = regexp.MustCompile(`^[A-Za-z]\.[A-Za-z]+$`)
var hashShapedSegment = regexp.MustCompile(`(?i)^[a-f0-9]{32}$|^[a-f0-9]{40}$|^[a-f0-9]{64}$`)
var base64ShapedSegment = regexp.MustCompile(`^[A-Za-z0-9+/]{32,}={0,2}$`)
var randomCaseAlternation = regexp.MustCompile(`^([a-z][A-Z]|[A-Z][a-z]){6,}`)

// IsFilteredByRegex rejects strings matching shapes known to be noise:
// single-letter method-call chains (`a.b`), Base64/hash-shaped opaque
// segments, and strings whose case alternates in a pattern typical of
// obfuscated identifiers rather than real secrets.
func IsFilteredByRegex(s string) bool {
	v := strings.TrimSpace(s)
	if methodCallShape.MatchString(v) {
		return true
	}
	if len(v)%4 == 0 && len(v) >= 32 && base64ShapedSegment.MatchString(v) {
		return true
	}
	if hashShapedSegment.MatchString(v) {
		return true
	}
	if randomCaseAlternation.MatchString(v) {
		return true
	}
	return false
}
