// Package filter implements pure, stateless predicates used to classify and
// suppress noise in extracted text fragments before they become Detections.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// genericTLDShape is the fallback accepted when a TLD isn't in the
// public-suffix list: 2-10 lowercase letters, per spec.md §4.1.
var genericTLDShape = regexp.MustCompile(`^[a-z]{2,10}$`)

// staticExtensions are the ~60 resource extensions treated as static assets.
var staticExtensions = []string{
	".js", ".mjs", ".cjs", ".css", ".scss", ".sass", ".less",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp", ".avif",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".map", ".json", ".xml", ".txt", ".csv",
	".mp4", ".webm", ".ogg", ".mp3", ".wav", ".flac", ".avi", ".mov",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".html", ".htm", ".wasm",
	".ttc", ".dfont",
	".swf", ".flv",
	".apk", ".ipa", ".dmg", ".exe",
	".lock", ".log", ".md", ".yml", ".yaml",
}

// staticDirectories are path segments that strongly imply a static asset.
var staticDirectories = []string{
	"/assets/", "/static/", "/dist/", "/public/", "/build/",
	"/node_modules/", "/vendor/", "/lib/", "/fonts/", "/images/", "/img/",
}

// IsStaticFile reports whether url looks like a reference to a static
// resource rather than an API route or meaningful path.
func IsStaticFile(raw string) bool {
	s := stripQueryAndFragment(unquote(raw))
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, dir := range staticDirectories {
		if strings.Contains(lower, dir) {
			return true
		}
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func stripQueryAndFragment(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`+"`")
	return s
}

// jsPropertyAccessPrefixes are receiver-shaped prefixes that make a
// dotted string look like JS property access rather than a domain.
var jsPropertyAccessPrefixes = []string{
	"this.", "refs.", "$.", "_.", "self.", "window.", "props.", "state.",
}

// codeSuffixes end in a way that reads as a JS member access, not a TLD.
var codeSuffixes = []string{
	".test", ".exec", ".value", ".length", ".map", ".filter", ".call",
	".apply", ".bind", ".then", ".catch", ".prototype", ".constructor",
}

// shortDomainWhitelist exempts known short link-shortener domains from the
// minimum-length and dot-count heuristics below.
var shortDomainWhitelist = map[string]bool{
	"t.co": true, "bit.ly": true, "goo.gl": true, "j.mp": true,
}

// staticFileTLDBlacklist rejects TLD-shaped strings that are actually file
// extensions (".js" parses as a plausible ccTLD-shaped suffix otherwise).
var staticFileTLDBlacklist = map[string]bool{
	"js": true, "css": true, "png": true, "jpg": true, "gif": true,
	"svg": true, "ico": true, "map": true, "json": true, "xml": true,
	"woff": true, "ttf": true, "eot": true, "html": true, "htm": true,
}

// IsValidDomain reports whether s looks like a real registrable domain
// name, rejecting JS property-access chains and code-suffix lookalikes.
func IsValidDomain(s string) bool {
	d := strings.ToLower(strings.TrimSpace(s))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		if _, err := strconv.Atoi(d[i+1:]); err == nil {
			d = d[:i]
		}
	}

	if shortDomainWhitelist[d] {
		return true
	}
	if len(d) < 3 {
		return false
	}
	if strings.HasPrefix(d, ".") || strings.HasSuffix(d, ".") {
		return false
	}
	if strings.Contains(d, "..") {
		return false
	}
	for _, prefix := range jsPropertyAccessPrefixes {
		if strings.HasPrefix(d, prefix) {
			return false
		}
	}

	dotCount := strings.Count(d, ".")
	if dotCount >= 3 {
		return false
	}
	if dotCount >= 2 {
		for _, suffix := range codeSuffixes {
			if strings.HasSuffix(d, suffix) {
				return false
			}
		}
	}

	tld := d
	if i := strings.LastIndex(d, "."); i >= 0 {
		tld = d[i+1:]
	} else {
		return false
	}
	if staticFileTLDBlacklist[tld] {
		return false
	}
	if !isKnownTLD(d, tld) && !genericTLDShape.MatchString(tld) {
		return false
	}

	return true
}

// isKnownTLD validates against the public-suffix list rather than a
// hand-maintained ~1,400-entry table: Parse resolves the domain's TLD the
// same way a browser's registrable-domain check would, sourced from a real
// TLD registry instead of one copy-pasted into this repo.
func isKnownTLD(domain, tld string) bool {
	dn, err := publicsuffix.Parse(domain)
	if err != nil {
		return false
	}
	return dn.TLD == tld
}

// chinesePhoneOperatorPrefixes enumerates the two-digit operator prefix
// segment (after the leading "1") for Chinese mobile numbers.
var chinesePhoneOperatorPrefixes = map[string]bool{
	// China Mobile
	"34": true, "35": true, "36": true, "37": true, "38": true, "39": true,
	"47": true, "50": true, "51": true, "52": true, "58": true, "59": true,
	"78": true, "82": true, "83": true, "84": true, "87": true, "88": true,
	"98": true,
	// China Unicom
	"30": true, "31": true, "32": true, "45": true, "46": true, "55": true,
	"56": true, "66": true, "75": true, "76": true, "85": true, "86": true,
	// China Telecom
	"33": true, "49": true, "53": true, "73": true, "74": true,
	"77": true, "80": true, "81": true, "89": true, "90": true, "91": true,
	"93": true, "99": true,
}

// IsValidChinesePhone validates an 11-digit mainland mobile number.
func IsValidChinesePhone(s string) bool {
	digits := onlyDigits(s)
	digits = strings.TrimPrefix(digits, "0086")
	digits = strings.TrimPrefix(digits, "86")
	if len(digits) < 11 {
		return false
	}
	digits = digits[len(digits)-11:]
	if digits[0] != '1' {
		return false
	}
	return chinesePhoneOperatorPrefixes[digits[1:3]]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidInternationalPhone applies the digit-shape heuristics of §4.1:
// plausible length, no repeated-digit runs, no simple ascending/descending
// sequences, not a bare decimal, not a 4-digit year.
func IsValidInternationalPhone(s string) bool {
	digits := onlyDigits(s)
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	if len(digits) == 4 {
		if yr, err := strconv.Atoi(digits); err == nil && yr >= 1900 && yr <= 2100 {
			return false
		}
	}
	if hasRepeatedRun(digits, 5) {
		return false
	}
	if isOrderedSequence(digits) {
		return false
	}
	return true
}

func hasRepeatedRun(digits string, runLen int) bool {
	if len(digits) < runLen {
		return false
	}
	run := 1
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1] {
			run++
			if run >= runLen {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func isOrderedSequence(digits string) bool {
	if len(digits) < 4 {
		return false
	}
	ascending, descending := true, true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			ascending = false
		}
		if digits[i] != digits[i-1]-1 {
			descending = false
		}
	}
	return ascending || descending
}
