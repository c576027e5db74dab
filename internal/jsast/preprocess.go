package jsast

import (
	"regexp"
	"strings"
)

// stripBOMAndNormalizeNewlines removes a UTF-8 BOM and normalizes CRLF/CR
// to LF, per spec §4.3 preprocessing.
func stripBOMAndNormalizeNewlines(src string) string {
	src = strings.TrimPrefix(src, "﻿")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return src
}

// zeroWidthChars are stripped entirely; they carry no semantic meaning in
// source text and otherwise confuse the parser's column tracking.
var zeroWidthChars = []string{"​", "‌", "‍", "﻿"}

func stripZeroWidth(src string) string {
	for _, c := range zeroWidthChars {
		src = strings.ReplaceAll(src, c, "")
	}
	return src
}

// jsxTagPattern matches a single balanced-ish JSX open/self-closing/close
// tag span; nested tags are handled by repeated passes until no further
// replacement happens, since Go's regexp cannot express true nesting.
var jsxTagPattern = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9.]*(?:\s+[A-Za-z_][\w-]*(?:=(?:"[^"]*"|'[^']*'|\{[^{}]*\}))?)*\s*/?>|</[A-Za-z][A-Za-z0-9.]*\s*>`)

// elideJSX replaces each matched JSX tag with an equal-length quoted string
// placeholder, preserving byte offsets/positions for the parser's location
// tracking (spec §4.3).
func elideJSX(src string) string {
	for pass := 0; pass < 8; pass++ {
		replaced := jsxTagPattern.ReplaceAllStringFunc(src, func(tag string) string {
			if len(tag) < 2 {
				return tag
			}
			return `"` + strings.Repeat("x", len(tag)-2) + `"`
		})
		if replaced == src {
			break
		}
		src = replaced
	}
	return src
}

// tsAnnotationPattern strips simple ": Type" annotations following
// identifiers in declarator/parameter/return positions. It intentionally
// only handles the common single-token/generic-free case; complex types
// are left in place and may cause a later parse attempt to fail, which is
// acceptable since the fallback chain tries progressively looser passes.
var tsAnnotationPattern = regexp.MustCompile(`(\b\w+\s*\??)\s*:\s*[A-Za-z_][\w.<>\[\]| ]*(?=[,)=;\n])`)

var tsInterfaceOrTypePattern = regexp.MustCompile(`(?m)^\s*(export\s+)?(interface|type)\s+\w+[^\n]*\{[^}]*\}\s*$`)

func elideTypeScript(src string) string {
	src = tsInterfaceOrTypePattern.ReplaceAllString(src, "")
	src = tsAnnotationPattern.ReplaceAllString(src, "$1")
	return src
}

// preprocess applies the unconditional passes (BOM/newline/zero-width) and,
// when aggressive is true, the conditional JSX/TypeScript elision passes
// used by the looser fallback attempts.
func preprocess(src string, aggressive bool) string {
	src = stripBOMAndNormalizeNewlines(src)
	src = stripZeroWidth(src)
	if aggressive {
		src = elideJSX(src)
		src = elideTypeScript(src)
	}
	return src
}
