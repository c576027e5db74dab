// Package jsast provides a tolerant JavaScript parser used by the AST
// extraction pipeline (C3). It wraps github.com/dop251/goja/parser, which
// targets ES5.1+ with common ES2015+ extensions but has no ES-module
// grammar; the module/script/loose fallback chain described in spec §4.3
// is therefore implemented as three increasingly aggressive preprocessing
// passes around the same underlying parser rather than three distinct
// parser sourceTypes (see DESIGN.md Open Question 4).
package jsast

import (
	"regexp"
	"strconv"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/corescan/corescan/internal/corerrors"
)

// ParseResult is the outcome of a single Parse call.
type ParseResult struct {
	Program      *ast.Program
	Mode         string // "module" | "script" | "loose"
	Preprocessed string
	Line, Column int
}

// errorLocationPattern extracts "(line:column)" from a parser error string
// when the error type doesn't expose structured position fields directly.
var errorLocationPattern = regexp.MustCompile(`\((\d+):(\d+)\)`)

// importExportPattern strips top-level import/export statements, which
// goja's parser (ES5.1+-oriented, no ESM grammar) cannot parse; the loose
// fallback removes them so the remaining statement list still parses.
var importExportPattern = regexp.MustCompile(`(?m)^\s*(import\s+[^;\n]*;?|export\s+(default\s+)?)`)

// Parse attempts to parse src, trying three increasingly tolerant
// preprocessing passes in order ("module", "script", "loose"); the first
// successful parse wins. If all three fail, Parse returns the error from
// the final ("loose") attempt, with its {line,column} extracted.
func Parse(src, sourceURL string) (*ParseResult, error) {
	attempts := []struct {
		mode    string
		prepare func(string) string
	}{
		{"module", func(s string) string { return preprocess(s, false) }},
		{"script", func(s string) string { return preprocess(s, true) }},
		{"loose", func(s string) string { return importExportPattern.ReplaceAllString(preprocess(s, true), "") }},
	}

	var lastErr error
	var lastPrep string
	for _, attempt := range attempts {
		prepared := attempt.prepare(src)
		program, err := parser.ParseFile(nil, sourceURL, prepared, 0)
		if err == nil {
			return &ParseResult{Program: program, Mode: attempt.mode, Preprocessed: prepared}, nil
		}
		lastErr = err
		lastPrep = prepared
	}

	line, col := extractErrorLocation(lastErr)
	return &ParseResult{Mode: "loose", Preprocessed: lastPrep, Line: line, Column: col},
		corerrors.Wrap(corerrors.ParseError, "jsast", lastErr, "failed to parse after module/script/loose fallback")
}

func extractErrorLocation(err error) (line, column int) {
	if err == nil {
		return 0, 0
	}
	m := errorLocationPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, 0
	}
	line, _ = strconv.Atoi(m[1])
	column, _ = strconv.Atoi(m[2])
	return line, column
}
