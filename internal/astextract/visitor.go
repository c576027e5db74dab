// Package astextract orchestrates parse-and-visit (C5): it parses source
// via internal/jsast, walks the resulting AST with an ancestor-tracking
// DFS, and dispatches matching Visitors at each node.
package astextract

import (
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/detect"
)

// VisitContext carries per-extraction state a Visitor needs: the ancestor
// stack for containment queries, source attribution, the raw source lines
// for context-snippet rendering, and a byte-offset -> line/column resolver
// for the exact text the AST's node positions index into.
type VisitContext struct {
	SourceURL   string
	Ancestors   []ast.Node
	SourceLines []string

	lineStarts []int // 0-based byte offset of the start of each line
}

// newVisitContext builds a VisitContext from the text actually parsed
// (sourceURL's preprocessed source, since that is what goja's AST node
// Idx0()/Idx1() offsets are relative to).
func newVisitContext(sourceURL, source string) *VisitContext {
	return &VisitContext{
		SourceURL:   sourceURL,
		SourceLines: strings.Split(source, "\n"),
		lineStarts:  lineStartOffsets(source),
	}
}

// lineStartOffsets returns the 0-based byte offset of the first character of
// each line in src, starting with 0 for line 1.
func lineStartOffsets(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Position resolves a goja file.Idx (a 1-based byte offset into the parsed
// source, goja's analogue of go/token.Pos) to a 1-based {line, column}.
// goja parses each file into its own single-file FileSet with base 1, so
// idx-1 is the 0-based byte offset directly.
func (c *VisitContext) Position(idx int) detect.Position {
	offset := idx - 1
	if offset < 0 {
		offset = 0
	}
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(c.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo + 1
	column := offset - c.lineStarts[lo] + 1
	return detect.Position{Line: line, Column: column}
}

// Line returns the 1-based source line text at idx, or "" if out of range.
func (c *VisitContext) Line(n int) string {
	if n < 1 || n > len(c.SourceLines) {
		return ""
	}
	return c.SourceLines[n-1]
}

// Snippet renders a multi-line context window: linesBefore above and
// linesAfter below the given 1-based line, per spec §4.4.
func (c *VisitContext) Snippet(line, linesBefore, linesAfter int) string {
	start := line - linesBefore
	if start < 1 {
		start = 1
	}
	end := line + linesAfter
	if end > len(c.SourceLines) {
		end = len(c.SourceLines)
	}
	out := ""
	for i := start; i <= end; i++ {
		if i > start {
			out += "\n"
		}
		out += c.SourceLines[i-1]
	}
	return out
}

// AncestorOfKind reports whether any ancestor node has the given Kind.
func (c *VisitContext) AncestorOfKind(kind string) bool {
	for _, a := range c.Ancestors {
		if kindOf(a) == kind {
			return true
		}
	}
	return false
}

// Visitor declares interest in a set of node Kinds and contributes
// Detections when visiting matching nodes. Visitors must be pure per node:
// no mutable state shared across nodes other than what VisitContext
// provides (spec §4.4).
type Visitor interface {
	Name() string
	NodeKinds() []string
	Enabled() bool
	Visit(node ast.Node, kind string, ctx *VisitContext) []detect.Detection
	Leave(node ast.Node, kind string, ctx *VisitContext)
}
