// Package merge implements the Result Merger (C6): union of AST and regex
// Detection streams, similarity-based dedup, and confidence boosting on
// double-verification (spec §4.6).
package merge

import (
	"strings"

	"github.com/corescan/corescan/internal/detect"
)

// SimilarityThreshold is the default match threshold for near-duplicate
// values that aren't exact-key-equal.
const SimilarityThreshold = 0.9

const prefixLen = 50

// Merge unions ast and regex Detection lists, merging exact-dedup-key
// duplicates (context union, confidence-from-higher-source, doubleVerified
// when the two engines agree) and near-duplicates above
// SimilarityThreshold.
func Merge(ast, regex []detect.Detection) []detect.Detection {
	out := make([]detect.Detection, 0, len(ast)+len(regex))
	out = append(out, ast...)

	for _, r := range regex {
		idx := findMatch(out, r)
		if idx < 0 {
			out = append(out, r)
			continue
		}
		out[idx] = mergeTwo(out[idx], r)
	}
	return out
}

// findMatch returns the index in existing of a Detection that dedup-keys or
// similarity-matches r, or -1 if none does.
func findMatch(existing []detect.Detection, r detect.Detection) int {
	rKind, rVal, rLine := r.Key()
	for i, e := range existing {
		eKind, eVal, eLine := e.Key()
		if eKind != rKind {
			continue
		}
		if eVal == rVal && eLine == rLine {
			return i
		}
		if eKind != rKind {
			continue
		}
		if e.Type == r.Type && locationsOverlap(e.Location, r.Location) && similar(e.Value, r.Value) {
			return i
		}
	}
	return -1
}

// mergeTwo merges b into a: context union, confidence kept from the higher
// source, doubleVerified + +0.1 AST confidence boost (capped at 1.0) when
// the two Detections came from different engines.
func mergeTwo(a, b detect.Detection) detect.Detection {
	for k, v := range b.Context {
		a = a.WithContext(k, v)
	}
	if b.Confidence > a.Confidence {
		a.Confidence = b.Confidence
	}
	if a.Source != b.Source {
		a.DoubleVerified = true
		// keep the AST-sourced record's identity (location, etc.) but boost
		// its confidence for having been independently confirmed by regex.
		if a.Source == detect.SourceRegex && b.Source == detect.SourceAST {
			a.Location = b.Location
			a.Source = detect.SourceAST
		}
		a.BoostConfidence(0.1)
	}
	return a
}

// locationsOverlap reports whether two Locations' line ranges intersect, or
// true if either is nil (regex Detections carry no Location).
func locationsOverlap(a, b *detect.Location) bool {
	if a == nil || b == nil {
		return true
	}
	return a.Start.Line <= b.End.Line && b.Start.Line <= a.End.Line
}

// similar implements spec §4.6's near-duplicate measure: substring
// containment ratio when one value contains the other, else
// 1 - Levenshtein/maxLen, both computed on 50-char prefixes.
func similar(a, b string) bool {
	pa := prefix(a, prefixLen)
	pb := prefix(b, prefixLen)
	if pa == "" || pb == "" {
		return pa == pb
	}
	if strings.Contains(pa, pb) || strings.Contains(pb, pa) {
		return true
	}
	maxLen := len(pa)
	if len(pb) > maxLen {
		maxLen = len(pb)
	}
	if maxLen == 0 {
		return true
	}
	ratio := 1.0 - float64(levenshtein(pa, pb))/float64(maxLen)
	return ratio >= SimilarityThreshold
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// levenshtein computes the classic edit distance with a two-row DP table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
