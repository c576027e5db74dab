package visitors

import (
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
)

// severity buckets for the ~20-entry sensitive-API table of spec §4.4.
const (
	severityHigh   = "high"
	severityMedium = "medium"
	severityLow    = "low"
)

type sensitiveAPI struct {
	suffix   string // dotted suffix to match, e.g. "document.cookie"
	severity string
	// assignmentOnly restricts the match to assignment left-hand sides
	// (document.write/innerHTML are only interesting when written to).
	assignmentOnly bool
}

var sensitiveAPITable = []sensitiveAPI{
	{"eval", severityHigh, false},
	{"function", severityHigh, false}, // `new Function(...)`
	{"document.cookie", severityHigh, false},
	{"document.write", severityMedium, false},
	{"innerhtml", severityMedium, true},
	{"outerhtml", severityMedium, true},
	{"crypto.subtle", severityMedium, false},
	{"crypto.getrandomvalues", severityLow, false},
	{"localstorage.setitem", severityMedium, false},
	{"sessionstorage.setitem", severityMedium, false},
	{"xmlhttprequest", severityLow, false},
	{"websocket", severityLow, false},
	{"atob", severityLow, false},
	{"btoa", severityLow, false},
	{"postmessage", severityMedium, false},
	{"settimeout", severityLow, false},
	{"setinterval", severityLow, false},
	{"document.domain", severityMedium, false},
	{"window.open", severityLow, false},
	{"navigator.sendbeacon", severityLow, false},
}

func severityConfidence(sev string) float64 {
	switch sev {
	case severityHigh:
		return 0.9
	case severityMedium:
		return 0.7
	default:
		return 0.5
	}
}

// SensitiveFunction flags call sites and member accesses against the
// curated sensitive-API table (spec §4.4).
type SensitiveFunction struct{ enabled bool }

func NewSensitiveFunction() *SensitiveFunction { return &SensitiveFunction{enabled: true} }

func (s *SensitiveFunction) Name() string  { return "SensitiveFunction" }
func (s *SensitiveFunction) Enabled() bool { return s.enabled }
func (s *SensitiveFunction) NodeKinds() []string {
	return []string{astextract.KindCallExpression, astextract.KindMemberExpression}
}

func (s *SensitiveFunction) Visit(node ast.Node, kind string, ctx *astextract.VisitContext) []detect.Detection {
	switch kind {
	case astextract.KindCallExpression:
		call := node.(*ast.CallExpression)
		return s.match(calleeSignature(call.Callee), node, ctx, false)
	case astextract.KindMemberExpression:
		sig := calleeSignature(node.(ast.Expression))
		isAssignTarget := ctx.AncestorOfKind(astextract.KindAssignmentExpr)
		return s.match(sig, node, ctx, isAssignTarget)
	}
	return nil
}

func (s *SensitiveFunction) match(signature string, node ast.Node, ctx *astextract.VisitContext, isAssignTarget bool) []detect.Detection {
	if signature == "" {
		return nil
	}
	for _, api := range sensitiveAPITable {
		if api.assignmentOnly && !isAssignTarget {
			continue
		}
		if signature == api.suffix || strings.HasSuffix(signature, "."+api.suffix) {
			return []detect.Detection{{
				Type:       detect.TypeSensitiveFunction,
				Value:      signature,
				Confidence: severityConfidence(api.severity),
				Location:   loc(node, ctx),
				Source:     detect.SourceAST,
				SourceURL:  ctx.SourceURL,
				Context:    map[string]string{"severity": api.severity, "snippet": snippetFor(node, ctx)},
			}}
		}
	}
	return nil
}

func (s *SensitiveFunction) Leave(node ast.Node, kind string, ctx *astextract.VisitContext) {}
