package visitors

import (
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
)

// APIEndpoint recognizes fetch/axios/XHR call sites and router route
// definitions, plus URL-looking literals and template literals (spec §4.4).
type APIEndpoint struct{ enabled bool }

func NewAPIEndpoint() *APIEndpoint { return &APIEndpoint{enabled: true} }

func (a *APIEndpoint) Name() string  { return "APIEndpoint" }
func (a *APIEndpoint) Enabled() bool { return a.enabled }
func (a *APIEndpoint) NodeKinds() []string {
	return []string{astextract.KindCallExpression, astextract.KindLiteral, astextract.KindTemplateLiteral}
}

var httpMethodCalls = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
	"head": true, "options": true,
}

func (a *APIEndpoint) Visit(node ast.Node, kind string, ctx *astextract.VisitContext) []detect.Detection {
	switch kind {
	case astextract.KindCallExpression:
		return a.visitCall(node.(*ast.CallExpression), ctx)
	case astextract.KindLiteral, astextract.KindTemplateLiteral:
		return a.visitLiteral(node, ctx)
	}
	return nil
}

func (a *APIEndpoint) visitCall(call *ast.CallExpression, ctx *astextract.VisitContext) []detect.Detection {
	callee := calleeSignature(call.Callee)
	if callee == "" || len(call.ArgumentList) == 0 {
		return nil
	}

	url, ok := stringLiteralValue(call.ArgumentList[0])
	if !ok {
		return nil
	}

	matched := false
	switch {
	case callee == "fetch":
		matched = true
	case strings.HasPrefix(callee, "axios."):
		matched = true
	case callee == "xhr.open" || callee == "xmlhttprequest.open":
		matched = true
		if len(call.ArgumentList) >= 2 {
			if method, ok := stringLiteralValue(call.ArgumentList[0]); ok {
				_ = method
			}
			if second, ok := stringLiteralValue(call.ArgumentList[1]); ok {
				url = second
			}
		}
	default:
		for method := range httpMethodCalls {
			if strings.HasSuffix(callee, "."+method) {
				matched = true
			}
		}
	}
	if !matched {
		return nil
	}

	confidence := 0.7
	if strings.HasPrefix(url, "http") {
		confidence = 0.9
	}
	return []detect.Detection{{
		Type:       detect.TypeAPIEndpoint,
		Value:      url,
		Confidence: confidence,
		Location:   loc(call, ctx),
		Source:     detect.SourceAST,
		SourceURL:  ctx.SourceURL,
		Context:    map[string]string{"callee": callee, "snippet": snippetFor(call, ctx)},
	}}
}

func (a *APIEndpoint) visitLiteral(node ast.Node, ctx *astextract.VisitContext) []detect.Detection {
	value, ok := stringLiteralValue(node.(ast.Expression))
	if !ok || !looksLikeAPIPath(value) {
		return nil
	}
	return []detect.Detection{{
		Type:       detect.TypeAPIEndpoint,
		Value:      value,
		Confidence: 0.6,
		Location:   loc(node, ctx),
		Source:     detect.SourceAST,
		SourceURL:  ctx.SourceURL,
		Context:    map[string]string{"snippet": snippetFor(node, ctx)},
	}}
}

func (a *APIEndpoint) Leave(node ast.Node, kind string, ctx *astextract.VisitContext) {}

// calleeSignature renders a call's callee as a lowercase dotted path
// ("axios.get", "fetch", "xhr.open") for pattern matching.
func calleeSignature(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return strings.ToLower(string(e.Name))
	case *ast.DotExpression:
		base := calleeSignature(e.Left)
		if base == "" {
			return ""
		}
		return base + "." + strings.ToLower(string(e.Identifier.Name))
	}
	return ""
}
