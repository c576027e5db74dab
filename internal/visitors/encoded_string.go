package visitors

import (
	"encoding/hex"
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
)

// EncodedString decodes Base64/hex literals and string concatenations,
// reporting when the decoded value contains a sensitive keyword (spec
// §4.4).
type EncodedString struct{ enabled bool }

func NewEncodedString() *EncodedString { return &EncodedString{enabled: true} }

func (e *EncodedString) Name() string  { return "EncodedString" }
func (e *EncodedString) Enabled() bool { return e.enabled }
func (e *EncodedString) NodeKinds() []string {
	return []string{astextract.KindLiteral, astextract.KindBinaryExpression, astextract.KindCallExpression}
}

func (e *EncodedString) Visit(node ast.Node, kind string, ctx *astextract.VisitContext) []detect.Detection {
	switch kind {
	case astextract.KindLiteral:
		return e.visitLiteral(node.(ast.Expression), node, ctx)
	case astextract.KindBinaryExpression:
		return e.visitConcat(node.(*ast.BinaryExpression), ctx)
	case astextract.KindCallExpression:
		return e.visitCall(node.(*ast.CallExpression), ctx)
	}
	return nil
}

func (e *EncodedString) visitLiteral(expr ast.Expression, node ast.Node, ctx *astextract.VisitContext) []detect.Detection {
	value, ok := stringLiteralValue(expr)
	if !ok {
		return nil
	}
	if decoded, ok := isBase64Shaped(value); ok && containsSensitiveKeyword(decoded) {
		return e.detection(decoded, 0.85, node, ctx)
	}
	if isHexShaped(value) {
		if decoded := decodeHex(value); containsSensitiveKeyword(decoded) {
			return e.detection(decoded, 0.85, node, ctx)
		}
	}
	return nil
}

func (e *EncodedString) visitConcat(bin *ast.BinaryExpression, ctx *astextract.VisitContext) []detect.Detection {
	parts, ok := flattenConcat(bin)
	if !ok {
		return nil
	}
	joined := strings.Join(parts, "")
	if containsSensitiveKeyword(joined) {
		return e.detection(joined, 0.7, bin, ctx)
	}
	return nil
}

func (e *EncodedString) visitCall(call *ast.CallExpression, ctx *astextract.VisitContext) []detect.Detection {
	callee := calleeSignature(call.Callee)
	switch callee {
	case "atob":
		if len(call.ArgumentList) == 1 {
			if value, ok := stringLiteralValue(call.ArgumentList[0]); ok {
				if decoded, ok := isBase64Shaped(value); ok && containsSensitiveKeyword(decoded) {
					return e.detection(decoded, 0.85, call, ctx)
				}
			}
		}
	case "string.fromcharcode":
		if joined, ok := fromCharCodeValue(call.ArgumentList); ok && containsSensitiveKeyword(joined) {
			return e.detection(joined, 0.7, call, ctx)
		}
	}
	if dot, ok := call.Callee.(*ast.DotExpression); ok && string(dot.Identifier.Name) == "join" {
		if arr, ok := dot.Left.(*ast.ArrayLiteral); ok && len(call.ArgumentList) == 1 {
			sep, _ := stringLiteralValue(call.ArgumentList[0])
			var parts []string
			for _, el := range arr.Value {
				v, ok := stringLiteralValue(el)
				if !ok {
					return nil
				}
				parts = append(parts, v)
			}
			joined := strings.Join(parts, sep)
			if containsSensitiveKeyword(joined) {
				return e.detection(joined, 0.7, call, ctx)
			}
		}
	}
	return nil
}

func (e *EncodedString) detection(value string, confidence float64, node ast.Node, ctx *astextract.VisitContext) []detect.Detection {
	return []detect.Detection{{
		Type:       detect.TypeEncodedString,
		Value:      value,
		Confidence: confidence,
		Location:   loc(node, ctx),
		Source:     detect.SourceAST,
		SourceURL:  ctx.SourceURL,
		Context:    map[string]string{"snippet": snippetFor(node, ctx)},
	}}
}

func (e *EncodedString) Leave(node ast.Node, kind string, ctx *astextract.VisitContext) {}

func flattenConcat(bin *ast.BinaryExpression) ([]string, bool) {
	var parts []string
	var walk func(expr ast.Expression) bool
	walk = func(expr ast.Expression) bool {
		switch ex := expr.(type) {
		case *ast.BinaryExpression:
			return walk(ex.Left) && walk(ex.Right)
		default:
			v, ok := stringLiteralValue(expr)
			if !ok {
				return false
			}
			parts = append(parts, v)
			return true
		}
	}
	if !walk(bin) {
		return nil, false
	}
	return parts, true
}

func fromCharCodeValue(args []ast.Expression) (string, bool) {
	var b strings.Builder
	for _, arg := range args {
		num, ok := arg.(*ast.NumberLiteral)
		if !ok {
			return "", false
		}
		v, ok := num.Value.(int64)
		if !ok {
			if f, isFloat := num.Value.(float64); isFloat {
				v = int64(f)
			} else {
				return "", false
			}
		}
		b.WriteRune(rune(v))
	}
	return b.String(), true
}

func decodeHex(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = s[:len(s)-1]
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(decoded)
}

var sensitiveValueKeywords = []string{"password", "secret", "token", "key", "credential", "auth"}

func containsSensitiveKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range sensitiveValueKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
