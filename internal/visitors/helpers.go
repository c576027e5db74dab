package visitors

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
)

// stringLiteralValue returns a Literal's string value, or a template
// literal's value when it has exactly one static quasi and no
// substitutions (spec §4.4's "single-quasi template" rule).
func stringLiteralValue(expr ast.Expression) (string, bool) {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return string(e.Value), true
	case *ast.TemplateLiteral:
		if len(e.Expressions) == 0 && len(e.Elements) == 1 {
			return e.Elements[0].Literal, true
		}
	}
	return "", false
}

// identifierName returns the bound name of a declarator/property target if
// it resolves to a plain identifier.
func identifierName(expr ast.Expression) (string, bool) {
	if id, ok := expr.(*ast.Identifier); ok {
		return string(id.Name), true
	}
	return "", false
}

// memberName extracts the right-hand identifier of a `a.b` MemberExpression.
func memberName(expr ast.Expression) (string, bool) {
	if dot, ok := expr.(*ast.DotExpression); ok {
		return string(dot.Identifier.Name), true
	}
	return "", false
}

// propertyKeyName extracts the key name of an ObjectLiteral property.
func propertyKeyName(prop ast.Property) (string, bool) {
	switch p := prop.(type) {
	case *ast.PropertyKeyed:
		if lit, ok := stringLiteralValue(p.Key); ok {
			return lit, true
		}
		return identifierName(p.Key)
	case *ast.PropertyShort:
		return string(p.Name.Name), true
	}
	return "", false
}

func propertyValue(prop ast.Property) (ast.Expression, bool) {
	switch p := prop.(type) {
	case *ast.PropertyKeyed:
		return p.Value, true
	case *ast.PropertyShort:
		return p.Initializer, p.Initializer != nil
	}
	return nil, false
}

func loc(node ast.Node, ctx *astextract.VisitContext) *detect.Location {
	return &detect.Location{
		Start: ctx.Position(int(node.Idx0())),
		End:   ctx.Position(int(node.Idx1())),
	}
}

func snippetFor(node ast.Node, ctx *astextract.VisitContext) string {
	line := ctx.Position(int(node.Idx0())).Line
	return ctx.Snippet(line, 2, 2)
}

// sensitiveKeywords is the ~25-word credential-name list of spec §4.4.
var sensitiveKeywords = []string{
	"password", "passwd", "pwd", "secret", "token", "apikey", "api_key",
	"accesskey", "access_key", "accesstoken", "access_token", "privatekey",
	"private_key", "clientsecret", "client_secret", "credential", "auth",
	"authorization", "sessionid", "session_id", "cookie", "signature",
	"secretkey", "secret_key", "encryptionkey",
}

func isSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// credentialValuePatterns are the ~9 vendor/shape patterns of spec §4.4.
var credentialValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Za-z0-9+/]{20,}={0,2}$`),        // base64 >= 20
	regexp.MustCompile(`(?i)^[a-f0-9]{32,}$`),                // hex hash >= 32
	regexp.MustCompile(`^sk_[A-Za-z0-9]+$`),
	regexp.MustCompile(`^pk_[A-Za-z0-9]+$`),
	regexp.MustCompile(`^ghp_[A-Za-z0-9]+$`),
	regexp.MustCompile(`^gho_[A-Za-z0-9]+$`),
	regexp.MustCompile(`^AKIA[A-Z0-9]+$`),
	regexp.MustCompile(`^AIza[A-Za-z0-9_\-]+$`),
	regexp.MustCompile(`^xox[baprs]-[A-Za-z0-9-]+$`),
}

func matchesCredentialValueShape(value string) bool {
	for _, p := range credentialValuePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// apiMarkers are the static-part indicators that make a template literal
// classify as API-like (spec §4.4 APIEndpoint rule).
var apiMarkers = []string{"/api/", "/rest/", "/graphql"}
var apiVersionPattern = regexp.MustCompile(`/v\d+/`)

func looksLikeAPIPath(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range apiMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	if apiVersionPattern.MatchString(lower) {
		return true
	}
	return strings.Count(s, "/") >= 2
}

// isBase64Shaped reports whether s decodes cleanly as base64 and is at
// least 16 chars, a multiple of 4.
func isBase64Shaped(s string) (string, bool) {
	if len(s) < 16 || len(s)%4 != 0 {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

var hexLiteralPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{16,}$`)

func isHexShaped(s string) bool {
	return hexLiteralPattern.MatchString(s)
}
