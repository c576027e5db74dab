package visitors

import (
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
)

// configSensitiveKeys is the ~30-term sensitive-key list of spec §4.4.
var configSensitiveKeys = []string{
	"apikey", "api_key", "secret", "database", "db", "aws", "s3", "password",
	"token", "privatekey", "private_key", "clientid", "client_id",
	"clientsecret", "client_secret", "accesskey", "access_key", "region",
	"endpoint", "connectionstring", "connection_string", "dsn", "redis",
	"mongo", "smtp", "sentrydsn", "stripekey", "encryptionkey", "webhook",
	"authdomain",
}

var configNameIndicators = []string{"config", "settings", "env", "environment", "options"}

// ConfigObject walks object literals / assignments / module.exports and
// flags sensitive-looking keys (spec §4.4).
type ConfigObject struct{ enabled bool }

func NewConfigObject() *ConfigObject { return &ConfigObject{enabled: true} }

func (c *ConfigObject) Name() string  { return "ConfigObject" }
func (c *ConfigObject) Enabled() bool { return c.enabled }
func (c *ConfigObject) NodeKinds() []string {
	return []string{astextract.KindObjectExpression, astextract.KindAssignmentExpr, astextract.KindModuleExports}
}

func (c *ConfigObject) Visit(node ast.Node, kind string, ctx *astextract.VisitContext) []detect.Detection {
	obj := objectLiteralFor(node, kind)
	if obj == nil {
		return nil
	}

	isConfigLike := c.isConfigObject(node, ctx)
	var out []detect.Detection
	for _, prop := range obj.Value {
		name, ok := propertyKeyName(prop)
		if !ok || !isSensitiveKey(name) {
			continue
		}
		valExpr, ok := propertyValue(prop)
		if !ok {
			continue
		}
		value, literalOK := stringLiteralValue(valExpr)
		if !literalOK {
			value, literalOK = envFallbackValue(valExpr)
		}
		if !literalOK {
			continue
		}
		confidence := 0.75
		if isConfigLike {
			confidence += 0.1
			if confidence > 1.0 {
				confidence = 1.0
			}
		}
		out = append(out, detect.Detection{
			Type:       detect.TypeConfigObject,
			Value:      value,
			Confidence: confidence,
			Location:   loc(node, ctx),
			Source:     detect.SourceAST,
			SourceURL:  ctx.SourceURL,
			Context:    map[string]string{"key": name, "snippet": snippetFor(node, ctx)},
		})
	}
	return out
}

func objectLiteralFor(node ast.Node, kind string) *ast.ObjectLiteral {
	switch kind {
	case astextract.KindObjectExpression:
		return node.(*ast.ObjectLiteral)
	case astextract.KindAssignmentExpr, astextract.KindModuleExports:
		a := node.(*ast.AssignExpression)
		if obj, ok := a.Right.(*ast.ObjectLiteral); ok {
			return obj
		}
	}
	return nil
}

func (c *ConfigObject) isConfigObject(node ast.Node, ctx *astextract.VisitContext) bool {
	if kindOf(node) == astextract.KindModuleExports {
		return true
	}
	if a, ok := node.(*ast.AssignExpression); ok {
		if name, ok := identifierName(a.Left); ok && matchesConfigName(name) {
			return true
		}
		if member, ok := memberName(a.Left); ok && matchesConfigName(member) {
			return true
		}
	}
	return ctx.AncestorOfKind(astextract.KindModuleExports)
}

func matchesConfigName(name string) bool {
	lower := strings.ToLower(name)
	for _, ind := range configNameIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func isSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range configSensitiveKeys {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// envFallbackValue recognizes `process.env.X || 'default'` logical
// fallback expressions, reporting the literal default as the value.
func envFallbackValue(expr ast.Expression) (string, bool) {
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok {
		return "", false
	}
	if _, isEnvAccess := bin.Left.(*ast.DotExpression); !isEnvAccess {
		return "", false
	}
	return stringLiteralValue(bin.Right)
}

func (c *ConfigObject) Leave(node ast.Node, kind string, ctx *astextract.VisitContext) {}
