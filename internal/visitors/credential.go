package visitors

import (
	"github.com/dop251/goja/ast"

	"github.com/corescan/corescan/internal/astextract"
	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/filter"
)

// Credential flags variable/property declarations whose name or value
// looks like a secret (spec §4.4).
type Credential struct{ enabled bool }

// NewCredential returns an enabled Credential visitor.
func NewCredential() *Credential { return &Credential{enabled: true} }

func (c *Credential) Name() string    { return "Credential" }
func (c *Credential) Enabled() bool   { return c.enabled }
func (c *Credential) NodeKinds() []string {
	return []string{astextract.KindVariableDeclarator, astextract.KindAssignmentExpr, astextract.KindProperty}
}

func (c *Credential) Visit(node ast.Node, kind string, ctx *astextract.VisitContext) []detect.Detection {
	name, value, ok := c.nameAndValue(node, kind)
	if !ok {
		return nil
	}
	nameHit := isSensitiveName(name)
	valueHit := matchesCredentialValueShape(value)
	if !nameHit && !valueHit {
		return nil
	}
	if filter.IsCSSStyleCode(value) || filter.IsEmptyComment(value) {
		return nil
	}

	confidence := 0.7
	if valueHit {
		confidence = 0.9
	}

	d := detect.Detection{
		Type:       detect.TypeCredential,
		Value:      value,
		Confidence: confidence,
		Location:   loc(node, ctx),
		Source:     detect.SourceAST,
		SourceURL:  ctx.SourceURL,
		Context:    map[string]string{"name": name, "snippet": snippetFor(node, ctx)},
	}
	return []detect.Detection{d}
}

func (c *Credential) Leave(node ast.Node, kind string, ctx *astextract.VisitContext) {}

func (c *Credential) nameAndValue(node ast.Node, kind string) (name, value string, ok bool) {
	switch kind {
	case astextract.KindVariableDeclarator:
		b := node.(*ast.Binding)
		n, nameOK := identifierName(b.Target)
		if !nameOK || b.Initializer == nil {
			return "", "", false
		}
		v, valueOK := stringLiteralValue(b.Initializer)
		return n, v, valueOK
	case astextract.KindAssignmentExpr:
		a := node.(*ast.AssignExpression)
		var n string
		if direct, isIdent := identifierName(a.Left); isIdent {
			n = direct
		} else if member, isMember := memberName(a.Left); isMember {
			n = member
		} else {
			return "", "", false
		}
		v, valueOK := stringLiteralValue(a.Right)
		return n, v, valueOK
	case astextract.KindProperty:
		p := node.(ast.Property)
		n, nameOK := propertyKeyName(p)
		val, hasVal := propertyValue(p)
		if !nameOK || !hasVal {
			return "", "", false
		}
		v, valueOK := stringLiteralValue(val)
		return n, v, valueOK
	}
	return "", "", false
}
