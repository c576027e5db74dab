package astextract

import (
	"github.com/dop251/goja/ast"
)

// Kind labels the canonical node categories visitors dispatch on. goja's
// AST node type names don't match the ESTree vocabulary spec §4.4 uses
// (e.g. `ast.DotExpression`/`ast.BracketExpression` instead of a single
// `MemberExpression`), so kindOf maps the concrete goja types onto the
// spec's canonical kind strings.
const (
	KindVariableDeclarator = "VariableDeclarator"
	KindAssignmentExpr     = "AssignmentExpression"
	KindProperty           = "Property"
	KindCallExpression     = "CallExpression"
	KindLiteral            = "Literal"
	KindTemplateLiteral    = "TemplateLiteral"
	KindMemberExpression   = "MemberExpression"
	KindObjectExpression   = "ObjectExpression"
	KindBinaryExpression   = "BinaryExpression"
	KindModuleExports      = "ModuleExportsAssignment" // module.exports = {...}
	KindOther              = ""
)

// kindOf classifies a goja AST node into one of the canonical Kind
// strings above, or KindOther if no visitor would care about it.
func kindOf(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Binding:
		return KindVariableDeclarator
	case *ast.AssignExpression:
		if isModuleExportsTarget(n.Left) {
			return KindModuleExports
		}
		return KindAssignmentExpr
	case *ast.PropertyKeyed:
		return KindProperty
	case *ast.PropertyShort:
		return KindProperty
	case *ast.CallExpression:
		return KindCallExpression
	case *ast.StringLiteral:
		return KindLiteral
	case *ast.NumberLiteral:
		return KindLiteral
	case *ast.TemplateLiteral:
		return KindTemplateLiteral
	case *ast.DotExpression:
		return KindMemberExpression
	case *ast.BracketExpression:
		return KindMemberExpression
	case *ast.ObjectLiteral:
		return KindObjectExpression
	case *ast.BinaryExpression:
		return KindBinaryExpression
	default:
		return KindOther
	}
}

// isModuleExportsTarget reports whether expr is the `module.exports`
// member expression, the CommonJS analogue of an ES default export and
// the practical target for ConfigObject's "default export" confidence
// boost (goja has no ES-module grammar to produce a real
// ExportDefaultDeclaration node).
func isModuleExportsTarget(expr ast.Expression) bool {
	dot, ok := expr.(*ast.DotExpression)
	if !ok {
		return false
	}
	ident, ok := dot.Left.(*ast.Identifier)
	if !ok {
		return false
	}
	return string(ident.Name) == "module" && string(dot.Identifier.Name) == "exports"
}

// children enumerates the direct descendant nodes worth recursing into.
// It is deliberately conservative: bookkeeping fields (type tags, source
// locations/ranges) are never nodes in goja's AST so no explicit
// exclusion list is needed the way spec §4.5 describes for ESTree-shaped
// trees.
func children(node ast.Node) []ast.Node {
	var out []ast.Node
	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Body {
			out = append(out, stmt)
		}
	case *ast.VariableStatement:
		for _, b := range n.List {
			out = append(out, b)
		}
	case *ast.Binding:
		out = append(out, n.Target)
		if n.Initializer != nil {
			out = append(out, n.Initializer)
		}
	case *ast.ExpressionStatement:
		out = append(out, n.Expression)
	case *ast.BlockStatement:
		for _, stmt := range n.List {
			out = append(out, stmt)
		}
	case *ast.AssignExpression:
		out = append(out, n.Left, n.Right)
	case *ast.CallExpression:
		out = append(out, n.Callee)
		for _, arg := range n.ArgumentList {
			out = append(out, arg)
		}
	case *ast.NewExpression:
		out = append(out, n.Callee)
		for _, arg := range n.ArgumentList {
			out = append(out, arg)
		}
	case *ast.DotExpression:
		out = append(out, n.Left)
	case *ast.BracketExpression:
		out = append(out, n.Left, n.Member)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			out = append(out, p)
		}
	case *ast.PropertyKeyed:
		out = append(out, n.Value)
	case *ast.ArrayLiteral:
		for _, el := range n.Value {
			if el != nil {
				out = append(out, el)
			}
		}
	case *ast.BinaryExpression:
		out = append(out, n.Left, n.Right)
	case *ast.ConditionalExpression:
		out = append(out, n.Test, n.Consequent, n.Alternate)
	case *ast.TemplateLiteral:
		for _, e := range n.Expressions {
			out = append(out, e)
		}
	case *ast.ReturnStatement:
		if n.Argument != nil {
			out = append(out, n.Argument)
		}
	case *ast.IfStatement:
		out = append(out, n.Test, n.Consequent)
		if n.Alternate != nil {
			out = append(out, n.Alternate)
		}
	case *ast.FunctionLiteral:
		if n.Body != nil {
			out = append(out, n.Body)
		}
	case *ast.FunctionDeclaration:
		if n.Function != nil && n.Function.Body != nil {
			out = append(out, n.Function.Body)
		}
	}
	return out
}
