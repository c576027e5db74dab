// Package detect defines the Detection record shared by every extraction
// engine (pattern, AST, Vue, webpack) and consumed by the merger.
package detect

import "time"

// Type enumerates the category of an extracted artifact.
type Type string

const (
	TypeCredential        Type = "credential"
	TypeAPIEndpoint        Type = "api_endpoint"
	TypeSensitiveFunction Type = "sensitive_function"
	TypeConfigObject       Type = "config_object"
	TypeEncodedString      Type = "encoded_string"
	TypeDomain             Type = "domain"
	TypeEmail              Type = "email"
	TypePhone              Type = "phone"
	TypeIP                 Type = "ip"
	TypeJWT                Type = "jwt"
	TypeIDCard             Type = "id_card"
	TypeBearerToken        Type = "bearer_token"
	TypeURL                Type = "url"
	TypeJSFile             Type = "js_file"
	TypeCSSFile            Type = "css_file"
	TypeImage              Type = "image"
	TypeRoute              Type = "route"
	TypeChunk              Type = "chunk"
)

// CustomType builds a "custom:<key>" type for dynamic user patterns.
func CustomType(key string) Type {
	return Type("custom:" + key)
}

// Source identifies which engine produced a Detection.
type Source string

const (
	SourceAST   Source = "ast"
	SourceRegex Source = "regex"
)

// Position is a 1-based line/column location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location is an AST node's source span, present only for AST-sourced
// Detections.
type Location struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Detection is the universal extraction record (spec §3).
type Detection struct {
	Type           Type              `json:"type"`
	Value          string            `json:"value"`
	Confidence     float64           `json:"confidence"`
	Location       *Location         `json:"location,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
	SourceURL      string            `json:"sourceUrl,omitempty"`
	PageTitle      string            `json:"pageTitle,omitempty"`
	ExtractedAt    time.Time         `json:"extractedAt"`
	Source         Source            `json:"source"`
	DoubleVerified bool              `json:"doubleVerified"`
}

// Key returns the de-dup key used by the merger: (type, value prefix,
// location line). A zero Location contributes line 0, which still lets
// regex-only Detections (no location) dedup on (type, value).
func (d Detection) Key() (Type, string, int) {
	v := d.Value
	if len(v) > 100 {
		v = v[:100]
	}
	line := 0
	if d.Location != nil {
		line = d.Location.Start.Line
	}
	return d.Type, v, line
}

// WithContext returns a copy of d with key=value merged into Context.
func (d Detection) WithContext(key, value string) Detection {
	ctx := make(map[string]string, len(d.Context)+1)
	for k, v := range d.Context {
		ctx[k] = v
	}
	ctx[key] = value
	d.Context = ctx
	return d
}

// BoostConfidence raises Confidence by delta, capped at 1.0.
func (d *Detection) BoostConfidence(delta float64) {
	d.Confidence += delta
	if d.Confidence > 1.0 {
		d.Confidence = 1.0
	}
}
