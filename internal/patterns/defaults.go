package patterns

import "github.com/corescan/corescan/internal/detect"

// defaultLiterals seeds every built-in category with a sensible pattern so
// Extractor works out of the box before any settings are loaded. Settings
// passed to LoadPatterns/UpdatePatterns override these by key.
var defaultLiterals = map[string]struct {
	pattern string
	target  detect.Type
}{
	"absoluteApi": {`https?://[^\s"'<>)]+?/(?:api|v[0-9]+|rest|graphql)/[^\s"'<>)]*`, detect.TypeAPIEndpoint},
	"relativeApi": {`\.?/(?:api|v[0-9]+|rest|graphql)/[a-zA-Z0-9_\-/{}.:]+`, detect.TypeAPIEndpoint},

	"jsFile": {`https?://[^\s"'<>)]+\.m?js(?:\?[^\s"'<>)]*)?`, detect.TypeJSFile},
	"cssFile": {`https?://[^\s"'<>)]+\.css(?:\?[^\s"'<>)]*)?`, detect.TypeCSSFile},
	"image":  {`https?://[^\s"'<>)]+\.(?:png|jpe?g|gif|svg|webp|ico)(?:\?[^\s"'<>)]*)?`, detect.TypeImage},
	"url":    {`https?://[^\s"'<>)]+`, detect.TypeURL},

	"domain":      {`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,10}\b`, detect.TypeDomain},
	"email":       {`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`, detect.TypeEmail},
	"phone":       {`(?:\+?86)?1[3-9]\d{9}|\+?[0-9][0-9\-\s]{6,14}[0-9]`, detect.TypePhone},
	"credentials": {`(?i)(?:password|secret|token|api[_-]?key|access[_-]?key|private[_-]?key|client[_-]?secret)\s*[:=]\s*["'][^"']{6,}["']`, detect.TypeCredential},
	"ip":          {`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`, detect.TypeIP},
	"paths":       {`["'](/[a-zA-Z0-9_\-./]{2,200})["']`, detect.Type("path")},
	"jwt":         {`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, detect.TypeJWT},
	"github":      {`https?://github\.com/[A-Za-z0-9_.\-]+/[A-Za-z0-9_.\-]+`, detect.Type("github_url")},
	"vue":         {`["'][A-Za-z0-9_\-./]{10,}\.vue["']`, detect.Type("vue_file")},
	"company":     {`(?i)(?:inc|corp|corporation|ltd|llc|gmbh|co\.,?\s*ltd)\b`, detect.Type("company")},
	"comments":    {`//[^\n]*|/\*[\s\S]*?\*/|<!--[\s\S]*?-->`, detect.Type("comment")},
	"idCard":      {`\b[1-9]\d{5}(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])\d{3}[\dXx]\b`, detect.TypeIDCard},
	"bearerToken": {`(?i)Bearer\s+[A-Za-z0-9_\-.=]{10,}`, detect.TypeBearerToken},
	"basicAuth":   {`(?i)Basic\s+[A-Za-z0-9+/=]{10,}`, detect.Type("basic_auth")},
	"authHeader":  {`(?i)Authorization["']?\s*[:=]\s*["'][^"']{6,}["']`, detect.Type("auth_header")},
	"wechatAppId": {`\bwx[a-f0-9]{16}\b`, detect.Type("wechat_app_id")},
	"awsKey":      {`AKIA[A-Z0-9]{16}`, detect.Type("aws_key")},
	"googleApiKey": {`AIza[A-Za-z0-9_\-]{35}`, detect.Type("google_api_key")},
	"githubToken": {`gh[pousr]_[A-Za-z0-9]{36}`, detect.Type("github_token")},
	"gitlabToken": {`glpat-[A-Za-z0-9_\-]{20}`, detect.Type("gitlab_token")},
	"webhookUrls": {`https?://hooks\.[a-zA-Z0-9.\-]+/[^\s"'<>)]+`, detect.TypeURL},
	"cryptoUsage": {`(?i)\b(?:crypto\.subtle|createCipher|createDecipher|CryptoJS\.(?:AES|DES|SHA\d*))\b`, detect.Type("crypto_usage")},
}

// DefaultPatternSet builds a PatternSet seeded with the built-in patterns,
// with no custom_* entries and no settings overrides applied.
func DefaultPatternSet() (*PatternSet, error) {
	ps := newPatternSet()
	for key, def := range defaultLiterals {
		e, err := compile(def.pattern)
		if err != nil {
			return nil, err
		}
		ps.set(key, def.target, e)
	}
	return ps, nil
}
