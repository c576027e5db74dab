package filter

import "testing"

func TestIsStaticFile(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"js file", "/dist/app.abc123.js", true},
		{"css with query", "/static/style.css?v=2", true},
		{"assets dir", "/assets/logo.svg", true},
		{"api route", "/api/v1/users", false},
		{"plain path", "/login", false},
		{"quoted map file", `"/dist/app.js.map"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStaticFile(tt.in); got != tt.want {
				t.Errorf("IsStaticFile(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain domain", "example.com", true},
		{"with protocol and www", "https://www.example.co.uk", true},
		{"short whitelisted", "t.co", true},
		{"js property access", "this.value", false},
		{"too short", "ab", false},
		{"triple dot chain", "a.b.c.d", false},
		{"code suffix with 2 dots", "foo.bar.length", false},
		{"static file tld", "bundle.js", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDomain(tt.in); got != tt.want {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidChinesePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain mobile", "13812345678", true},
		{"with country code", "+8613812345678", true},
		{"bad operator prefix", "10012345678", false},
		{"too short", "1381234", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidChinesePhone(tt.in); got != tt.want {
				t.Errorf("IsValidChinesePhone(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidInternationalPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plausible number", "14155552671", true},
		{"repeated digits", "11111111111", false},
		{"ascending sequence", "1234567", false},
		{"year-like", "2024", false},
		{"too long", "1234567890123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidInternationalPhone(tt.in); got != tt.want {
				t.Errorf("IsValidInternationalPhone(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsCSSStyleCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"rgba", "rgba(0, 0, 0, 0.5)", true},
		{"hex color", "#FF00AA", true},
		{"pixel length", "16px", true},
		{"keyword", "solid", true},
		{"compound border", "1px solid #333", true},
		{"real secret", "sk_live_abc123XYZ789", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCSSStyleCode(tt.in); got != tt.want {
				t.Errorf("IsCSSStyleCode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsEmptyComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty line comment", "//", true},
		{"empty block comment", "/*   */", true},
		{"whitespace only html comment", "<!--  -->", true},
		{"has content", "// TODO fix this", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmptyComment(tt.in); got != tt.want {
				t.Errorf("IsEmptyComment(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFilteredByRegex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"method call shape", "a.b", true},
		{"sha256 shaped", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b85", true},
		{"base64 shaped", "QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVo=", true},
		{"real looking path", "/api/v2/orders/123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFilteredByRegex(tt.in); got != tt.want {
				t.Errorf("IsFilteredByRegex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
