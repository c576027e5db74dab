package jsast

import "testing"

func TestParse_SimpleScript(t *testing.T) {
	res, err := Parse(`var x = fetch("/api/v1/users");`, "inline.js")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Program == nil {
		t.Fatalf("expected a non-nil program")
	}
	if res.Mode != "module" {
		t.Errorf("expected the first (module) attempt to succeed for plain script, got mode=%s", res.Mode)
	}
}

func TestParse_RecoversFromTypeScriptAnnotations(t *testing.T) {
	src := `function greet(name: string): string { return "hi " + name; }`
	res, err := Parse(src, "inline.ts")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Program == nil {
		t.Fatalf("expected a non-nil program after TS elision fallback")
	}
}

func TestParse_SyntaxErrorReturnsLocation(t *testing.T) {
	_, err := Parse(`function( {{{`, "broken.js")
	if err == nil {
		t.Fatalf("expected a parse error for malformed input")
	}
}
