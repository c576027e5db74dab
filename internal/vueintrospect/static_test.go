package vueintrospect

import "testing"

func TestExtractRoutes_FindsPathDefinitions(t *testing.T) {
	js := `const routes = [
		{ path: '/admin/dashboard', component: Dashboard },
		{ path: '/login', component: Login },
	];`
	s := NewStaticExtractor("https://app.example.com", "https://app.example.com/dist/js/app.abc123.js")
	routes := s.ExtractRoutes(js)
	if len(routes) == 0 {
		t.Fatalf("expected at least one route")
	}
	found := false
	for _, r := range routes {
		if r.Path == "/admin/dashboard" {
			found = true
			if r.MatchedKeyword == "" {
				t.Fatalf("expected sensitive-route keyword match for /admin/dashboard")
			}
		}
	}
	if !found {
		t.Fatalf("expected /admin/dashboard route, got %+v", routes)
	}
}

func TestExtractRoutes_RejectsTemplateExpressionsAndFullURLs(t *testing.T) {
	js := `router.push('https://other.example.com/x'); router.push(` + "`" + `/${id}` + "`" + `);`
	s := NewStaticExtractor("https://app.example.com", "https://app.example.com/app.js")
	routes := s.ExtractRoutes(js)
	for _, r := range routes {
		if r.Path == "https://other.example.com/x" {
			t.Fatalf("expected full URL to be rejected")
		}
	}
}

func TestComputeBasePath_StripsResourceSegmentAndAssetDirs(t *testing.T) {
	base := computeBasePath("https://app.example.com/static/js/app.abc123.js")
	if base != "/" {
		t.Fatalf("expected base path to collapse to '/', got %q", base)
	}
}

func TestComputeBasePath_KeepsNonAssetPrefix(t *testing.T) {
	base := computeBasePath("https://app.example.com/my-app/dist/js/app.js")
	if base != "/my-app/" {
		t.Fatalf("expected '/my-app/', got %q", base)
	}
}

func TestClassifyHasAuth(t *testing.T) {
	meta := map[string]string{"requiresAuth": "true"}
	if !classifyHasAuth(meta) {
		t.Fatalf("expected hasAuth=true")
	}
	meta2 := map[string]string{"requiresAuth": "false"}
	if classifyHasAuth(meta2) {
		t.Fatalf("expected hasAuth=false")
	}
}

func TestClassifySensitive(t *testing.T) {
	if classifySensitive("/user/profile", "") == "" {
		t.Fatalf("expected a sensitive keyword match")
	}
	if classifySensitive("/about", "") != "" {
		t.Fatalf("expected no sensitive keyword match")
	}
}
