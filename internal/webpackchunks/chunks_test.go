package webpackchunks

import "testing"

func hasURL(chunks []ChunkURL, url string) bool {
	for _, c := range chunks {
		if c.URL == url {
			return true
		}
	}
	return false
}

func TestAnalyze_ClassicDualMap(t *testing.T) {
	js := `function e(e){return "static/js/"+({"0":"about","1":"login"})[e]+"."+({"0":"aaa111","1":"bbb222"}[e])+".js"}`
	chunks := Analyze(js, "https://app.example.com", "/", nil)
	if !hasURL(chunks, "https://app.example.com/about.aaa111.js") {
		t.Fatalf("expected classic dual-map chunk, got %+v", chunks)
	}
}

func TestAnalyze_SimplifiedMap(t *testing.T) {
	js := `function u(e){return ({"0":"a1b2c3d4","1":"e5f6a7b8"})[e]+".js"}`
	chunks := Analyze(js, "https://app.example.com", "/static/", nil)
	if !hasURL(chunks, "https://app.example.com/static/0.a1b2c3d4.js") {
		t.Fatalf("expected simplified-map chunk, got %+v", chunks)
	}
}

func TestAnalyze_Webpack5RequireU(t *testing.T) {
	js := `__webpack_require__.u = function(e){ return "" + e + "." + {"0":"abcdef1234"}[e] + ".js"; };`
	chunks := Analyze(js, "https://app.example.com", "/", nil)
	if !hasURL(chunks, "https://app.example.com/0.abcdef1234.js") {
		t.Fatalf("expected webpack5 require.u chunk, got %+v", chunks)
	}
}

func TestAnalyze_NamedChunkMapExcludesReservedKeys(t *testing.T) {
	js := `var chunkMap = {"checkout-page":"f00dface","settings":"deadbeef"}[e]+".js";`
	chunks := Analyze(js, "https://app.example.com", "/", nil)
	if !hasURL(chunks, "https://app.example.com/checkout-page.f00dface.js") {
		t.Fatalf("expected named-chunk map entry, got %+v", chunks)
	}
	if !hasURL(chunks, "https://app.example.com/settings.deadbeef.js") {
		t.Fatalf("expected named-chunk map entry for settings, got %+v", chunks)
	}
}

func TestAnalyze_LightweightLiteralScan(t *testing.T) {
	js := `__webpack_require__.e("4567.abc123def456.js"); import("./vendors~main.js");`
	chunks := Analyze(js, "https://app.example.com", "/dist/", nil)
	if !hasURL(chunks, "https://app.example.com/dist/4567.abc123def456.js") {
		t.Fatalf("expected numeric chunk-literal match, got %+v", chunks)
	}
	if !hasURL(chunks, "https://app.example.com/dist/vendors~main.js") {
		t.Fatalf("expected vendors~ chunk-literal match, got %+v", chunks)
	}
}

func TestAnalyze_FiltersAlreadyLoadedURLs(t *testing.T) {
	js := `function u(e){return ({"0":"a1b2c3d4"})[e]+".js"}`
	loaded := map[string]bool{"https://app.example.com/0.a1b2c3d4.js": true}
	chunks := Analyze(js, "https://app.example.com", "/", loaded)
	if hasURL(chunks, "https://app.example.com/0.a1b2c3d4.js") {
		t.Fatalf("expected already-loaded chunk to be filtered, got %+v", chunks)
	}
}

func TestPublicPathDetection(t *testing.T) {
	js := `__webpack_require__.p = "/custom-base/"; function u(e){return ({"0":"cafebabe"})[e]+".js"}`
	chunks := Analyze(js, "https://app.example.com", "/", nil)
	if !hasURL(chunks, "https://app.example.com/custom-base/0.cafebabe.js") {
		t.Fatalf("expected detected public path to be used, got %+v", chunks)
	}
}
