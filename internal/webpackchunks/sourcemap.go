package webpackchunks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sourcemap/sourcemap"
)

var reSourceMapInline = regexp.MustCompile(`//[#@]\s*sourceMappingURL=data:application/json(?:;charset=[^;]+)?;base64,([A-Za-z0-9+/=]+)`)
var reSourceMapComment = regexp.MustCompile(`//[#@]\s*sourceMappingURL\s*=\s*(\S+)`)

// ModuleMap is the original-module enumeration decoded from a bundle's
// source map, when one is available. This supplements spec §4.9's chunk
// enumeration with a source-map-backed module list, grounded in
// tsmap-extract's crawl pass.
type ModuleMap struct {
	BundleFile string
	Modules    []string
}

// rawSourceMap mirrors the subset of the source map format needed to
// enumerate original modules. go-sourcemap's Consumer resolves a single
// generated position back to its source but doesn't expose the full
// Sources list, so the module list is read directly from the JSON while
// Parse still validates the map and decodes the bundle file name.
type rawSourceMap struct {
	Sources []string `json:"sources"`
}

// FindSourceMapRef locates a sourceMappingURL reference in runtime JS,
// either inline as a base64 data URI or as a comment pointing at an
// external .map file.
func FindSourceMapRef(js string) (inlineData []byte, externalRef string, ok bool) {
	if m := reSourceMapInline.FindStringSubmatch(js); len(m) > 1 {
		if data, err := base64.StdEncoding.DecodeString(m[1]); err == nil {
			return data, "", true
		}
	}
	if m := reSourceMapComment.FindStringSubmatch(js); len(m) > 1 {
		ref := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if ref != "" {
			return nil, ref, true
		}
	}
	return nil, "", false
}

// DecodeModuleMap decodes a source map's original-module list. mapURL
// is passed through to go-sourcemap only to annotate decode errors.
func DecodeModuleMap(mapURL string, data []byte) (*ModuleMap, error) {
	consumer, err := sourcemap.Parse(mapURL, data)
	if err != nil {
		return nil, fmt.Errorf("webpackchunks: parse source map: %w", err)
	}
	var raw rawSourceMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("webpackchunks: decode sources: %w", err)
	}
	return &ModuleMap{BundleFile: consumer.File(), Modules: raw.Sources}, nil
}
