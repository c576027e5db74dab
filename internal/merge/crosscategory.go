package merge

import (
	"net/url"
	"strings"

	"github.com/corescan/corescan/internal/detect"
)

// DocHostBlacklist is the shared framework-documentation-host blacklist
// applied uniformly by both the Content Extractor (C7) and the Deep Crawl
// Scheduler (C10) when rolling up domains (spec §4.7 step 4).
var DocHostBlacklist = map[string]bool{
	"w3.org":          true,
	"mozilla.org":     true,
	"vuejs.org":       true,
	"reactjs.org":     true,
	"angular.io":      true,
	"github.com":      true,
	"stackoverflow.com": true,
}

// urlBearingCategories are the Detection types whose values contribute a
// host to the domains rollup (spec §4.6 cross-category dedup note).
var urlBearingCategories = map[detect.Type]bool{
	detect.TypeURL:         true,
	detect.TypeAPIEndpoint: true,
	detect.TypeJSFile:      true,
	detect.TypeCSSFile:     true,
	detect.TypeImage:       true,
}

// DedupAPIs removes values present in absolute-API detections from the
// relative-API set, per spec §4.6: "values present in absoluteApis are
// removed from relativeApis".
func DedupAPIs(absolute, relative []detect.Detection) []detect.Detection {
	seen := make(map[string]bool, len(absolute))
	for _, a := range absolute {
		seen[a.Value] = true
	}
	out := make([]detect.Detection, 0, len(relative))
	for _, r := range relative {
		if seen[r.Value] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RollupDomains extracts the host from every URL-bearing Detection across
// categories and returns one Detection per unique, non-blacklisted host.
func RollupDomains(categories ...[]detect.Detection) []detect.Detection {
	seen := make(map[string]bool)
	var out []detect.Detection
	for _, group := range categories {
		for _, d := range group {
			if !urlBearingCategories[d.Type] {
				continue
			}
			host := hostOf(d.Value)
			if host == "" || seen[host] || DocHostBlacklist[host] {
				continue
			}
			seen[host] = true
			out = append(out, detect.Detection{
				Type:       detect.TypeDomain,
				Value:      host,
				Confidence: d.Confidence,
				Source:     d.Source,
				SourceURL:  d.SourceURL,
			})
		}
	}
	return out
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
