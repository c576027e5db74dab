package scanner

import (
	"time"

	"github.com/corescan/corescan/internal/detect"
	"github.com/corescan/corescan/internal/vueintrospect"
	"github.com/corescan/corescan/internal/webpackchunks"
)

// ScanResult is the top-level output of a single-page or deep scan: the
// canonical category schema of spec §6, plus the Vue/webpack artifact
// classes C8/C9 append and basic run bookkeeping.
type ScanResult struct {
	Target      string    `json:"target"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	// Categories holds every entry of spec §6's produced schema keyed by
	// category name (absoluteApis, emails, credentials, custom_<name>, …).
	Categories map[string][]detect.Detection `json:"categories"`

	VueRoutes     []vueintrospect.RouteRecord `json:"vueRoutes,omitempty"`
	WebpackChunks []webpackchunks.ChunkURL    `json:"webpackChunks,omitempty"`

	Stats  ScanStats `json:"stats"`
	Errors []string  `json:"errors,omitempty"`
}

// ScanStats reports run bookkeeping, the Go-native analogue of the
// teacher's CrawlStats.
type ScanStats struct {
	PagesScanned     int           `json:"pagesScanned"`
	DetectionsRaw    int           `json:"detectionsRaw"`
	DetectionsMerged int           `json:"detectionsMerged"`
	Duration         time.Duration `json:"duration"`
	ErrorCount       int           `json:"errorCount"`
}

func newScanResult(target string) *ScanResult {
	return &ScanResult{
		Target:     target,
		StartedAt:  time.Now(),
		Categories: make(map[string][]detect.Detection),
	}
}

func (r *ScanResult) addAll(category string, ds []detect.Detection) {
	if len(ds) == 0 {
		return
	}
	r.Categories[category] = append(r.Categories[category], ds...)
	r.Stats.DetectionsMerged += len(ds)
}

func (r *ScanResult) addError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
	r.Stats.ErrorCount++
}
