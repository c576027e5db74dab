// Package settingsstore loads the scanner's user-tunable settings —
// regex overrides, custom regex configs, domain scan scope, and Vue
// introspector options (spec §9) — mirroring the way the teacher's
// pkg/crawler/config.go loads YAML/JSON configuration.
package settingsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corescan/corescan/internal/corerrors"
	"github.com/corescan/corescan/internal/patterns"
)

// DomainScanSettings controls which hosts the deep crawl scheduler
// follows links onto (spec §9).
type DomainScanSettings struct {
	AllowSubdomains bool `yaml:"allowSubdomains" json:"allowSubdomains"`
	AllowAllDomains bool `yaml:"allowAllDomains" json:"allowAllDomains"`
}

// VueDetectorSettings controls the Vue introspector (C8, spec §9).
type VueDetectorSettings struct {
	Enabled          bool          `yaml:"enabled" json:"enabled"`
	EnableGuardPatch bool          `yaml:"enableGuardPatch" json:"enableGuardPatch"`
	EnableAuthPatch  bool          `yaml:"enableAuthPatch" json:"enableAuthPatch"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	MaxDepth         int           `yaml:"maxDepth" json:"maxDepth"`
}

// Store exposes the scanner's external settings surface. FileStore is
// the default implementation; tests may substitute a fixed in-memory one.
type Store interface {
	// RegexSettings returns category -> pattern-literal overrides
	// (spec §9's "mapping category → patternString").
	RegexSettings() (map[string]string, error)
	// CustomRegexConfigs returns custom_-prefixed key -> pattern-literal
	// entries, normalized from either the array or object wire form.
	CustomRegexConfigs() (map[string]string, error)
	DomainScanSettings() (DomainScanSettings, error)
	VueDetectorSettings() (VueDetectorSettings, error)
}

// customRegexEntry is one entry of customRegexConfigs, whichever wire
// shape it arrived in.
type customRegexEntry struct {
	Key       string `yaml:"key" json:"key"`
	Name      string `yaml:"name" json:"name"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	CreatedAt string `yaml:"createdAt" json:"createdAt"`
}

// document is the on-disk settings shape. customRegexConfigs is decoded
// generically via yaml.Node since spec §9 accepts both an array and an
// object for it; gopkg.in/yaml.v3 parses well-formed JSON documents as
// well, so one decode path covers both file formats (mirroring the
// teacher's "try YAML, then JSON" order as a fallback for edge cases
// yaml.v3 rejects, e.g. duplicate JSON keys).
type document struct {
	RegexSettings      map[string]string   `yaml:"regexSettings" json:"regexSettings"`
	CustomRegexConfigs yaml.Node           `yaml:"customRegexConfigs"`
	Domain             DomainScanSettings  `yaml:"domainScanSettings" json:"domainScanSettings"`
	VueDetector        VueDetectorSettings `yaml:"vueDetectorSettings" json:"vueDetectorSettings"`
}

// FileStore loads settings from a YAML or JSON file on disk, trying
// YAML first and falling back to JSON, matching the teacher's
// LoadFromFile order.
type FileStore struct {
	doc document
}

// NewFileStore loads settings from path.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corerrors.Wrap(corerrors.ConfigAbsent, "settingsstore", err, "failed to read settings file")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		// yaml.v3 parses well-formed JSON directly; this fallback only
		// matters for JSON yaml.v3 itself rejects (e.g. duplicate
		// keys). customRegexConfigs is skipped on this path since
		// encoding/json can't populate a yaml.Node — an empty
		// customRegexConfigs in that narrow case is preferable to a
		// hard failure on an otherwise-valid settings file.
		var fallback struct {
			RegexSettings map[string]string   `json:"regexSettings"`
			Domain        DomainScanSettings  `json:"domainScanSettings"`
			VueDetector   VueDetectorSettings `json:"vueDetectorSettings"`
		}
		if jsonErr := json.Unmarshal(data, &fallback); jsonErr != nil {
			return nil, corerrors.Wrap(corerrors.ConfigAbsent, "settingsstore", err, "failed to parse settings file as YAML or JSON")
		}
		doc.RegexSettings = fallback.RegexSettings
		doc.Domain = fallback.Domain
		doc.VueDetector = fallback.VueDetector
	}

	if _, err := normalizeCustomRegex(doc); err != nil {
		return nil, err
	}

	return &FileStore{doc: doc}, nil
}

// RegexSettings implements Store.
func (f *FileStore) RegexSettings() (map[string]string, error) {
	return f.doc.RegexSettings, nil
}

// CustomRegexConfigs implements Store.
func (f *FileStore) CustomRegexConfigs() (map[string]string, error) {
	return normalizeCustomRegex(f.doc)
}

// DomainScanSettings implements Store.
func (f *FileStore) DomainScanSettings() (DomainScanSettings, error) {
	return f.doc.Domain, nil
}

// VueDetectorSettings implements Store.
func (f *FileStore) VueDetectorSettings() (VueDetectorSettings, error) {
	return f.doc.VueDetector, nil
}

// normalizeCustomRegex accepts both wire shapes of customRegexConfigs
// (spec §9: array of {key,name,pattern} or object map keyed by key) and
// flattens to custom_-prefixed key -> pattern. A key colliding with a
// built-in category name (other than via the custom_ prefix) is a
// validation error (spec §9's explicitly-undefined-by-source case).
func normalizeCustomRegex(doc document) (map[string]string, error) {
	entries, err := decodeCustomRegexNode(doc.CustomRegexConfigs)
	if err != nil {
		return nil, err
	}

	builtin := make(map[string]bool, len(patterns.AllCategories))
	for _, c := range patterns.AllCategories {
		builtin[c] = true
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Key == "" || e.Pattern == "" {
			continue
		}
		key := e.Key
		if !strings.HasPrefix(key, "custom_") {
			if builtin[key] {
				return nil, corerrors.New(corerrors.ConfigAbsent, "settingsstore",
					fmt.Sprintf("customRegexConfigs key %q collides with a built-in category", key))
			}
			key = "custom_" + key
		}
		out[key] = e.Pattern
	}
	return out, nil
}

// decodeCustomRegexNode interprets a yaml.Node that may be a sequence
// ([{key,name,pattern}, ...]) or a mapping ({key: {name,pattern}, ...}).
func decodeCustomRegexNode(node yaml.Node) ([]customRegexEntry, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		var arr []customRegexEntry
		if err := node.Decode(&arr); err != nil {
			return nil, corerrors.Wrap(corerrors.ConfigAbsent, "settingsstore", err, "failed to decode customRegexConfigs array")
		}
		return arr, nil
	case yaml.MappingNode:
		var obj map[string]customRegexEntry
		if err := node.Decode(&obj); err != nil {
			return nil, corerrors.Wrap(corerrors.ConfigAbsent, "settingsstore", err, "failed to decode customRegexConfigs object")
		}
		out := make([]customRegexEntry, 0, len(obj))
		for key, e := range obj {
			e.Key = key
			out = append(out, e)
		}
		return out, nil
	default:
		return nil, corerrors.New(corerrors.ConfigAbsent, "settingsstore", "customRegexConfigs must be an array or an object")
	}
}
