package settingsstore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed writing temp file: %v", err)
	}
	return path
}

func TestFileStore_LoadsYAMLWithArrayCustomRegex(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
regexSettings:
  emails: "[a-z]+@example\\.com"
customRegexConfigs:
  - key: internalToken
    name: Internal Token
    pattern: "itok_[a-f0-9]{32}"
domainScanSettings:
  allowSubdomains: true
  allowAllDomains: false
vueDetectorSettings:
  enabled: true
  enableGuardPatch: true
  enableAuthPatch: false
  timeout: 5000000000
  maxDepth: 500
`)

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	regex, err := store.RegexSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regex["emails"] == "" {
		t.Error("expected emails override to be loaded")
	}

	custom, err := store.CustomRegexConfigs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if custom["custom_internalToken"] != "itok_[a-f0-9]{32}" {
		t.Errorf("custom regex = %+v", custom)
	}

	domain, err := store.DomainScanSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !domain.AllowSubdomains || domain.AllowAllDomains {
		t.Errorf("domain settings = %+v", domain)
	}

	vue, err := store.VueDetectorSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vue.Enabled || !vue.EnableGuardPatch || vue.EnableAuthPatch || vue.MaxDepth != 500 {
		t.Errorf("vue settings = %+v", vue)
	}
}

func TestFileStore_LoadsObjectFormCustomRegex(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
customRegexConfigs:
  apiSecret:
    name: API Secret
    pattern: "sk_live_[a-zA-Z0-9]{24}"
`)
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	custom, err := store.CustomRegexConfigs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if custom["custom_apiSecret"] != "sk_live_[a-zA-Z0-9]{24}" {
		t.Errorf("custom regex = %+v", custom)
	}
}

func TestFileStore_RejectsCollisionWithBuiltinCategory(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
customRegexConfigs:
  - key: emails
    pattern: "x"
`)
	_, err := NewFileStore(path)
	if err == nil {
		t.Fatal("expected an error for a customRegexConfigs key colliding with a built-in category")
	}
}

func TestFileStore_AlreadyPrefixedKeyIsKeptAsIs(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
customRegexConfigs:
  - key: custom_foo
    pattern: "x+"
`)
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	custom, _ := store.CustomRegexConfigs()
	if custom["custom_foo"] != "x+" {
		t.Errorf("custom regex = %+v", custom)
	}
}
