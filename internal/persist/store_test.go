package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/corescan/corescan/internal/deepcrawl"
	"github.com/corescan/corescan/internal/detect"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.db")
	store, err := NewBoltStore(path, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStore_SaveAndLoadScanResults(t *testing.T) {
	store := openTestStore(t)
	results := ScanResults{
		Target: "https://app.example.com",
		Categories: map[string][]detect.Detection{
			"urls": {{Type: detect.TypeURL, Value: "/a"}},
		},
	}
	if err := store.SaveScanResults(context.Background(), results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.LoadScanResults("https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded == nil || len(loaded.Categories["urls"]) != 1 {
		t.Fatalf("expected loaded results to match, got %+v", loaded)
	}
}

func TestBoltStore_LoadScanResults_MissingReturnsNil(t *testing.T) {
	store := openTestStore(t)
	loaded, err := store.LoadScanResults("https://never-saved.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil for unsaved target, got %+v", loaded)
	}
}

func TestBoltStore_SaveAndLoadDeepScanState(t *testing.T) {
	store := openTestStore(t)
	state := DeepScanState{
		Target:       "https://app.example.com",
		Categories:   map[string][]detect.Detection{"urls": {{Value: "/b"}}},
		PagesScanned: 3,
	}
	if err := store.SaveDeepScanState(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.LoadDeepScanState("https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded == nil || loaded.PagesScanned != 3 {
		t.Fatalf("expected loaded state with PagesScanned=3, got %+v", loaded)
	}
}

func TestAdapter_SatisfiesDeepcrawlStore(t *testing.T) {
	store := openTestStore(t)
	adapter := Adapter{Store: store, Target: "https://app.example.com"}

	var _ deepcrawl.Store = adapter

	err := adapter.Save(context.Background(), deepcrawl.Snapshot{
		Categories:   map[string][]detect.Detection{"urls": {{Value: "/c"}}},
		PagesScanned: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.LoadDeepScanState("https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded == nil || loaded.PagesScanned != 1 {
		t.Fatalf("expected adapter-saved state to round-trip, got %+v", loaded)
	}
}
