package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRecording(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"type":"tick","t":1000}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFindsRecordings(t *testing.T) {
	base := t.TempDir()

	writeRecording(t, filepath.Join(base, "site-a", "checkout.jsonl"), time.Now().Add(-time.Hour))
	writeRecording(t, filepath.Join(base, "site-b", "nested", "search.jsonl"), time.Now())

	results, err := Discover(base)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}

	// Oldest first
	if results[0].ID != "checkout" {
		t.Errorf("first = %q, want checkout (oldest first)", results[0].ID)
	}
	if results[1].ID != "search" {
		t.Errorf("second = %q, want search", results[1].ID)
	}
}

func TestDiscoverCompressed(t *testing.T) {
	base := t.TempDir()

	writeRecording(t, filepath.Join(base, "plain.jsonl"), time.Now())
	writeRecording(t, filepath.Join(base, "packed.jsonl.zst"), time.Now())

	results, err := Discover(base)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	byID := make(map[string]RecordingFile)
	for _, r := range results {
		byID[r.ID] = r
	}

	if byID["plain"].Compressed {
		t.Error("plain recording should not be compressed")
	}
	if !byID["packed"].Compressed {
		t.Error("zst recording should be detected as compressed")
	}
}

func TestDiscoverFiltering(t *testing.T) {
	base := t.TempDir()

	writeRecording(t, filepath.Join(base, "keep.jsonl"), time.Now())
	writeRecording(t, filepath.Join(base, ".partial.jsonl"), time.Now())
	writeRecording(t, filepath.Join(base, "notes.json"), time.Now())
	writeRecording(t, filepath.Join(base, ".cache", "hidden.jsonl"), time.Now())

	results, err := Discover(base)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("len = %d, want 1 (only visible recordings)", len(results))
	}
	if results[0].ID != "keep" {
		t.Errorf("ID = %q, want keep", results[0].ID)
	}
}

func TestDiscoverExclude(t *testing.T) {
	base := t.TempDir()
	archived := filepath.Join(base, "recordings")

	writeRecording(t, filepath.Join(base, "new.jsonl"), time.Now())
	writeRecording(t, filepath.Join(archived, "old.jsonl.zst"), time.Now())

	results, err := Discover(base, archived)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("results = %+v, want only new", results)
	}
}

func TestDiscoverSameModTimeByPath(t *testing.T) {
	base := t.TempDir()
	at := time.Now().Add(-time.Minute)

	writeRecording(t, filepath.Join(base, "b.jsonl"), at)
	writeRecording(t, filepath.Join(base, "a.jsonl"), at)

	results, err := Discover(base)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 2 || results[0].ID != "a" {
		t.Errorf("results = %+v, want a before b", results)
	}
}

func TestDiscoverMissingBase(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got: %v", err)
	}
}
