package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/suykerbuyk/adaptive-ui/internal/adapt"
	"github.com/suykerbuyk/adaptive-ui/internal/config"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
	"github.com/suykerbuyk/adaptive-ui/internal/recording"
)

func writeRecording(t *testing.T, dir, id string, events []recording.Event) string {
	t.Helper()
	path := filepath.Join(dir, id+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := recording.Write(f, events); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) config.Config {
	cfg := config.DefaultConfig()
	cfg.StateDir = t.TempDir()
	return cfg
}

func difficultEvents() []recording.Event {
	return append([]recording.Event{buttonPage}, nearMisses(time.Second, 3)...)
}

func TestProcess_JournalsAndArchives(t *testing.T) {
	cfg := testConfig(t)
	path := writeRecording(t, t.TempDir(), "checkout", difficultEvents())
	ctx := context.Background()

	out, err := Process(ctx, path, cfg, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Skipped {
		t.Fatalf("skipped: %s", out.Reason)
	}
	if out.SessionID == "" {
		t.Error("expected a journal session id")
	}
	if out.ArchivePath != filepath.Join(cfg.ArchiveDir(), "checkout.jsonl.zst") {
		t.Errorf("ArchivePath = %q", out.ArchivePath)
	}
	if _, err := os.Stat(out.ArchivePath); err != nil {
		t.Errorf("archive missing: %v", err)
	}

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer store.Close()
	sess, err := store.Get(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.RecordingID != "checkout" || !sess.Mode.LargeUI || len(sess.Timeline) != 2 {
		t.Errorf("session = %+v", sess)
	}
	if sess.Timeline[0].Action != "set-large-ui(true)" || sess.Timeline[0].Offset != 3*time.Second {
		t.Errorf("first entry = %+v", sess.Timeline[0])
	}
}

func TestProcess_SkipsAlreadyProcessed(t *testing.T) {
	cfg := testConfig(t)
	path := writeRecording(t, t.TempDir(), "again", difficultEvents())

	if _, err := Process(context.Background(), path, cfg, nil); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	out, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if !out.Skipped || out.Reason != "already processed" {
		t.Errorf("second run = %+v, want skipped", out)
	}
}

func TestProcess_ArchivedInputNotRearchived(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = false
	path := writeRecording(t, t.TempDir(), "zipped", difficultEvents())

	first, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	second, err := Process(context.Background(), first.ArchivePath, cfg, nil)
	if err != nil {
		t.Fatalf("Process archived: %v", err)
	}
	if second.ArchivePath != "" {
		t.Errorf("archived input was archived again to %q", second.ArchivePath)
	}
	if second.Result.Snapshot != first.Result.Snapshot {
		t.Errorf("replay of archive differs: %+v vs %+v", second.Result.Snapshot, first.Result.Snapshot)
	}
}

func TestProcess_SkipsArchivedWithoutJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = false
	path := writeRecording(t, t.TempDir(), "once", difficultEvents())

	first, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if first.Skipped || first.ArchivePath == "" {
		t.Fatalf("first run = %+v, want replayed and archived", first)
	}

	second, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if !second.Skipped || second.Reason != "already archived" {
		t.Errorf("second run = %+v, want skipped as already archived", second)
	}
}

func TestProcess_InitialModeFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment.ViewportWidth = 400
	cfg.Environment.LargeUI = true
	path := writeRecording(t, t.TempDir(), "phone", difficultEvents())
	ctx := context.Background()

	out, err := Process(ctx, path, cfg, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, s := range out.Result.Timeline {
		if s.Action.Kind == adapt.SetLargeUI {
			t.Errorf("large UI already on, got %s at %v", s.Action, s.Offset)
		}
	}
	if !out.Result.Snapshot.ClickDifficulty {
		t.Error("click difficulty should still be detected")
	}

	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer store.Close()
	sess, err := store.Get(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !sess.Mode.Compact || !sess.Mode.LargeUI {
		t.Errorf("journaled mode = %+v, want compact and large UI", sess.Mode)
	}
}

func TestProcess_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = false
	cfg.Archive.Compress = false
	path := writeRecording(t, t.TempDir(), "plain", difficultEvents())

	out, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.SessionID != "" || out.ArchivePath != "" {
		t.Errorf("out = %+v, want no journal or archive", out)
	}
	if _, err := os.Stat(cfg.JournalPath()); !os.IsNotExist(err) {
		t.Error("journal should not be created when disabled")
	}
}

func TestProcess_EmptyRecording(t *testing.T) {
	cfg := testConfig(t)
	path := writeRecording(t, t.TempDir(), "empty", nil)

	out, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Skipped {
		t.Error("empty recording should be skipped")
	}
}

func TestProcess_Malformed(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	os.WriteFile(path, []byte("{nope\n"), 0o644)

	_, err := Process(context.Background(), path, cfg, nil)
	if !errors.Is(err, recording.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestProcess_JournalUnavailable(t *testing.T) {
	cfg := testConfig(t)
	// a file where the state directory should be
	blocker := filepath.Join(t.TempDir(), "state")
	os.WriteFile(blocker, []byte("x"), 0o644)
	cfg.StateDir = blocker
	cfg.Archive.Compress = false

	path := writeRecording(t, t.TempDir(), "degraded", difficultEvents())
	out, err := Process(context.Background(), path, cfg, nil)
	if err != nil {
		t.Fatalf("Process should degrade, got %v", err)
	}
	if out.SessionID != "" || out.Result == nil {
		t.Errorf("out = %+v, want a replay without journal", out)
	}
}
