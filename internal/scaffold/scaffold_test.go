package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/suykerbuyk/adaptive-ui/internal/recording"
	"github.com/suykerbuyk/adaptive-ui/internal/replay"
)

func TestInit_CreatesLayout(t *testing.T) {
	target := filepath.Join(t.TempDir(), "state")

	created, err := Init(target)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	for _, rel := range []string{
		"README.md",
		"recordings/.gitkeep",
		"inbox/.gitkeep",
		"examples/checkout-near-misses.jsonl",
		"examples/lost-scrolling.jsonl",
	} {
		path := filepath.Join(target, rel)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("expected file %s to exist", rel)
		}
	}
	if len(created) != 5 {
		t.Errorf("created = %v, want 5 files", created)
	}
}

func TestInit_Rerun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "state")
	if _, err := Init(target); err != nil {
		t.Fatalf("Init: %v", err)
	}

	readme := filepath.Join(target, "README.md")
	if err := os.WriteFile(readme, []byte("my notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := Init(target)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second Init created %v, want nothing", created)
	}
	data, _ := os.ReadFile(readme)
	if string(data) != "my notes\n" {
		t.Error("existing README was overwritten")
	}
}

func TestInit_RefusesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "state")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Init(target)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("err = %v, want not a directory", err)
	}
}

func TestInit_StateNameReplacement(t *testing.T) {
	target := filepath.Join(t.TempDir(), "adaptive-state")
	if _, err := Init(target); err != nil {
		t.Fatalf("Init: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(target, "README.md"))
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	if !strings.Contains(string(data), "# adaptive-state") {
		t.Errorf("README.md does not contain the state dir name, got:\n%s", data)
	}
	if strings.Contains(string(data), "{{STATE_NAME}}") {
		t.Error("README.md still contains {{STATE_NAME}} placeholder")
	}
}

func TestExamples_Replay(t *testing.T) {
	target := filepath.Join(t.TempDir(), "state")
	if _, err := Init(target); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := map[string]string{
		"checkout-near-misses.jsonl": "set-large-ui(true)",
		"lost-scrolling.jsonl":       "show-help-prompt",
	}
	for name, first := range tests {
		t.Run(name, func(t *testing.T) {
			rec, err := recording.ParseFile(filepath.Join(target, "examples", name))
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			res, err := replay.Run(context.Background(), rec, replay.Options{})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(res.Timeline) == 0 || res.Timeline[0].Action.String() != first {
				t.Errorf("timeline = %+v, want first action %s", res.Timeline, first)
			}
		})
	}
}
