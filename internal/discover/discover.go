package discover

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/suykerbuyk/adaptive-ui/internal/archive"
)

// RecordingFile represents a discovered recording on disk.
type RecordingFile struct {
	Path       string
	ID         string // file name without .jsonl / .jsonl.zst
	Compressed bool   // true for .jsonl.zst
	ModTime    int64  // unix timestamp for sorting
}

// Discover walks basePath recursively and returns all recordings, sorted by
// modification time (oldest first). Hidden entries and the directories in
// exclude are skipped.
func Discover(basePath string, exclude ...string) ([]RecordingFile, error) {
	skip := make(map[string]bool, len(exclude))
	for _, d := range exclude {
		if d != "" {
			skip[filepath.Clean(d)] = true
		}
	}

	var results []RecordingFile

	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == basePath {
				return err
			}
			return nil // skip inaccessible entries
		}

		name := d.Name()
		if d.IsDir() {
			if path != basePath && (strings.HasPrefix(name, ".") || skip[filepath.Clean(path)]) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		compressed := strings.HasSuffix(name, ".jsonl.zst")
		if !compressed && !strings.HasSuffix(name, ".jsonl") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		results = append(results, RecordingFile{
			Path:       path,
			ID:         archive.RecordingID(path),
			Compressed: compressed,
			ModTime:    info.ModTime().Unix(),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ModTime != results[j].ModTime {
			return results[i].ModTime < results[j].ModTime
		}
		return results[i].Path < results[j].Path
	})

	return results, nil
}
