package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templates embed.FS

// Init lays out an adaptui state directory at stateDir: the archive and
// inbox directories, a README and example recordings. Files that already
// exist are left alone, so Init is safe to rerun. Returns the paths it
// created, relative to stateDir.
func Init(stateDir string) ([]string, error) {
	stateDir, err := filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if info, err := os.Stat(stateDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%s exists and is not a directory", stateDir)
	}

	stateName := filepath.Base(stateDir)
	var created []string

	// Walk embedded templates and copy to target.
	err = fs.WalkDir(templates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Strip the "templates/" prefix to get the relative path within the state dir.
		rel, err := filepath.Rel("templates", path)
		if err != nil {
			return err
		}
		dest := filepath.Join(stateDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		if _, err := os.Stat(dest); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", path, err)
		}

		// Template substitution for README.md
		if rel == "README.md" {
			data = []byte(strings.ReplaceAll(string(data), "{{STATE_NAME}}", stateName))
		}

		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
		created = append(created, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scaffold state dir: %w", err)
	}

	return created, nil
}
