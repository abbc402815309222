// Package archive stores replayed recordings as zstd-compressed JSONL.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	rawExt        = ".jsonl"
	compressedExt = ".jsonl.zst"
)

// Archive compresses srcPath into archiveDir/{recording-id}.jsonl.zst.
// Returns the archive path.
func Archive(srcPath, archiveDir string) (string, error) {
	id := RecordingID(srcPath)
	if id == "" {
		return "", fmt.Errorf("cannot extract recording ID from %s", srcPath)
	}

	destPath := ArchivePath(id, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	// write beside the destination, then rename, so a watcher never sees a
	// half-written archive
	tmp, err := os.CreateTemp(archiveDir, ".archive-*")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		tmp.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("finalize compression: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return "", fmt.Errorf("rename archive: %w", err)
	}

	return destPath, nil
}

// Open returns a reader over a recording, decompressing .zst files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &zstdFile{Decoder: decoder, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// IsArchived returns true if an archive file exists for the given recording ID.
func IsArchived(id, archiveDir string) bool {
	_, err := os.Stat(ArchivePath(id, archiveDir))
	return err == nil
}

// ArchivePath returns the deterministic archive path for a recording ID.
func ArchivePath(id, archiveDir string) string {
	return filepath.Join(archiveDir, id+compressedExt)
}

// RecordingID derives the recording ID from a file name, or "" when the
// file is not a recording.
func RecordingID(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, compressedExt) {
		return strings.TrimSuffix(base, compressedExt)
	}
	if strings.HasSuffix(base, rawExt) {
		return strings.TrimSuffix(base, rawExt)
	}
	return ""
}
