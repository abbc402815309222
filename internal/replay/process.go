package replay

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/adaptive-ui/internal/archive"
	"github.com/suykerbuyk/adaptive-ui/internal/config"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
	"github.com/suykerbuyk/adaptive-ui/internal/recording"
)

// ProcessResult holds the output of processing one recording file.
type ProcessResult struct {
	RecordingID string
	SessionID   string
	ArchivePath string
	Result      *Result
	Skipped     bool
	Reason      string
}

// Process replays the recording at path with the configured thresholds,
// then journals and archives it when those are enabled. Journal and archive
// failures are logged and do not fail the replay.
func Process(ctx context.Context, path string, cfg config.Config, logger *zap.Logger) (*ProcessResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rec, err := recording.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("cannot derive recording id from %s", path)
	}
	if len(rec.Events) == 0 {
		return &ProcessResult{RecordingID: rec.ID, Skipped: true, Reason: "empty recording"}, nil
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.JournalPath())
		if err != nil {
			logger.Warn("journal unavailable", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	// Skip if already processed. Without a journal the archive is the only
	// record of earlier runs.
	archived := inDir(path, cfg.ArchiveDir())
	if store == nil && cfg.Archive.Compress && !archived && archive.IsArchived(rec.ID, cfg.ArchiveDir()) {
		return &ProcessResult{RecordingID: rec.ID, Skipped: true, Reason: "already archived"}, nil
	}
	if store != nil {
		seen, err := store.HasRecording(ctx, rec.ID)
		if err != nil {
			logger.Warn("could not check journal", zap.Error(err))
		} else if seen {
			return &ProcessResult{RecordingID: rec.ID, Skipped: true, Reason: "already processed"}, nil
		}
	}

	th := cfg.Thresholds()
	res, err := Run(ctx, rec, Options{
		Thresholds:   &th,
		TickInterval: cfg.TickInterval(),
		InitialMode:  cfg.InitialMode(),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	out := &ProcessResult{RecordingID: rec.ID, Result: res}

	if store != nil {
		ended := time.Now().UTC()
		id, err := store.Record(ctx, journal.Session{
			RecordingID: rec.ID,
			Source:      path,
			StartedAt:   ended.Add(-res.Duration),
			EndedAt:     ended,
			Snapshot:    res.Snapshot,
			Mode:        res.Mode,
			Timeline:    Entries(res.Timeline),
		})
		switch {
		case errors.Is(err, journal.ErrDuplicate):
			return &ProcessResult{RecordingID: rec.ID, Skipped: true, Reason: "already processed"}, nil
		case err != nil:
			logger.Warn("could not journal session", zap.Error(err))
		default:
			out.SessionID = id
		}
	}

	if cfg.Archive.Compress && !archived {
		archPath, err := archive.Archive(path, cfg.ArchiveDir())
		if err != nil {
			logger.Warn("could not archive recording", zap.Error(err))
		} else {
			out.ArchivePath = archPath
		}
	}

	logger.Info("recording processed",
		zap.String("recording", rec.ID),
		zap.String("session", out.SessionID),
		zap.Int("adaptations", len(res.Timeline)),
		zap.Int("scale_percent", res.Snapshot.ScalePercent()))
	return out, nil
}

// Entries converts a replay timeline to journal entries.
func Entries(steps []Step) []journal.Entry {
	out := make([]journal.Entry, 0, len(steps))
	for _, s := range steps {
		out = append(out, journal.Entry{Offset: s.Offset, Action: s.Action.String()})
	}
	return out
}

func inDir(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	return err == nil && filepath.Dir(rel) == "." && rel != ".." && rel != "."
}
