package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/adaptive-ui/internal/archive"
	"github.com/suykerbuyk/adaptive-ui/internal/check"
	"github.com/suykerbuyk/adaptive-ui/internal/config"
	"github.com/suykerbuyk/adaptive-ui/internal/discover"
	"github.com/suykerbuyk/adaptive-ui/internal/help"
	"github.com/suykerbuyk/adaptive-ui/internal/ingest"
	"github.com/suykerbuyk/adaptive-ui/internal/journal"
	"github.com/suykerbuyk/adaptive-ui/internal/live"
	"github.com/suykerbuyk/adaptive-ui/internal/logging"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
	"github.com/suykerbuyk/adaptive-ui/internal/replay"
	"github.com/suykerbuyk/adaptive-ui/internal/scaffold"
	"github.com/suykerbuyk/adaptive-ui/internal/stats"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(1)
	}

	name := os.Args[1]
	args := os.Args[2:]

	switch name {
	case "help", "--help", "-h":
		runHelp(args)
		return
	case "version", "--version":
		fmt.Printf("adaptui v%s\n", help.Version)
		return
	}

	if cmd, ok := help.Lookup(name); ok && hasFlag(args, "--help", "-h") {
		fmt.Print(help.FormatTerminal(cmd))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fatal("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	switch name {
	case "init":
		runInit(args, cfg)

	case "replay":
		if len(args) < 1 {
			fatal("usage: %s", help.CmdReplay.Usage)
		}
		runReplay(args[0], cfg, logger)

	case "watch":
		if len(args) < 1 || args[0] == "--backfill" {
			fatal("usage: %s", help.CmdWatch.Usage)
		}
		runWatch(args[0], hasFlag(args[1:], "--backfill"), cfg, logger)

	case "live":
		runLive(hasFlag(args, "--paced"), cfg, logger)

	case "backfill":
		if len(args) < 1 {
			fatal("usage: %s", help.CmdBackfill.Usage)
		}
		runBackfill(args[0], cfg, logger)

	case "sessions":
		limit := 20
		if v := flagValue(args, "--limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				fatal("invalid --limit %q", v)
			}
			limit = n
		}
		runSessions(limit, cfg)

	case "show":
		if len(args) < 1 {
			fatal("usage: %s", help.CmdShow.Usage)
		}
		runShow(args[0], cfg)

	case "stats":
		runStats(flagValue(args, "--since"), cfg)

	case "archive":
		if len(args) < 1 {
			fatal("usage: %s", help.CmdArchive.Usage)
		}
		path, err := archive.Archive(args[0], cfg.ArchiveDir())
		if err != nil {
			fatal("archive: %v", err)
		}
		fmt.Printf("archived: %s\n", path)

	case "check":
		report := check.Run(cfg)
		fmt.Print(report.Format())
		if report.HasFailures() {
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(1)
	}
}

func runHelp(args []string) {
	if len(args) == 0 {
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))
		return
	}
	cmd, ok := help.Lookup(args[0])
	if !ok {
		fatal("no help for %q", args[0])
	}
	fmt.Print(help.FormatTerminal(cmd))
}

func runInit(args []string, cfg config.Config) {
	stateDir := cfg.StateDir
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			fatal("resolve state dir: %v", err)
		}
		stateDir = abs
	}

	path, action, err := config.WriteDefault(stateDir)
	if err != nil {
		fatal("init: %v", err)
	}
	created, err := scaffold.Init(stateDir)
	if err != nil {
		fatal("init: %v", err)
	}
	fmt.Printf("config %s: %s\n", action, path)
	fmt.Printf("state dir: %s (%d files created)\n", stateDir, len(created))
}

func runReplay(path string, cfg config.Config, logger *zap.Logger) {
	res, err := replay.Process(context.Background(), path, cfg, logger)
	if err != nil {
		fatal("replay: %v", err)
	}
	if res.Skipped {
		fmt.Printf("skipped: %s (%s)\n", res.RecordingID, res.Reason)
		return
	}

	r := res.Result
	fmt.Printf("recording: %s (%d events, %s)\n", r.RecordingID, r.Events, r.Duration)
	for _, s := range r.Timeline {
		fmt.Printf("  %8s  %s\n", formatOffset(s.Offset), s.Action)
	}
	if len(r.Timeline) == 0 {
		fmt.Println("  no adaptations")
	}
	printSnapshot(r.Snapshot.ChaoticScrolling, r.Snapshot.LongBrowsing, r.Snapshot.ClickDifficulty,
		r.Snapshot.ScalePercent(), r.Mode)
	if res.SessionID != "" {
		fmt.Printf("session: %s\n", res.SessionID)
	}
	if res.ArchivePath != "" {
		fmt.Printf("archived: %s\n", res.ArchivePath)
	}
}

func runWatch(dir string, backfill bool, cfg config.Config, logger *zap.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, path string) error {
		res, err := replay.Process(ctx, path, cfg, logger)
		if err != nil {
			return err
		}
		if res.Skipped {
			logger.Debug("recording skipped", zap.String("path", path), zap.String("reason", res.Reason))
		}
		return nil
	}

	opts := []ingest.Option{
		ingest.WithDebounce(cfg.IngestDebounce()),
		ingest.WithLogger(logger),
	}
	if backfill {
		opts = append(opts, ingest.WithBackfill())
	}

	w, err := ingest.NewWatcher(dir, handle, opts...)
	if err != nil {
		fatal("watch: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		fatal("watch: %v", err)
	}
	logger.Info("watching for recordings", zap.String("dir", dir))

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	w.Stop()

	st := w.Stats()
	fmt.Printf("handled %d recordings (%d errors)\n", st.Handled, st.Errors)
}

func runLive(paced bool, cfg config.Config, logger *zap.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	th := cfg.Thresholds()
	res, err := live.Run(ctx, os.Stdin, live.Options{
		Thresholds:   &th,
		TickInterval: cfg.TickInterval(),
		Store:        mode.NewStore(cfg.InitialMode()),
		Logger:       logger,
		Paced:        paced,
		OnAdaptation: func(a live.Adaptation) {
			fmt.Printf("  %8s  %s\n", formatOffset(a.At), a.Action)
		},
	})
	if err != nil {
		fatal("live: %v", err)
	}

	fmt.Printf("live: %d events, %s\n", res.Events, res.Duration.Round(time.Millisecond))
	if res.Dropped > 0 {
		fmt.Printf("dropped: %d events\n", res.Dropped)
	}
	printSnapshot(res.Snapshot.ChaoticScrolling, res.Snapshot.LongBrowsing, res.Snapshot.ClickDifficulty,
		res.Snapshot.ScalePercent(), res.Mode)

	if !cfg.Journal.Enabled || res.Events == 0 {
		return
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logger.Warn("journal unavailable", zap.Error(err))
		return
	}
	defer store.Close()
	id, err := store.Record(context.Background(), res.Session("stdin", time.Now().UTC()))
	if err != nil {
		logger.Warn("could not journal session", zap.Error(err))
		return
	}
	fmt.Printf("session: %s\n", id)
}

func runBackfill(dir string, cfg config.Config, logger *zap.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := discover.Discover(dir, cfg.ArchiveDir())
	if err != nil {
		fatal("backfill: %v", err)
	}

	var processed, skipped, failed int
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		res, err := replay.Process(ctx, f.Path, cfg, logger)
		switch {
		case err != nil:
			failed++
			logger.Warn("backfill failed", zap.String("path", f.Path), zap.Error(err))
		case res.Skipped:
			skipped++
		default:
			processed++
			fmt.Printf("  %s  %d adaptations, scale %d%%\n",
				res.RecordingID, len(res.Result.Timeline), res.Result.Snapshot.ScalePercent())
		}
	}

	fmt.Printf("backfill: %d processed, %d skipped, %d errors\n", processed, skipped, failed)
}

func runSessions(limit int, cfg config.Config) {
	store := openJournal(cfg)
	defer store.Close()

	sessions, err := store.List(context.Background(), limit)
	if err != nil {
		fatal("list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions")
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s  %s  %-24s  scale %d%%  %d adaptations\n",
			s.ID, s.EndedAt.Local().Format("2006-01-02 15:04"), s.RecordingID,
			s.Snapshot.ScalePercent(), len(s.Timeline))
	}
}

func runShow(id string, cfg config.Config) {
	store := openJournal(cfg)
	defer store.Close()

	s, err := store.Get(context.Background(), id)
	if errors.Is(err, journal.ErrNotFound) {
		fatal("no session %s", id)
	}
	if err != nil {
		fatal("show: %v", err)
	}

	fmt.Printf("session:   %s\n", s.ID)
	fmt.Printf("recording: %s\n", s.RecordingID)
	fmt.Printf("source:    %s\n", s.Source)
	fmt.Printf("ended:     %s (%s)\n", s.EndedAt.Local().Format(time.RFC3339), s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Printf("dwell:     %ds, %d reversals, %d near misses\n",
		s.Snapshot.TimeOnPageSeconds, s.Snapshot.ScrollDirectionChanges, s.Snapshot.MissedClickCount)
	printSnapshot(s.Snapshot.ChaoticScrolling, s.Snapshot.LongBrowsing, s.Snapshot.ClickDifficulty,
		s.Snapshot.ScalePercent(), s.Mode)
	fmt.Println("timeline:")
	if len(s.Timeline) == 0 {
		fmt.Println("  no adaptations")
	}
	for _, e := range s.Timeline {
		fmt.Printf("  %8s  %s\n", formatOffset(e.Offset), e.Action)
	}
}

func runStats(since string, cfg config.Config) {
	var from time.Time
	if since != "" {
		t, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			fatal("invalid --since %q (want YYYY-MM-DD)", since)
		}
		from = t
	}

	store := openJournal(cfg)
	defer store.Close()

	sessions, err := store.List(context.Background(), 0)
	if err != nil {
		fatal("list sessions: %v", err)
	}
	fmt.Print(stats.Format(stats.Compute(sessions, from), since))
}

func openJournal(cfg config.Config) *journal.Store {
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		fatal("open journal: %v", err)
	}
	return store
}

func printSnapshot(chaotic, long, difficult bool, scale int, m mode.Mode) {
	fmt.Printf("chaotic scrolling: %t\n", chaotic)
	fmt.Printf("long browsing:     %t\n", long)
	fmt.Printf("click difficulty:  %t\n", difficult)
	fmt.Printf("ui scale:          %d%%\n", scale)
	fmt.Printf("large ui:          %t\n", m.LargeUI)
	fmt.Printf("display mode:      %s\n", m)
	fmt.Printf("touch target:      %dpx md, control scale %d%%\n",
		mode.MinTouchHeight(mode.SizeMedium, m), int(math.Round(m.ScaleFactor()*100)))
}

func formatOffset(d time.Duration) string {
	return d.Truncate(time.Millisecond).String()
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "adaptui: "+format+"\n", args...)
	os.Exit(1)
}
