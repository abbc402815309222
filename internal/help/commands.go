package help

import "strings"

// Version is the adaptui release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--limit <n>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "recording.jsonl"
	Desc     string
	Optional bool
}

// Command describes an adaptui subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string   // "replay", "watch", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line, e.g. "adaptui sessions [--limit <n>]"
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "adaptui(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "adaptui" for top-level, "adaptui-<name>"
// for subcommands.
func (c Command) ManName() string {
	if c.Name == "" {
		return "adaptui"
	}
	return "adaptui-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level adaptui command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "adaptive interface behavior engine",
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write a default config and create the state directory",
	Brief:    "Write default config and state dir",
	Usage:    "adaptui init [state-dir]",
	Args: []Arg{
		{Name: "state-dir", Desc: "Where the journal and archive live (default: ~/.local/state/adaptive-ui)", Optional: true},
	},
	Description: `Writes ~/.config/adaptive-ui/config.toml with the reference detection
thresholds and lays out the state directory: recordings/, inbox/, a
README and example recordings. An existing config keeps every setting
except state_dir, and existing state files are never overwritten.`,
	Examples: []string{
		"adaptui init                      Use the default state dir",
		"adaptui init /var/lib/adaptui     Keep state somewhere else",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-check(1)"},
}

var CmdReplay = Command{
	Name:       "replay",
	Synopsis:   "replay a recorded session through the engine",
	Brief:      "Replay one recording",
	Usage:      "adaptui replay <recording.jsonl>",
	TableUsage: "adaptui replay <file.jsonl>",
	Args: []Arg{
		{Name: "recording.jsonl", Desc: "Recording to replay (.jsonl or .jsonl.zst)"},
	},
	Description: `Feeds every scroll, click and tick of the recording through the
behavior collector, runs the adaptation controller after each event
and prints the resulting adaptations with their offsets.

The session is journaled and the recording archived when those are
enabled. Recordings already in the journal are skipped.`,
	Examples: []string{
		"adaptui replay ./checkout-flow.jsonl",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-watch(1)", "adaptui-sessions(1)"},
}

var CmdWatch = Command{
	Name:     "watch",
	Synopsis: "replay recordings as they land in a directory",
	Brief:    "Watch a directory for recordings",
	Usage:    "adaptui watch <dir> [--backfill]",
	Args: []Arg{
		{Name: "dir", Desc: "Directory receiving .jsonl or .jsonl.zst recordings"},
	},
	Flags: []Flag{
		{Name: "--backfill", Desc: "Also replay recordings already in the directory"},
	},
	Description: `Watches the directory and replays each new recording once it has been
quiet for the configured debounce window ([ingest] debounce_ms).
Runs until interrupted.`,
	Examples: []string{
		"adaptui watch ~/recordings",
		"adaptui watch ~/recordings --backfill",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-replay(1)"},
}

var CmdLive = Command{
	Name:     "live",
	Synopsis: "adapt to interaction events streamed on stdin",
	Brief:    "Adapt to events on stdin",
	Usage:    "adaptui live [--paced]",
	Flags: []Flag{
		{Name: "--paced", Desc: "Hold each event until its t offset has elapsed"},
	},
	Description: `Reads recording events from stdin as they arrive and runs them through
a live observation scope with a real dwell timer. Adaptations are
printed the moment they apply. At end of input the session is
journaled under a generated recording id.`,
	Examples: []string{
		"browser-bridge | adaptui live",
		"adaptui live --paced < checkout-flow.jsonl",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-replay(1)"},
}

var CmdBackfill = Command{
	Name:     "backfill",
	Synopsis: "replay every recording under a directory tree",
	Brief:    "Replay all recordings in a tree",
	Usage:    "adaptui backfill <dir>",
	Args: []Arg{
		{Name: "dir", Desc: "Directory searched recursively for recordings"},
	},
	Description: `Finds every .jsonl and .jsonl.zst recording below dir, oldest first,
and replays each one. Hidden directories and the state archive are
skipped. Recordings already in the journal are skipped.`,
	Examples: []string{
		"adaptui backfill ~/recordings",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-replay(1)", "adaptui-watch(1)"},
}

var CmdSessions = Command{
	Name:       "sessions",
	Synopsis:   "list journaled sessions",
	Brief:      "List journaled sessions",
	Usage:      "adaptui sessions [--limit <n>]",
	TableUsage: "adaptui sessions [--limit N]",
	Flags: []Flag{
		{Name: "--limit <n>", Desc: "Show at most n sessions (default: 20)"},
	},
	Description: `Lists the most recent sessions in the journal with their final
scale factor and the number of adaptations applied.`,
	SeeAlso: []string{"adaptui(1)", "adaptui-show(1)"},
}

var CmdShow = Command{
	Name:     "show",
	Synopsis: "print one journaled session",
	Brief:    "Show one session's timeline",
	Usage:    "adaptui show <session-id>",
	Args: []Arg{
		{Name: "session-id", Desc: "Id printed by replay or sessions"},
	},
	Description: `Prints the final behavior snapshot, display mode and the ordered
adaptation timeline of a journaled session.`,
	SeeAlso: []string{"adaptui(1)", "adaptui-sessions(1)"},
}

var CmdStats = Command{
	Name:       "stats",
	Synopsis:   "summarize journaled sessions",
	Brief:      "Summarize adaptations",
	Usage:      "adaptui stats [--since <date>]",
	TableUsage: "adaptui stats [--since DATE]",
	Flags: []Flag{
		{Name: "--since <date>", Desc: "Only sessions that ended on or after date (YYYY-MM-DD)"},
	},
	Description: `Aggregates the journal: how often each signal fired, which adaptations
were applied, the final scale distribution and a monthly trend.`,
	Examples: []string{
		"adaptui stats",
		"adaptui stats --since 2026-10-01",
	},
	SeeAlso: []string{"adaptui(1)", "adaptui-sessions(1)"},
}

var CmdArchive = Command{
	Name:       "archive",
	Synopsis:   "compress a recording into the state archive",
	Brief:      "Compress a recording",
	Usage:      "adaptui archive <recording.jsonl>",
	TableUsage: "adaptui archive <file.jsonl>",
	Args: []Arg{
		{Name: "recording.jsonl", Desc: "Recording to compress"},
	},
	Description: `Compresses the recording to recordings/{id}.jsonl.zst under the state
directory using zstd. The original is not deleted.`,
	SeeAlso: []string{"adaptui(1)", "adaptui-replay(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, state and journal",
	Brief:    "Validate config, state and journal",
	Usage:    "adaptui check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location
  - Log level
  - State directory exists
  - Detection thresholds are usable
  - Starting display mode from [environment]
  - Journal opens and session count
  - Archive directory and recording count

Exit code 0 if all checks pass or warn, 1 if any check fails.`,
	SeeAlso: []string{"adaptui(1)", "adaptui-init(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "adaptui version",
	SeeAlso:  []string{"adaptui(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdInit,
	CmdReplay,
	CmdWatch,
	CmdLive,
	CmdBackfill,
	CmdSessions,
	CmdShow,
	CmdStats,
	CmdArchive,
	CmdCheck,
	CmdVersion,
}

// Lookup returns the subcommand with the given name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
