package help

import (
	"fmt"
	"strings"
	"time"
)

// RecordingEvent documents one line type of the recording format.
type RecordingEvent struct {
	Type   string
	Fields string
	Desc   string
}

// RecordingEvents lists the JSON line types adaptui reads, in the order a
// recording usually contains them.
var RecordingEvents = []RecordingEvent{
	{"surface", "elements", "Replace the hit-testing surface. Each element has id, tag, role, parent and box {x, y, w, h}."},
	{"scroll", "t, y", "Vertical scroll offset in pixels at t milliseconds."},
	{"click", "t, x, y, target", "Pointer click. target is an element id; without it the element under the point is used."},
	{"tick", "t", "Advance the dwell clock. Ignored by live, which keeps its own timer."},
	{"reset", "t", "Zero every signal and re-arm the one-shot adaptations."},
}

// stateFiles are the paths adaptui keeps under the state directory.
var stateFiles = [][2]string{
	{"~/.config/adaptive-ui/config.toml", "Configuration, written by adaptui init."},
	{"<state_dir>/journal.db", "SQLite journal of replayed and live sessions."},
	{"<state_dir>/recordings/", "zstd archive of replayed recordings."},
	{"<state_dir>/inbox/", "Suggested directory for adaptui watch."},
}

// manPage accumulates roff source section by section.
type manPage struct {
	b strings.Builder
}

func newManPage(title, date string) *manPage {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	p := &manPage{}
	fmt.Fprintf(&p.b, ".TH %s 1 %q %q %q\n", title, date, "adaptui "+Version, "Adaptive UI Manual")
	return p
}

func (p *manPage) section(name string) {
	p.b.WriteString(".SH " + name + "\n")
}

func (p *manPage) line(s string) {
	p.b.WriteString(s + "\n")
}

// item writes a tagged paragraph; tag and body are escaped.
func (p *manPage) item(tag, body string) {
	fmt.Fprintf(&p.b, ".TP\n.B %s\n%s\n", escapeRoff(tag), escapeRoff(body))
}

// paragraphs writes prose, turning blank lines into .PP breaks.
func (p *manPage) paragraphs(text string) {
	prevBlank := false
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			if !prevBlank {
				p.line(".PP")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		p.line(escapeRoff(l))
	}
}

// literal writes lines in no-fill mode.
func (p *manPage) literal(lines []string) {
	p.line(".nf")
	for _, l := range lines {
		p.line(escapeRoff(l))
	}
	p.line(".fi")
}

func (p *manPage) seeAlso(refs []string) {
	if len(refs) == 0 {
		return
	}
	p.section("SEE ALSO")
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = formatManRef(ref)
	}
	p.line(strings.Join(out, ",\n"))
}

func (p *manPage) exitStatus() {
	p.section("EXIT STATUS")
	p.line("0 on success, 1 on a usage error, an unreadable or malformed recording,")
	p.line("or a failed check.")
}

func (p *manPage) String() string {
	return p.b.String()
}

// FormatRoff renders a subcommand as a man page in section 1. An empty date
// means today; pass a fixed one for reproducible output.
func FormatRoff(c Command, date string) string {
	p := newManPage(strings.ToUpper(c.ManName()), date)

	p.section("NAME")
	p.line(fmt.Sprintf("%s \\- %s", c.ManName(), escapeRoff(c.Synopsis)))

	p.section("SYNOPSIS")
	p.line(".B " + escapeRoff(c.Usage))

	if c.Description != "" {
		p.section("DESCRIPTION")
		p.paragraphs(c.Description)
	}

	if len(c.Args) > 0 || len(c.Flags) > 0 {
		p.section("OPTIONS")
		for _, a := range c.Args {
			desc := a.Desc
			if a.Optional {
				desc += " Optional."
			}
			p.item(a.Name, desc)
		}
		for _, f := range c.Flags {
			p.item(f.Name, f.Desc)
		}
	}

	if len(c.Examples) > 0 {
		p.section("EXAMPLES")
		p.literal(c.Examples)
	}

	if c.Name != "version" {
		p.exitStatus()
	}
	p.seeAlso(c.SeeAlso)
	return p.String()
}

// FormatRoffTopLevel renders adaptui.1: every subcommand, the recording
// format and the files adaptui keeps.
func FormatRoffTopLevel(top Command, subs []Command, date string) string {
	p := newManPage("ADAPTUI", date)

	p.section("NAME")
	p.line("adaptui \\- " + escapeRoff(top.Synopsis))

	p.section("SYNOPSIS")
	p.line(".B adaptui\n.I command\n.RI [ options ]")

	p.section("DESCRIPTION")
	p.line(".B adaptui")
	p.line("feeds recorded or live interaction sessions through a behavior collector")
	p.line("that detects chaotic scrolling, long browsing and click difficulty, and")
	p.line("journals the interface adaptations each session triggered.")

	p.section("COMMANDS")
	for _, s := range subs {
		fmt.Fprintf(&p.b, ".TP\n.B \"%s\"\n%s\n", escapeRoff(s.tableUsage()), escapeRoff(s.Brief))
	}

	p.section("RECORDINGS")
	p.line("A recording is one JSON object per line, selected by its type field.")
	p.line("Times are milliseconds since the recording started. Files ending in")
	p.line(".B .jsonl.zst")
	p.line("are decompressed transparently.")
	for _, ev := range RecordingEvents {
		p.item(fmt.Sprintf("%s (%s)", ev.Type, ev.Fields), ev.Desc)
	}

	p.section("CONFIGURATION")
	p.line("Configuration file: ~/.config/adaptive\\-ui/config.toml")
	p.line(".PP")
	p.line("$XDG_CONFIG_HOME replaces ~/.config when set. Detection thresholds live in")
	p.line("the [scroll], [dwell] and [click] tables; [environment] sets the starting")
	p.line("display mode.")

	p.section("FILES")
	for _, f := range stateFiles {
		p.item(f[0], f[1])
	}

	p.exitStatus()

	refs := make([]string, len(subs))
	for i, s := range subs {
		refs[i] = s.ManName() + "(1)"
	}
	p.seeAlso(refs)
	return p.String()
}

// escapeRoff escapes backslashes, leading dots and hyphens.
func escapeRoff(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	return strings.ReplaceAll(s, "-", "\\-")
}

// formatManRef turns "adaptui-init(1)" into ".BR adaptui\-init (1)".
func formatManRef(ref string) string {
	name, section, ok := strings.Cut(ref, "(")
	if !ok {
		return ".B " + escapeRoff(ref)
	}
	return fmt.Sprintf(".BR %s (%s", escapeRoff(name), section)
}
