package help

import (
	"fmt"
	"strings"
)

// row is one name/description pair in an aligned listing.
type row struct {
	name string
	desc string
}

// writeRows writes rows indented by two spaces with descriptions starting
// at column col.
func writeRows(b *strings.Builder, rows []row, col int) {
	for _, r := range rows {
		gap := max(col-2-len(r.name), 1)
		fmt.Fprintf(b, "  %s%s%s\n", r.name, strings.Repeat(" ", gap), r.desc)
	}
}

func widest(rows []row) int {
	n := 0
	for _, r := range rows {
		n = max(n, len(r.name))
	}
	return n
}

// FormatTerminal renders a subcommand's --help text.
func FormatTerminal(c Command) string {
	args := make([]row, len(c.Args))
	for i, a := range c.Args {
		args[i] = row{a.Name, a.Desc}
	}
	flags := make([]row, len(c.Flags))
	for i, f := range c.Flags {
		flags[i] = row{f.Name, f.Desc}
	}

	// Args and flags share one description column, at least 13 when both
	// are present.
	col := 2 + max(widest(args), widest(flags)) + 3
	if len(args) > 0 && len(flags) > 0 {
		col = max(col, 13)
	}

	sections := []string{
		fmt.Sprintf("adaptui %s - %s", c.Name, c.Synopsis),
		"Usage: " + c.Usage,
	}
	block := func(title string, rows []row) {
		if len(rows) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString(title + ":\n")
		writeRows(&b, rows, col)
		sections = append(sections, strings.TrimSuffix(b.String(), "\n"))
	}
	block("Arguments", args)
	block("Flags", flags)

	if c.Description != "" {
		sections = append(sections, c.Description)
	}
	if len(c.Examples) > 0 {
		sections = append(sections, "Examples:\n  "+strings.Join(c.Examples, "\n  "))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// FormatUsage renders the top-level usage table shown by adaptui help.
func FormatUsage(top Command, subs []Command) string {
	rows := make([]row, 0, len(subs)+1)
	for _, s := range subs {
		rows = append(rows, row{s.tableUsage(), s.Brief})
	}
	rows = append(rows, row{"adaptui help [command]", "Show help"})

	types := make([]string, 0, len(RecordingEvents))
	for _, ev := range RecordingEvents[1:] {
		types = append(types, fmt.Sprintf("%q", ev.Type))
	}
	timed := strings.Join(types[:len(types)-1], ", ") + " and " + types[len(types)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "adaptui v%s - %s\n", Version, top.Synopsis)
	b.WriteString("\nUsage:\n")
	writeRows(&b, rows, 2+widest(rows)+3)

	fmt.Fprintf(&b, "\nRecordings are JSON lines: a %q event listing elements, then\n", RecordingEvents[0].Type)
	fmt.Fprintf(&b, "timed %s events.\n", timed)
	b.WriteString("\nConfiguration: ~/.config/adaptive-ui/config.toml\n")
	return b.String()
}
