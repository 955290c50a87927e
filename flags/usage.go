package flags

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mitchellh/go-wordwrap"
)

// descriptionWidth is the column at which the description paragraph wraps.
const descriptionWidth = 76

// Usage renders the help text.
func (s *Set) Usage() string {
	var b strings.Builder
	b.WriteString("Usage: ")
	b.WriteString(s.name)
	if len(s.flags) > 0 {
		b.WriteString(" [options]")
	}
	for _, a := range s.args {
		b.WriteString(" ")
		b.WriteString(argSynopsis(a))
	}
	b.WriteString("\n")
	if s.description != "" {
		b.WriteString("\n")
		b.WriteString(wordwrap.WrapString(s.description, descriptionWidth))
		b.WriteString("\n")
	}

	rows := make([][2]string, 0, len(s.flags)+1)
	for _, f := range s.flags {
		rows = append(rows, [2]string{flagSynopsis(f), flagHelp(f)})
	}
	rows = append(rows, [2]string{"-h, --help", "Show this message"})
	b.WriteString("\nOptions:\n")
	writeColumns(&b, rows)

	var documented []ArgSpec
	for _, a := range s.args {
		if a.Usage != "" {
			documented = append(documented, a)
		}
	}
	if len(documented) > 0 {
		b.WriteString("\nArguments:\n")
		arows := make([][2]string, 0, len(documented))
		for _, a := range documented {
			arows = append(arows, [2]string{a.Name, a.Usage})
		}
		writeColumns(&b, arows)
	}
	return b.String()
}

// writeColumns renders two-column rows with the first column padded to
// its widest cell.
func writeColumns(b *strings.Builder, rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := text.RuneWidthWithoutEscSequences(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(text.Pad(r[0], width, ' '))
		b.WriteString("  ")
		b.WriteString(r[1])
		b.WriteString("\n")
	}
}

func argSynopsis(a ArgSpec) string {
	s := a.Name
	if a.Many {
		s += "..."
	}
	if a.Optional {
		s = "[" + s + "]"
	}
	return s
}

func flagSynopsis(f Flag) string {
	names := make([]string, 0, len(f.Aliases)+1)
	if f.Negatable {
		names = append(names, "--[no-]"+f.Name)
	} else {
		names = append(names, "--"+f.Name)
	}
	for _, a := range f.Aliases {
		names = append(names, "--"+a)
	}
	s := strings.Join(names, ", ")
	if f.Value {
		ph := f.Placeholder
		if ph == "" {
			ph = "VALUE"
		}
		s += " " + ph
	}
	if f.Short != "" {
		return "-" + f.Short + ", " + s
	}
	return "    " + s
}

func flagHelp(f Flag) string {
	if f.Default == nil || !f.Value {
		return f.Usage
	}
	return fmt.Sprintf("%s (default: %v)", f.Usage, f.Default)
}
