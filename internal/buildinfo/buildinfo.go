// Package buildinfo exposes version metadata for the mainspring binary.
// Values set with -ldflags win, then cli.Version and cli.Date for external
// build scripts, then what the Go toolchain recorded (module version from
// `go install`, VCS revision and time from a local build).
package buildinfo

import (
	"runtime/debug"
	"strings"

	"github.com/flarebyte/mainspring/cli"
)

var (
	// Version is the semantic version or custom string.
	Version = ""
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional).
	Date = ""
	// BuiltBy is an optional builder identifier (optional).
	BuiltBy = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Info is the resolved metadata.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Resolve applies the fallbacks and returns "dev" when no version is known.
func Resolve() Info {
	var mod Info
	if bi, ok := readBuildInfo(); ok && bi != nil {
		if v := bi.Main.Version; v != "(devel)" {
			mod.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				mod.Commit = s.Value
			case "vcs.time":
				mod.Date = s.Value
			}
		}
	}
	return Info{
		Version: firstNonEmpty(Version, cli.Version, mod.Version, "dev"),
		Commit:  firstNonEmpty(Commit, mod.Commit),
		Date:    firstNonEmpty(Date, cli.Date, mod.Date),
	}
}

// Summary returns a concise single-line version string.
func Summary() string {
	info := Resolve()
	v := info.Version
	parts := make([]string, 0, 2)
	if c := info.Commit; c != "" {
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if info.Date != "" {
		parts = append(parts, "date="+info.Date)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
