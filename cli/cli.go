// Package cli holds the release metadata injected by the build scripts.
package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/mainspring/cli.Version=1.2.3' -X 'github.com/flarebyte/mainspring/cli.Date=2026-02-09'"
var (
	Version string
	Date    string
)
