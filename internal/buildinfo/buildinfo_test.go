package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/flarebyte/mainspring/cli"
)

func withoutToolchainInfo(t *testing.T) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	t.Cleanup(func() { readBuildInfo = old })
}

func TestSummary(t *testing.T) {
	withoutToolchainInfo(t)
	oldV, oldC, oldD := Version, Commit, Date
	oldCliV, oldCliD := cli.Version, cli.Date
	defer func() {
		Version, Commit, Date = oldV, oldC, oldD
		cli.Version, cli.Date = oldCliV, oldCliD
	}()

	cases := []struct {
		version, commit, date, cliVersion, cliDate string
		want                                       string
	}{
		{"", "", "", "", "", "dev"},
		{"1.2.0", "", "", "", "", "1.2.0"},
		{"", "", "", "0.9.0", "2026-02-09", "0.9.0 (date=2026-02-09)"},
		{"1.2.0", "0123456789abcdef", "", "", "", "1.2.0 (commit=0123456)"},
		{"1.2.0", "abc", "2026-10-01", "", "", "1.2.0 (commit=abc, date=2026-10-01)"},
	}
	for _, tc := range cases {
		Version, Commit, Date = tc.version, tc.commit, tc.date
		cli.Version, cli.Date = tc.cliVersion, tc.cliDate
		if got := Summary(); got != tc.want {
			t.Fatalf("Summary() = %q, want %q", got, tc.want)
		}
	}
}

func TestResolveFallsBackToToolchain(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	oldCliV, oldCliD := cli.Version, cli.Date
	old := readBuildInfo
	defer func() {
		Version, Commit, Date = oldV, oldC, oldD
		cli.Version, cli.Date = oldCliV, oldCliD
		readBuildInfo = old
	}()
	Version, Commit, Date = "", "", ""
	cli.Version, cli.Date = "", ""

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.4.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "feedfacecafe"},
				{Key: "vcs.time", Value: "2026-10-19T08:00:00Z"},
			},
		}, true
	}
	got := Resolve()
	if got.Version != "v0.4.1" || got.Commit != "feedfacecafe" || got.Date != "2026-10-19T08:00:00Z" {
		t.Fatalf("unexpected info: %+v", got)
	}

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	if got := Summary(); got != "dev" {
		t.Fatalf("devel build: %q", got)
	}

	Version, Commit = "1.0.0", "0000000aaa"
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Version: "v0.4.1"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "feedfacecafe"}},
		}, true
	}
	if got := Summary(); got != "1.0.0 (commit=0000000)" {
		t.Fatalf("ldflags must win: %q", got)
	}
}
