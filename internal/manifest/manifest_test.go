package manifest

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/mainspring/flags"
	"github.com/flarebyte/mainspring/options"
)

func writeManifest(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

const cueManifest = `
manifestVersion: "1"
name:            "greet"
script:          "greet.lua"
version:         "1.0.0"
description:     "Say hello."
envDefaults:     "GREET_OPTS"
logLevelOption:  true
flags: [
	{name: "loud", short: "l", negatable: true, usage: "Shout"},
	{name: "greeting", value: true, placeholder: "WORD", default: "hello", aliases: ["salutation"]},
]
args: [{name: "who", optional: true, usage: "Who to greet"}]
sandbox: {timeoutMs: 500, libs: {os: true, "string": false}}
`

const yamlManifest = `
manifestVersion: "1"
name: greet
script: greet.lua
version: 1.0.0
flags:
  - name: loud
    short: l
  - name: greeting
    value: true
    default: hello
args:
  - name: who
    optional: true
`

func TestLoadCUE(t *testing.T) {
	p := writeManifest(t, "greet.cue", cueManifest)
	m, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "greet" || m.Version != "1.0.0" || len(m.Flags) != 2 || len(m.Args) != 1 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.Flags[1].Default != "hello" || m.Flags[1].Aliases[0] != "salutation" {
		t.Fatalf("unexpected flag: %+v", m.Flags[1])
	}
	if m.ScriptPath() != filepath.Join(filepath.Dir(p), "greet.lua") {
		t.Fatalf("unexpected script path %s", m.ScriptPath())
	}
	sb := m.LuaSandbox()
	if sb.TimeoutMs != 500 || !sb.Libs.OS || sb.Libs.String || !sb.Libs.Base {
		t.Fatalf("unexpected sandbox: %+v", sb)
	}
}

func TestLoadYAMLAndJSON(t *testing.T) {
	m, err := Load(writeManifest(t, "greet.yaml", yamlManifest))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if m.Name != "greet" || m.Flags[0].Short != "l" || !m.Args[0].Optional {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	js := `{"manifestVersion":"1","name":"greet","script":"greet.lua","flags":[{"name":"loud"}]}`
	m, err = Load(writeManifest(t, "greet.json", js))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(m.Flags) != 1 || m.LuaSandbox().Libs.Math != true {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		file string
		body string
		want string
	}{
		{"m.toml", "name = 'x'", "unsupported manifest format"},
		{"m.cue", `name: "x"`, "missing required field: manifestVersion"},
		{"m.cue", `manifestVersion: "1", name: "x", script: 3`, "invalid type for field: script"},
		{"m.cue", `manifestVersion: "1", name: "x", script: "a.lua", bogus: true`, "invalid manifest"},
		{"m.cue", `manifestVersion: "2", name: "x", script: "a.lua"`, "unsupported manifestVersion"},
		{"m.cue", `manifestVersion: "1", name: "x", script: "a.lua", flags: [{name: "a", short: "ab"}]`, "invalid manifest"},
		{"m.yaml", "manifestVersion: '1'\nname: x\n", "script"},
		{"m.yaml", "manifestVersion: '1'\nname: x\nscript: a.lua\nextra: 1\n", "invalid manifest"},
		{"m.yaml", "manifestVersion: '1'\nname: x\nscript: a.lua\nflags: [{name: a}, {name: a}]\n", "duplicate flag: a"},
		{"m.yaml", "manifestVersion: '1'\nname: x\nscript: a.lua\nflags: [{name: help}]\n", "reserved"},
		{"m.yaml", "manifestVersion: '1'\nname: x\nscript: a.lua\nflags: [{name: n, value: true, negatable: true}]\n", "only switches"},
		{"m.yaml", "manifestVersion: '1'\nname: x\nscript: a.lua\nflags: [{name: color, negatable: true}, {name: no-color}]\n", "duplicate flag: no-color"},
		{"m.yaml", "", "empty document"},
	}
	for _, tc := range cases {
		_, err := Load(writeManifest(t, tc.file, tc.body))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s %q: expected error containing %q, got %v", tc.file, tc.body, tc.want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFlagSetAndParser(t *testing.T) {
	m, err := Load(writeManifest(t, "greet.cue", cueManifest))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var out, errOut bytes.Buffer
	lv := new(slog.LevelVar)
	set, err := m.FlagSet("1.0.0", lv, flags.WithOutput(&out, &errOut))
	if err != nil {
		t.Fatalf("flag set: %v", err)
	}
	t.Setenv("GREET_OPTS", "--loud")
	store := options.New()
	rest, err := m.Parser(set).Parse([]string{"--salutation", "hi", "--log-level", "warn", "bob"}, store)
	if err != nil {
		t.Fatalf("parse: %v (%s)", err, errOut.String())
	}
	if len(rest) != 1 || rest[0] != "bob" {
		t.Fatalf("unexpected rest: %v", rest)
	}
	if !store.Bool("loud") || store.String("greeting") != "hi" || lv.Level() != slog.LevelWarn {
		t.Fatalf("unexpected store: %v", store.Snapshot())
	}
	if !strings.Contains(set.Usage(), "Usage: greet [options] [who]") {
		t.Fatalf("unexpected usage:\n%s", set.Usage())
	}

	store = options.New()
	if _, err := m.Parser(set).Parse([]string{"--no-loud"}, store); err != nil {
		t.Fatalf("parse: %v (%s)", err, errOut.String())
	}
	if v, _ := store.Get("loud"); v != false {
		t.Fatalf("command line must negate the env switch: %v", store.Snapshot())
	}
	if v, _ := store.Get("l"); v != false {
		t.Fatalf("short name must mirror the switch: %v", store.Snapshot())
	}
}
