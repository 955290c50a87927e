package defaults

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flarebyte/mainspring/flags"
	"github.com/flarebyte/mainspring/options"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func testSet(t *testing.T) *flags.Set {
	t.Helper()
	s := flags.New("prog", flags.WithOutput(&discard{}, &discard{}))
	for _, f := range []flags.Flag{
		{Name: "name", Value: true, Default: "world"},
		{Name: "color", Value: true},
		{Name: "verbose"},
	} {
		if err := s.On(f); err != nil {
			t.Fatalf("on: %v", err)
		}
	}
	return s
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"d.yaml": "name: yaml\nverbose: true\nretries: 3\n",
		"d.toml": "name = \"yaml\"\nverbose = true\nretries = 3\n",
		"d.json": `{"name":"yaml","verbose":true,"retries":3}`,
		"d.hcl":  "name = \"yaml\"\nverbose = true\nretries = 3\n",
	}
	for name, body := range cases {
		got, err := LoadFile(writeFile(t, dir, name, body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		want := map[string]any{"name": "yaml", "verbose": true, "retries": "3"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %#v", name, got)
		}
	}
}

func TestLoadFileMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadFile(filepath.Join(dir, "absent.yaml"))
	if err != nil || len(got) != 0 {
		t.Fatalf("missing file should be empty: %v %v", got, err)
	}
	if _, err := LoadFile(writeFile(t, dir, "bad.yaml", "name: [unterminated\n")); err == nil {
		t.Fatalf("expected parse error")
	}
	got, err = LoadFile(writeFile(t, dir, "empty.yml", "\n"))
	if err != nil || len(got) != 0 {
		t.Fatalf("empty file should be empty: %v %v", got, err)
	}
}

func TestLoadFileHCL(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadFile(writeFile(t, dir, "d.hcl", "ratio = 1.5\ntags = [\"a\", \"b\"]\nlimits = { max = 2 }\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]any{
		"ratio":  "1.5",
		"tags":   []any{"a", "b"},
		"limits": map[string]any{"max": "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
	if _, err := LoadFile(writeFile(t, dir, "block.hcl", "server {\n  port = 1\n}\n")); err == nil {
		t.Fatalf("expected blocks to be rejected")
	}
	if _, err := LoadFile(writeFile(t, dir, "var.hcl", "name = other\n")); err == nil {
		t.Fatalf("expected variables to be rejected")
	}
}

func TestLoadFileExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, home, ".progrc.yaml", "color: red\n")
	got, err := LoadFile("~/.progrc.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["color"] != "red" {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "prog.yaml", "name: file\ncolor: blue\nverbose: true\n")
	t.Setenv("PROG_OPTS", "--color 'dark green'")

	p := FromFile(cfg, FromEnv("PROG_OPTS", testSet(t)))
	store := options.New()
	rest, err := p.Parse([]string{"--name", "cli", "arg"}, store)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if store.String("name") != "cli" {
		t.Fatalf("command line must win, got %q", store.String("name"))
	}
	if store.String("color") != "dark green" {
		t.Fatalf("env must beat file, got %q", store.String("color"))
	}
	if !store.Bool("verbose") {
		t.Fatalf("file value must survive")
	}
	if !reflect.DeepEqual(rest, []string{"arg"}) {
		t.Fatalf("unexpected args: %v", rest)
	}
}

func TestFileBeatsDeclaredDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "prog.yaml", "name: file\n")
	store := options.New()
	if _, err := FromFile(cfg, testSet(t)).Parse(nil, store); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if store.String("name") != "file" {
		t.Fatalf("got %q", store.String("name"))
	}
}

func TestFromEnvMalformed(t *testing.T) {
	t.Setenv("PROG_OPTS", "--color 'unterminated")
	if _, err := FromEnv("PROG_OPTS", testSet(t)).Parse(nil, options.New()); err == nil {
		t.Fatalf("expected error for malformed env value")
	}
}
