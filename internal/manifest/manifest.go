// Package manifest loads the file describing a scripted mainspring program:
// its name, flags, documented arguments and the Lua script holding main.
package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var cueSchema string

//go:embed schema.json
var jsonSchema string

// Manifest describes one scripted program.
type Manifest struct {
	ManifestVersion string   `json:"manifestVersion" yaml:"manifestVersion"`
	Name            string   `json:"name" yaml:"name"`
	Script          string   `json:"script" yaml:"script"`
	Version         string   `json:"version,omitempty" yaml:"version,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	EnvDefaults     string   `json:"envDefaults,omitempty" yaml:"envDefaults,omitempty"`
	ConfigDefaults  string   `json:"configDefaults,omitempty" yaml:"configDefaults,omitempty"`
	LogLevelOption  bool     `json:"logLevelOption,omitempty" yaml:"logLevelOption,omitempty"`
	Flags           []Flag   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Args            []Arg    `json:"args,omitempty" yaml:"args,omitempty"`
	Sandbox         *Sandbox `json:"sandbox,omitempty" yaml:"sandbox,omitempty"`

	// Dir is the directory holding the manifest file.
	Dir string `json:"-" yaml:"-"`
}

// Flag mirrors flags.Flag without the handler.
type Flag struct {
	Name        string   `json:"name" yaml:"name"`
	Short       string   `json:"short,omitempty" yaml:"short,omitempty"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Value       bool     `json:"value,omitempty" yaml:"value,omitempty"`
	Negatable   bool     `json:"negatable,omitempty" yaml:"negatable,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Usage       string   `json:"usage,omitempty" yaml:"usage,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// Arg documents a positional argument.
type Arg struct {
	Name     string `json:"name" yaml:"name"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Many     bool   `json:"many,omitempty" yaml:"many,omitempty"`
	Usage    string `json:"usage,omitempty" yaml:"usage,omitempty"`
}

// Sandbox configures the Lua state. Unset libs fall back to the defaults.
type Sandbox struct {
	TimeoutMs int   `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	Libs      *Libs `json:"libs,omitempty" yaml:"libs,omitempty"`
}

// Libs toggles Lua standard libraries.
type Libs struct {
	Base   *bool `json:"base,omitempty" yaml:"base,omitempty"`
	Table  *bool `json:"table,omitempty" yaml:"table,omitempty"`
	String *bool `json:"string,omitempty" yaml:"string,omitempty"`
	Math   *bool `json:"math,omitempty" yaml:"math,omitempty"`
	OS     *bool `json:"os,omitempty" yaml:"os,omitempty"`
}

// Load reads and validates a manifest. .cue files are checked against the
// CUE schema; .yaml, .yml and .json files against the JSON schema.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m *Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		m, err = parseCUE(path, data)
	case ".yaml", ".yml", ".json":
		m, err = parseYAML(data)
	default:
		return nil, errors.New("unsupported manifest format: expected .cue, .yaml or .json")
	}
	if err != nil {
		return nil, err
	}
	if err := checkManifestVersion(m.ManifestVersion); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve manifest dir: %w", err)
	}
	m.Dir = abs
	return m, nil
}

func parseCUE(path string, data []byte) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	for _, name := range []string{"manifestVersion", "name", "script"} {
		if err := requireStringField(v, name); err != nil {
			return nil, err
		}
	}
	schema := ctx.CompileString(cueSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("manifest schema: %v", err)
	}
	u := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	var m Manifest
	if err := u.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	return &m, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

func parseYAML(data []byte) (*Manifest, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	if doc == nil {
		return nil, errors.New("invalid manifest: empty document")
	}
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(jsonSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
	}
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %v", err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := map[string]bool{}
	for _, f := range m.Flags {
		for _, n := range append([]string{f.Name}, f.Aliases...) {
			if n == "help" || (n == "version" && m.Version != "") || (n == "log-level" && m.LogLevelOption) {
				return fmt.Errorf("flag %s: name is reserved", n)
			}
			if seen[n] {
				return fmt.Errorf("duplicate flag: %s", n)
			}
			seen[n] = true
		}
		if f.Negatable {
			if f.Value {
				return fmt.Errorf("flag %s: only switches can be negatable", f.Name)
			}
			if seen["no-"+f.Name] {
				return fmt.Errorf("duplicate flag: no-%s", f.Name)
			}
			seen["no-"+f.Name] = true
		}
		if f.Short != "" {
			if f.Short == "h" || seen["-"+f.Short] {
				return fmt.Errorf("duplicate flag shorthand: %s", f.Short)
			}
			seen["-"+f.Short] = true
		}
	}
	return nil
}

// ScriptPath resolves Script relative to the manifest directory.
func (m *Manifest) ScriptPath() string {
	if filepath.IsAbs(m.Script) {
		return m.Script
	}
	return filepath.Join(m.Dir, m.Script)
}
