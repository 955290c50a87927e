// Package defaults decorates a parser so option values can come from an
// environment variable or a config file before the command line is read.
// Precedence, lowest first: declared flag defaults, config file, environment
// variable, command line.
package defaults

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/mainspring/options"
	"github.com/hashicorp/hcl/v2/hclparse"
	shellwords "github.com/mattn/go-shellwords"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Parser is the contract shared with mainspring.Parser.
type Parser interface {
	Parse(argv []string, store *options.Store) ([]string, error)
}

type parserFunc func(argv []string, store *options.Store) ([]string, error)

func (f parserFunc) Parse(argv []string, store *options.Store) ([]string, error) {
	return f(argv, store)
}

// FromEnv prepends the shell-split contents of the environment variable name
// to argv. Flags given on the command line are parsed later and win.
func FromEnv(name string, next Parser) Parser {
	return parserFunc(func(argv []string, store *options.Store) ([]string, error) {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			return next.Parse(argv, store)
		}
		extra, err := shellwords.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		merged := make([]string, 0, len(extra)+len(argv))
		merged = append(merged, extra...)
		merged = append(merged, argv...)
		return next.Parse(merged, store)
	})
}

// FromFile merges the top-level map of the config file at path into the
// store before parsing. A missing file is ignored.
func FromFile(path string, next Parser) Parser {
	return parserFunc(func(argv []string, store *options.Store) ([]string, error) {
		values, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		store.Merge(values)
		return next.Parse(argv, store)
	})
}

// LoadFile reads a YAML, TOML, HCL or JSON defaults file, chosen by extension
// (YAML when unknown). It returns an empty map when the file does not exist.
func LoadFile(path string) (map[string]any, error) {
	p, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read defaults file %s: %w", p, err)
	}
	values := map[string]any{}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".toml":
		err = toml.Unmarshal(data, &values)
	case ".hcl":
		values, err = parseHCL(p, data)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&values)
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return values, nil
		}
		err = yaml.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("parse defaults file %s: %w", p, err)
	}
	return normalize(values), nil
}

// parseHCL reads top-level attributes. Blocks, variables and function calls
// are rejected.
func parseHCL(path string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}
	values := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.New(diags.Error())
		}
		values[name] = fromCty(v)
	}
	return values, nil
}

func fromCty(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = fromCty(ev)
		}
		return out
	case v.CanIterateElements():
		out := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, fromCty(ev))
		}
		return out
	}
	return nil
}

// normalize keeps bools and strings as they are and renders other scalars
// as strings, so file values look like values parsed from flags.
func normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		k = strings.TrimLeft(k, "-")
		switch x := v.(type) {
		case nil, bool, string:
			out[k] = x
		case map[string]any, []any:
			out[k] = x
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
