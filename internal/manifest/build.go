package manifest

import (
	"log/slog"

	"github.com/flarebyte/mainspring"
	"github.com/flarebyte/mainspring/defaults"
	"github.com/flarebyte/mainspring/flags"
	"github.com/flarebyte/mainspring/internal/luaroutine"
)

// FlagSet declares the manifest's flags and arguments on a new flags.Set.
// version is the resolved version string (empty for none). When the
// manifest asks for a log-level option, lv is wired to --log-level.
func (m *Manifest) FlagSet(version string, lv *slog.LevelVar, opts ...flags.SetOption) (*flags.Set, error) {
	set := flags.New(m.Name, opts...)
	set.Description(m.Description)
	for _, a := range m.Args {
		set.Arg(flags.ArgSpec{Name: a.Name, Optional: a.Optional, Many: a.Many, Usage: a.Usage})
	}
	if version != "" {
		if err := set.Version(version); err != nil {
			return nil, err
		}
	}
	if m.LogLevelOption && lv != nil {
		if err := set.LogLevel(lv); err != nil {
			return nil, err
		}
	}
	for _, f := range m.Flags {
		err := set.On(flags.Flag{
			Name:        f.Name,
			Short:       f.Short,
			Aliases:     f.Aliases,
			Value:       f.Value,
			Negatable:   f.Negatable,
			Placeholder: f.Placeholder,
			Usage:       f.Usage,
			Default:     f.Default,
		})
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Parser wraps set with the manifest's env and config-file defaults.
func (m *Manifest) Parser(set *flags.Set) mainspring.Parser {
	var p defaults.Parser = set
	if m.EnvDefaults != "" {
		p = defaults.FromEnv(m.EnvDefaults, p)
	}
	if m.ConfigDefaults != "" {
		p = defaults.FromFile(m.ConfigDefaults, p)
	}
	return p
}

// LuaSandbox returns the sandbox for the script, starting from
// luaroutine.DefaultSandbox.
func (m *Manifest) LuaSandbox() luaroutine.Sandbox {
	cfg := luaroutine.DefaultSandbox()
	if m.Sandbox == nil {
		return cfg
	}
	cfg.TimeoutMs = m.Sandbox.TimeoutMs
	if l := m.Sandbox.Libs; l != nil {
		set := func(dst *bool, v *bool) {
			if v != nil {
				*dst = *v
			}
		}
		set(&cfg.Libs.Base, l.Base)
		set(&cfg.Libs.Table, l.Table)
		set(&cfg.Libs.String, l.String)
		set(&cfg.Libs.Math, l.Math)
		set(&cfg.Libs.OS, l.OS)
	}
	return cfg
}
