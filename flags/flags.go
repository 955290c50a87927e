// Package flags is the command-line parser used by mainspring programs. It
// wraps a pflag.FlagSet and writes every recognised flag into an
// options.Store.
package flags

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/flarebyte/mainspring/logging"
	"github.com/flarebyte/mainspring/options"
	"github.com/spf13/pflag"
)

var (
	// ErrHelp is returned by Parse after usage was printed for -h/--help.
	ErrHelp = errors.New("help requested")
	// ErrVersion is returned by Parse after the version line was printed.
	ErrVersion = errors.New("version requested")
)

// Handler receives the raw flag value ("true"/"false" for switches). When a
// Flag has a handler, nothing is stored automatically; otherwise the value is
// stored under the canonical name, the short name and every alias.
type Handler func(value string, store *options.Store) error

// Flag declares one command-line flag.
type Flag struct {
	// Name is the canonical long name and the store key.
	Name string
	// Short is an optional one-letter alias.
	Short string
	// Aliases are extra long names writing to the same key.
	Aliases []string
	// Value marks a flag that takes an argument; otherwise it is a switch.
	Value bool
	// Negatable switches also accept --no-<name>, which stores false.
	Negatable bool
	// Placeholder names the argument in usage text (default VALUE).
	Placeholder string
	Usage       string
	// Default is seeded into the store before parsing unless the key is
	// already set.
	Default any
	Handler Handler
}

// ArgSpec documents a positional argument. It only affects usage text.
type ArgSpec struct {
	Name     string
	Optional bool
	Many     bool
	Usage    string
}

// Set is a parser for one program's command line.
type Set struct {
	name        string
	description string
	version     string
	out         io.Writer
	errOut      io.Writer

	fs      *pflag.FlagSet
	flags   []Flag
	args    []ArgSpec
	store   *options.Store
	showVer bool
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithOutput sets the writers for usage/version output and parse errors.
func WithOutput(out, errOut io.Writer) SetOption {
	return func(s *Set) {
		s.out = out
		s.errOut = errOut
	}
}

// New returns an empty Set for the program called name.
func New(name string, opts ...SetOption) *Set {
	s := &Set{
		name:   name,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, o := range opts {
		o(s)
	}
	s.fs = pflag.NewFlagSet(name, pflag.ContinueOnError)
	s.fs.SetOutput(io.Discard)
	s.fs.Usage = func() {}
	s.fs.SortFlags = false
	return s
}

// Description sets the paragraph shown under the usage line.
func (s *Set) Description(text string) { s.description = text }

// Arg documents a positional argument.
func (s *Set) Arg(a ArgSpec) { s.args = append(s.args, a) }

// Version adds a --version switch printing "<name> <version>".
func (s *Set) Version(version string) error {
	s.version = version
	return s.On(Flag{
		Name:  "version",
		Usage: "Show version",
		Handler: func(value string, _ *options.Store) error {
			s.showVer = value == "true"
			return nil
		},
	})
}

// LogLevel adds a --log-level flag that adjusts lv and records the chosen
// level under the "log-level" key.
func (s *Set) LogLevel(lv *slog.LevelVar) error {
	return s.On(Flag{
		Name:        "log-level",
		Value:       true,
		Placeholder: "LEVEL",
		Usage:       "Set the logging level (debug|info|warn|error|fatal)",
		Default:     logging.LevelName(lv.Level()),
		Handler: func(value string, store *options.Store) error {
			l, err := logging.ParseLevel(value)
			if err != nil {
				return err
			}
			lv.Set(l)
			store.Set("log-level", logging.LevelName(l))
			return nil
		},
	})
}

// On declares a flag.
func (s *Set) On(f Flag) error {
	f.Name = strings.TrimLeft(f.Name, "-")
	if f.Name == "" {
		return errors.New("flag name is required")
	}
	f.Short = strings.TrimLeft(f.Short, "-")
	if len(f.Short) > 1 {
		return fmt.Errorf("flag %s: short alias must be one letter: %q", f.Name, f.Short)
	}
	names := append([]string{f.Name}, f.Aliases...)
	for i, n := range names {
		n = strings.TrimLeft(n, "-")
		names[i] = n
		if s.fs.Lookup(n) != nil {
			return fmt.Errorf("flag redefined: %s", n)
		}
	}
	if f.Short != "" && s.fs.ShorthandLookup(f.Short) != nil {
		return fmt.Errorf("flag shorthand redefined: %s", f.Short)
	}
	f.Aliases = names[1:]
	if f.Negatable {
		if f.Value {
			return fmt.Errorf("flag %s: only switches can be negatable", f.Name)
		}
		if s.fs.Lookup("no-"+f.Name) != nil {
			return fmt.Errorf("flag redefined: no-%s", f.Name)
		}
	}

	v := &flagValue{set: s, spec: f}
	for i, n := range names {
		short := ""
		if i == 0 {
			short = f.Short
		}
		pf := s.fs.VarPF(v, n, short, f.Usage)
		if !f.Value {
			pf.NoOptDefVal = "true"
		}
		if i > 0 {
			pf.Hidden = true
		}
	}
	if f.Negatable {
		pf := s.fs.VarPF(&negatedValue{flag: v}, "no-"+f.Name, "", "")
		pf.NoOptDefVal = "true"
		pf.Hidden = true
	}
	s.flags = append(s.flags, f)
	return nil
}

// Parse consumes argv, writing flag values into store, and returns the
// positional arguments in command-line order. Parse errors are printed with
// the usage text to the error writer.
func (s *Set) Parse(argv []string, store *options.Store) ([]string, error) {
	s.store = store
	s.showVer = false
	for _, f := range s.flags {
		if f.Default != nil && !store.Has(f.Name) {
			store.Set(f.Name, f.Default)
		}
		// Keys seeded from a config file or default are mirrored to the
		// short name and aliases so every spelling reads the same value.
		if v, ok := store.Get(f.Name); ok && f.Handler == nil {
			for _, k := range storeKeys(f)[1:] {
				if !store.Has(k) {
					store.Set(k, v)
				}
			}
		}
	}
	if err := s.fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			_, _ = fmt.Fprint(s.out, s.Usage())
			return nil, ErrHelp
		}
		_, _ = fmt.Fprintf(s.errOut, "error: %v\n\n", err)
		_, _ = fmt.Fprint(s.errOut, s.Usage())
		return nil, err
	}
	if s.showVer {
		_, _ = fmt.Fprintf(s.out, "%s %s\n", s.name, s.version)
		return nil, ErrVersion
	}
	return s.fs.Args(), nil
}

type flagValue struct {
	set  *Set
	spec Flag
	text string
}

func (v *flagValue) String() string { return v.text }

func (v *flagValue) Type() string {
	if v.spec.Value {
		return "string"
	}
	return "bool"
}

func (v *flagValue) Set(raw string) error {
	var stored any = raw
	if !v.spec.Value {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean value %q", raw)
		}
		raw = strconv.FormatBool(b)
		stored = b
	}
	v.text = raw
	if v.spec.Handler != nil {
		return v.spec.Handler(raw, v.set.store)
	}
	for _, k := range storeKeys(v.spec) {
		v.set.store.Set(k, stored)
	}
	return nil
}

// storeKeys lists the keys a handler-less flag writes, canonical name first.
func storeKeys(f Flag) []string {
	keys := make([]string, 0, len(f.Aliases)+2)
	keys = append(keys, f.Name)
	if f.Short != "" {
		keys = append(keys, f.Short)
	}
	return append(keys, f.Aliases...)
}

// negatedValue backs --no-<name>: setting it true sets the switch false.
type negatedValue struct {
	flag *flagValue
}

func (n *negatedValue) String() string { return "" }
func (n *negatedValue) Type() string   { return "bool" }

func (n *negatedValue) Set(raw string) error {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid boolean value %q", raw)
	}
	return n.flag.Set(strconv.FormatBool(!b))
}
