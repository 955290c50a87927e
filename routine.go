package mainspring

import (
	"context"
	"log/slog"

	"github.com/flarebyte/mainspring/options"
)

// Arg is one positional value bound to a routine parameter. The zero value
// is the absent marker used when the command line supplied too few values.
type Arg struct {
	value   string
	present bool
}

// Absent is the marker for a parameter with no command-line value.
var Absent = Arg{}

// Present wraps a supplied value.
func Present(s string) Arg { return Arg{value: s, present: true} }

// Value returns the value and whether it was supplied.
func (a Arg) Value() (string, bool) { return a.value, a.present }

// IsAbsent reports whether no value was supplied.
func (a Arg) IsAbsent() bool { return !a.present }

// String returns the value, or "" when absent.
func (a Arg) String() string { return a.value }

// Or returns the value, or def when absent.
func (a Arg) Or(def string) string {
	if !a.present {
		return def
	}
	return a.value
}

// Call is what a routine receives for its single invocation.
type Call struct {
	// Args has exactly Arity entries, padded with Absent.
	Args []Arg
	// Rest holds the values beyond Arity for variadic routines.
	Rest []string
	// Positional is every positional argument left by the parser.
	Positional []string
	Options    *options.Store
	Logger     *slog.Logger
}

// Arg returns the i-th bound argument, or Absent when out of range.
func (c *Call) Arg(i int) Arg {
	if i < 0 || i >= len(c.Args) {
		return Absent
	}
	return c.Args[i]
}

// Func is a routine body. An integer result is the exit status; any other
// result means success. A returned error is reported on the error channel.
type Func func(ctx context.Context, call *Call) (any, error)

// Routine is the program's single entry point.
type Routine struct {
	// Arity is the number of positional parameters bound into Call.Args.
	Arity int
	// Variadic routines also get the remaining values in Call.Rest.
	Variadic bool
	Run      Func
}

// Main builds a fixed-arity routine.
func Main(arity int, fn Func) Routine {
	return Routine{Arity: arity, Run: fn}
}

// bind maps positional arguments onto a routine's parameters.
func bind(r Routine, positional []string) *Call {
	n := r.Arity
	if n < 0 {
		n = 0
	}
	call := &Call{
		Args:       make([]Arg, n),
		Positional: append([]string(nil), positional...),
	}
	for i := 0; i < n && i < len(positional); i++ {
		call.Args[i] = Present(positional[i])
	}
	if r.Variadic && len(positional) > n {
		call.Rest = append([]string(nil), positional[n:]...)
	}
	return call
}
