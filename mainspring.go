// Package mainspring runs a program's single entry-point routine: it parses
// the command line into a shared option store, invokes the routine once with
// positional arguments bound to its arity, and turns the outcome into a
// process exit status.
//
//	e := mainspring.New(mainspring.WithParser(set))
//	_ = e.Main(1, func(ctx context.Context, c *mainspring.Call) (any, error) {
//		return nil, greet(c.Arg(0).Or("world"), c.Options.Bool("loud"))
//	})
//	e.Go(context.Background(), os.Args[1:])
package mainspring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"

	"github.com/flarebyte/mainspring/flags"
	"github.com/flarebyte/mainspring/logging"
	"github.com/flarebyte/mainspring/options"
)

// DebugEnv enables stack traces for panicking routines when non-empty.
const DebugEnv = "MAINSPRING_DEBUG"

// Parser consumes the raw argument vector, records option values in store
// and returns the remaining positional arguments.
type Parser interface {
	Parse(argv []string, store *options.Store) ([]string, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(argv []string, store *options.Store) ([]string, error)

// Parse calls f.
func (f ParserFunc) Parse(argv []string, store *options.Store) ([]string, error) {
	return f(argv, store)
}

// State is the engine's position in its single run.
type State int

const (
	Idle State = iota
	Parsing
	Invoking
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Parsing:
		return "parsing"
	case Invoking:
		return "invoking"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Engine drives one run of one routine. It is not safe for concurrent use.
type Engine struct {
	parser  Parser
	options *options.Store
	logger  *slog.Logger
	errorf  func(msg string)
	exit    func(code int)
	debug   bool

	routine *Routine
	state   State
}

// Option configures an Engine.
type Option func(*Engine)

// WithParser sets the command-line parser. The default is an empty
// flags.Set, which accepts only positional arguments and --help.
func WithParser(p Parser) Option { return func(e *Engine) { e.parser = p } }

// WithOptions shares an existing store with the engine.
func WithOptions(s *options.Store) Option { return func(e *Engine) { e.options = s } }

// WithLogger sets the logger handed to the routine. Unless WithErrorFunc is
// also given, failures are reported with this logger at error level.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithErrorFunc sets the error channel receiving failure messages.
func WithErrorFunc(f func(msg string)) Option { return func(e *Engine) { e.errorf = f } }

// WithExitFunc replaces os.Exit as used by Go.
func WithExitFunc(f func(code int)) Option { return func(e *Engine) { e.exit = f } }

// WithDebug logs stack traces of panicking routines at debug level.
func WithDebug(on bool) Option { return func(e *Engine) { e.debug = on } }

// New returns an idle engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		exit:  os.Exit,
		debug: os.Getenv(DebugEnv) != "",
	}
	for _, o := range opts {
		o(e)
	}
	if e.parser == nil {
		e.parser = flags.New(filepath.Base(os.Args[0]))
	}
	if e.options == nil {
		e.options = options.New()
	}
	if e.logger == nil {
		e.logger = logging.New(slog.LevelInfo, "text", os.Stderr)
	}
	if e.errorf == nil {
		e.errorf = logging.ErrorFunc(e.logger)
	}
	return e
}

// Options returns the store shared with the parser and the routine.
func (e *Engine) Options() *options.Store { return e.options }

// State reports where the engine is in its run.
func (e *Engine) State() State { return e.state }

// Register sets the routine to run. A later registration replaces an earlier
// one until Run starts; after that ErrStarted is returned.
func (e *Engine) Register(r Routine) error {
	if e.state != Idle {
		return ErrStarted
	}
	if r.Run == nil {
		return ErrNoRoutine
	}
	e.routine = &r
	return nil
}

// Main registers a fixed-arity routine.
func (e *Engine) Main(arity int, fn Func) error {
	return e.Register(Main(arity, fn))
}

// Go runs the routine and terminates the process with the resulting status.
func (e *Engine) Go(ctx context.Context, argv []string) {
	e.exit(e.Run(ctx, argv))
}

// Run parses argv, invokes the routine and returns the exit status without
// exiting. An engine runs once; later calls report an error and return
// ExitSoftware.
func (e *Engine) Run(ctx context.Context, argv []string) int {
	if e.state != Idle {
		e.errorf("engine already ran")
		return ExitSoftware
	}
	if e.routine == nil {
		e.state = Terminated
		e.errorf(ErrNoRoutine.Error())
		return ExitSoftware
	}

	e.state = Parsing
	positional, err := e.parser.Parse(argv, e.options)
	if err != nil {
		e.state = Terminated
		if errors.Is(err, flags.ErrHelp) || errors.Is(err, flags.ErrVersion) {
			return ExitOK
		}
		e.logger.Debug("command line rejected", "error", err)
		return ExitParse
	}

	e.state = Invoking
	call := bind(*e.routine, positional)
	call.Options = e.options
	call.Logger = e.logger
	code := e.invoke(ctx, call)
	e.state = Terminated
	return code
}

func (e *Engine) invoke(ctx context.Context, call *Call) (code int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok {
			err = panicError{value: r}
		}
		if e.debug {
			e.logger.Debug("routine panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
		code = e.fail(err)
	}()
	v, err := e.routine.Run(ctx, call)
	if err != nil {
		return e.fail(err)
	}
	return statusOf(v)
}

// fail sends the failure message to the error channel, even when it is
// empty, and returns the status.
func (e *Engine) fail(err error) int {
	code, msg := classify(err)
	e.errorf(msg)
	return code
}

// statusOf returns v itself for any integer kind and ExitOK otherwise.
func statusOf(v any) int {
	if v == nil {
		return ExitOK
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	}
	return ExitOK
}
