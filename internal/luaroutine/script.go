// Package luaroutine runs a Lua script's global main function as a
// mainspring routine. The routine's arity is read from main's prototype, so
// `function main(a, b)` binds two positional arguments and
// `function main(a, ...)` binds one plus the rest.
package luaroutine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flarebyte/mainspring"
	lua "github.com/yuin/gopher-lua"
)

// Script is a loaded Lua program ready to be run once.
type Script struct {
	Path     string
	Arity    int
	Variadic bool

	cfg  Sandbox
	L    *lua.LState
	main *lua.LFunction
}

// Compile loads the script at path, runs its top-level chunk and looks up
// the global main function.
func Compile(path string, cfg Sandbox) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return CompileString(filepath.Base(path), data, cfg)
}

// CompileString is Compile for in-memory source; name is the chunk name used
// in Lua error positions.
func CompileString(name string, src []byte, cfg Sandbox) (*Script, error) {
	L := newSandboxState(cfg)
	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("invalid script: %v", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("script init failed: %v", err)
	}
	main, ok := L.GetGlobal("main").(*lua.LFunction)
	if !ok || main.IsG || main.Proto == nil {
		L.Close()
		return nil, errors.New("script must define a global function main")
	}
	return &Script{
		Path:     name,
		Arity:    int(main.Proto.NumParameters),
		Variadic: main.Proto.IsVarArg != 0,
		cfg:      cfg,
		L:        L,
		main:     main,
	}, nil
}

// Close releases the Lua state. It is safe to call more than once.
func (s *Script) Close() {
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}

// Routine returns the engine routine calling main. The Lua state is closed
// when the routine returns.
func (s *Script) Routine() mainspring.Routine {
	return mainspring.Routine{Arity: s.Arity, Variadic: s.Variadic, Run: s.run}
}

func (s *Script) run(ctx context.Context, call *mainspring.Call) (any, error) {
	if s.L == nil {
		return nil, errors.New("script already ran")
	}
	defer s.Close()
	L := s.L

	runCtx := ctx
	if s.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	L.SetContext(runCtx)

	L.SetGlobal("options", optionsProxy(L, call.Options))
	L.SetGlobal("args", toLValue(L, call.Positional))
	L.SetGlobal("log", logTable(L, call.Logger))
	L.SetGlobal("exit_now", L.NewFunction(luaExitNow))
	L.SetGlobal("app_error", L.NewFunction(luaAppError))

	params := make([]lua.LValue, 0, len(call.Args)+len(call.Rest))
	for _, a := range call.Args {
		if v, ok := a.Value(); ok {
			params = append(params, lua.LString(v))
		} else {
			params = append(params, lua.LNil)
		}
	}
	for _, r := range call.Rest {
		params = append(params, lua.LString(r))
	}

	err := L.CallByParam(lua.P{Fn: s.main, NRet: 1, Protect: true}, params...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.New("sandbox timeout")
		}
		return nil, translateError(err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return fromLValue(ret), nil
}
