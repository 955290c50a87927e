package luaroutine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flarebyte/mainspring"
	"github.com/flarebyte/mainspring/logging"
	"github.com/flarebyte/mainspring/options"
	lua "github.com/yuin/gopher-lua"
)

// exitMarker tags error tables raised by exit_now.
const exitMarker = "__exit"

// optionsProxy returns an empty table whose reads and writes go to store.
func optionsProxy(L *lua.LState, store *options.Store) *lua.LTable {
	proxy := L.NewTable()
	mt := L.NewTable()
	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		v, _ := store.Get(L.CheckString(2))
		L.Push(toLValue(L, v))
		return 1
	}))
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		val := L.Get(3)
		if val == lua.LNil {
			store.Delete(key)
			return 0
		}
		store.Set(key, fromLValue(val))
		return 0
	}))
	L.SetMetatable(proxy, mt)
	return proxy
}

// failureTable builds the error object for exit_now and app_error. Both
// accept (code, message) or just (message), which implies code 1.
func failureTable(L *lua.LState, exit bool) *lua.LTable {
	code := 1
	msg := ""
	if s, ok := L.Get(1).(lua.LString); ok {
		msg = string(s)
	} else {
		code = L.CheckInt(1)
		msg = L.OptString(2, "")
	}
	t := L.NewTable()
	t.RawSetString("code", lua.LNumber(code))
	t.RawSetString("message", lua.LString(msg))
	if exit {
		t.RawSetString(exitMarker, lua.LTrue)
	}
	return t
}

func luaExitNow(L *lua.LState) int {
	L.Error(failureTable(L, true), 0)
	return 0
}

func luaAppError(L *lua.LState) int {
	L.Error(failureTable(L, false), 0)
	return 0
}

func logTable(L *lua.LState, logger *slog.Logger) *lua.LTable {
	t := L.NewTable()
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"fatal": logging.LevelFatal,
	}
	for name, level := range levels {
		t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			msg := L.CheckString(1)
			if logger == nil {
				return 0
			}
			ctx := L.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger.Log(ctx, level, msg)
			return 0
		}))
	}
	return t
}

// translateError maps a raised Lua value to the engine's failure kinds.
func translateError(err error) error {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) || apiErr.Object == nil {
		return err
	}
	t, ok := apiErr.Object.(*lua.LTable)
	if !ok {
		return errors.New(apiErr.Object.String())
	}
	msg := ""
	if s, ok := t.RawGetString("message").(lua.LString); ok {
		msg = string(s)
	}
	code, hasCode := t.RawGetString("code").(lua.LNumber)
	switch {
	case lua.LVAsBool(t.RawGetString(exitMarker)):
		return mainspring.ExitNow(int(code), msg)
	case hasCode:
		return mainspring.NewError(int(code), msg)
	case msg != "":
		return errors.New(msg)
	default:
		return errors.New("lua error object")
	}
}
