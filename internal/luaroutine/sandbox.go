package luaroutine

import (
	lua "github.com/yuin/gopher-lua"
)

// Libs selects the standard Lua libraries opened for a script.
type Libs struct {
	Base   bool
	Table  bool
	String bool
	Math   bool
	OS     bool
}

// Sandbox limits what a script may use.
type Sandbox struct {
	// TimeoutMs bounds the call to main. Zero means no limit.
	TimeoutMs int
	Libs      Libs
}

// DefaultSandbox opens base, table, string and math, with no timeout.
func DefaultSandbox() Sandbox {
	return Sandbox{
		Libs: Libs{
			Base:   true,
			Table:  true,
			String: true,
			Math:   true,
		},
	}
}

func newSandboxState(cfg Sandbox) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		IncludeGoStackTrace: false,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	if cfg.Libs.Base {
		openLib(lua.BaseLibName, lua.OpenBase)
	}
	if cfg.Libs.Table {
		openLib(lua.TabLibName, lua.OpenTable)
	}
	if cfg.Libs.String {
		openLib(lua.StringLibName, lua.OpenString)
	}
	if cfg.Libs.Math {
		openLib(lua.MathLibName, lua.OpenMath)
	}
	if cfg.Libs.OS {
		openLib(lua.OsLibName, lua.OpenOs)
	}
	return L
}
