package repo

import (
	"context"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	luaTimeout          = 500 * time.Millisecond
	sandboxTimeoutError = "lua filter timed out"
)

// newSandboxState builds a restricted Lua state: only the base, string, table
// and math libraries are opened, so predicates cannot touch the filesystem,
// the network or the process environment.
func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: 4096,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}

func isLuaTimeout(err error) bool {
	if err == nil {
		return false
	}
	if err == context.DeadlineExceeded {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadline") || strings.Contains(msg, "context canceled")
}

// toLValue converts a Go value to a Lua value owned by L.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		if x {
			return lua.LTrue
		}
		return lua.LFalse
	case int:
		return lua.LNumber(float64(x))
	case float64:
		return lua.LNumber(x)
	case map[string]string:
		tbl := L.NewTable()
		for k, v2 := range x {
			tbl.RawSetString(k, lua.LString(v2))
		}
		return tbl
	case []string:
		tbl := L.NewTable()
		for i, v2 := range x {
			tbl.RawSetInt(i+1, lua.LString(v2))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// runSandboxed evaluates code with the given globals and returns its single
// result.
func runSandboxed(code string, globals map[string]any) (lua.LValue, error) {
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)

	for k, v := range globals {
		L.SetGlobal(k, toLValue(L, v))
	}

	fn, err := L.LoadString(code)
	if err != nil {
		return lua.LNil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isLuaTimeout(err) {
			return lua.LNil, errLuaTimeout
		}
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}
