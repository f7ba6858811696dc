// Package preset loads effect settings from Lua preset files.
//
// A preset assigns a global table named modfx, or returns a table:
//
//	modfx = {
//	    type     = "chorus",
//	    waveform = "triangle",
//	    rate     = 0.4,   -- Hz
//	    depth    = 0.7,
//	    drywet   = 0.5,
//	    feedback = -0.2,
//	    offset   = 12,    -- chorus offset in ms
//	    bypass   = false,
//	}
//
// Keys that are missing keep the base value. List parameters accept a
// choice name or its zero-based index.
package preset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/cwbudde/algo-modfx/host"
	"github.com/mitchellh/go-homedir"
	lua "github.com/yuin/gopher-lua"
)

// GlobalName is the global a preset assigns.
const GlobalName = "modfx"

// ErrNoTable is returned when a preset neither assigns nor returns a table.
var ErrNoTable = errors.New("preset: no settings table")

// Keys maps preset table keys to parameters.
var Keys = map[string]host.ParamID{
	"drywet":   host.ParamDryWet,
	"rate":     host.ParamRate,
	"depth":    host.ParamDepth,
	"waveform": host.ParamWaveform,
	"feedback": host.ParamFeedback,
	"offset":   host.ParamChorusOffset,
	"type":     host.ParamEffectType,
	"bypass":   host.ParamBypass,
}

// Load evaluates the preset file at path on top of base. A leading ~ in
// path is expanded to the home directory.
func Load(ctx context.Context, path string, base host.Values) (host.Values, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return base, fmt.Errorf("preset: %w", err)
	}

	src, err := os.ReadFile(expanded)
	if err != nil {
		return base, fmt.Errorf("preset: %w", err)
	}

	return Parse(ctx, expanded, string(src), base)
}

// Parse evaluates preset source on top of base. name is used in error
// messages. base is returned unchanged on error.
func Parse(ctx context.Context, name, src string, base host.Values) (host.Values, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	if err := openLibs(L); err != nil {
		return base, fmt.Errorf("preset: %s: %w", name, err)
	}

	fn, err := L.LoadString(src)
	if err != nil {
		return base, fmt.Errorf("preset: %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return base, fmt.Errorf("preset: %s: %w", name, err)
	}

	tbl, ok := L.GetGlobal(GlobalName).(*lua.LTable)
	if !ok && L.GetTop() > 0 {
		tbl, ok = L.Get(-1).(*lua.LTable)
	}
	if !ok {
		return base, fmt.Errorf("%w in %s", ErrNoTable, name)
	}

	v, err := apply(tbl, base)
	if err != nil {
		return base, fmt.Errorf("preset: %s: %w", name, err)
	}
	return v, nil
}

// openLibs opens the libraries a preset may use. io and os stay closed.
func openLibs(L *lua.LState) error {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			return err
		}
	}
	return nil
}

func apply(tbl *lua.LTable, base host.Values) (host.Values, error) {
	v := base

	var unknown []string
	var firstErr error
	tbl.ForEach(func(k, lv lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			unknown = append(unknown, k.String())
			return
		}
		id, ok := Keys[string(key)]
		if !ok {
			unknown = append(unknown, string(key))
			return
		}
		if firstErr != nil {
			return
		}
		if err := setValue(&v, id, lv); err != nil {
			firstErr = fmt.Errorf("%s: %w", key, err)
		}
	})

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return base, fmt.Errorf("unknown keys %q", unknown)
	}
	if firstErr != nil {
		return base, firstErr
	}
	return v, nil
}

func setValue(v *host.Values, id host.ParamID, lv lua.LValue) error {
	d, err := host.Lookup(id)
	if err != nil {
		return err
	}

	switch x := lv.(type) {
	case lua.LNumber:
		return v.Set(id, float64(x))
	case lua.LBool:
		if d.Kind != host.KindToggle {
			return fmt.Errorf("boolean not allowed for %s", d.Name)
		}
		plain := 0.0
		if x {
			plain = 1
		}
		return v.Set(id, plain)
	case lua.LString:
		if d.Kind != host.KindList {
			return fmt.Errorf("string not allowed for %s", d.Name)
		}
		i, err := d.Choice(string(x))
		if err != nil {
			return err
		}
		return v.Set(id, float64(i))
	default:
		return fmt.Errorf("unsupported %s value for %s", lv.Type(), d.Name)
	}
}
