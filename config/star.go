// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"fmt"
	"runtime"

	starjson "go.starlark.net/lib/json"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

func builtinModule() starlark.StringDict {
	return starlark.StringDict{
		"json":   starjson.Module,
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"module": starlark.NewBuiltin("module", starlarkstruct.MakeModule),
	}
}

func starRuntime() starlark.Value {
	m := &starlarkstruct.Module{
		Name: "runtime",
		Members: starlark.StringDict{
			"num_cpu": starlark.MakeInt(runtime.NumCPU()),
			"os":      starlark.String(runtime.GOOS),
			"arch":    starlark.String(runtime.GOARCH),
		},
	}
	m.Freeze()
	return m
}

// Starlark value to access flags.
func starFlags(flags map[string]string) starlark.Value {
	dict := starlark.NewDict(len(flags))
	for k, v := range flags {
		dict.SetKey(starlark.String(k), starlark.String(v))
	}
	dict.Freeze()
	return dict
}

func unpackList(v starlark.Value) ([]string, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterator", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var list []string
	for iterator.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want string", elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}

func unpackDict(v starlark.Value) (map[string]string, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("got %v; want dict", v.Type())
	}
	m := make(map[string]string, dict.Len())
	for _, item := range dict.Items() {
		k, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("key %v; want string", item[0].Type())
		}
		s, ok := starlark.AsString(item[1])
		if !ok {
			return nil, fmt.Errorf("value of %q is %v; want string", k, item[1].Type())
		}
		m[k] = s
	}
	return m, nil
}
