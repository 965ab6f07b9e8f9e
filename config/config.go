// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides the project config for `incdeps`.
//
// The config is a Starlark file (default `.incdeps.star` at the tree root)
// that defines `init(ctx)` returning a module:
//
//	def init(ctx):
//	    return module(
//	        "config",
//	        blacklist = ["third_party/", "out"],
//	        packages = ["packages"],
//	        predefined_components = {"sdl2/sdl.h": "SDL2"},
//	        known_headers = ["zlib.h", "boost/"],
//	    )
//
// Every field is optional.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// DefaultFilename is the config filename looked up at the tree root.
const DefaultFilename = ".incdeps.star"

const configEntryPoint = "init"

// Config is a project config.
type Config struct {
	// Blacklist holds relative path prefixes or exact filenames
	// to skip in the tree walk.
	Blacklist []string

	// Packages holds top-level path segments denoting vendored or
	// distributed packages. Components under them are libraries.
	Packages []string

	// PredefinedComponents maps lowercased include text to
	// the name of an external component.
	PredefinedComponents map[string]string

	// KnownHeaders holds extra known system/third-party headers.
	// An entry ending with "/" matches as a prefix.
	KnownHeaders []string
}

// Default returns the config used when no config file exists.
func Default() *Config {
	return &Config{
		Packages: []string{"packages"},
		PredefinedComponents: map[string]string{
			"sdl2/sdl.h":        "SDL2",
			"sdl2/sdl_opengl.h": "GL",
			"gl/glew.h":         "GLEW",
		},
	}
}

// IsBlacklisted reports whether rel (slash separated, relative to the
// tree root) should be skipped.
func (cfg *Config) IsBlacklisted(rel string) bool {
	base := path.Base(rel)
	for _, s := range cfg.Blacklist {
		if strings.HasPrefix(rel, s) {
			return true
		}
		if s == base {
			return true
		}
	}
	return false
}

// IsPackage reports whether the component root is under a packages marker.
func (cfg *Config) IsPackage(root string) bool {
	first, _, _ := strings.Cut(root, "/")
	return slices.Contains(cfg.Packages, first)
}

// HandlerError is an error raised by the Starlark config.
type HandlerError struct {
	entry string
	fn    starlark.Value
	err   *starlark.EvalError
}

func (e HandlerError) Error() string {
	if fn, ok := e.fn.(*starlark.Function); ok {
		return fmt.Sprintf("failed to run %s[%s:%s]: %v", e.entry, fn.Position(), fn.Name(), e.err)
	}
	return fmt.Sprintf("failed to run %s[%s]: %v", e.entry, e.fn, e.err)
}

// Backtrace returns the Starlark call stack.
func (e HandlerError) Backtrace() string {
	return e.err.CallStack.String()
}

func (e HandlerError) Unwrap() error {
	return e.err
}

// Load loads the config from fname, evaluating it with flags.
// If fname doesn't exist, it returns Default().
func Load(ctx context.Context, fname string, flags map[string]string) (*Config, error) {
	buf, err := os.ReadFile(fname)
	if errors.Is(err, fs.ErrNotExist) {
		log.Infof("no config %s; use default", fname)
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(ctx, fname, buf, flags)
}

// Parse evaluates the config source buf.
// load() statements are resolved relative to the directory of fname.
func Parse(ctx context.Context, fname string, buf []byte, flags map[string]string) (*Config, error) {
	loader := &loader{
		ctx:         ctx,
		dir:         path.Dir(fname),
		predeclared: builtinModule(),
		cache:       make(map[string]*loadEntry),
	}
	thread := &starlark.Thread{
		Name: "load",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: loader.Load,
	}
	globals, err := starlark.ExecFile(thread, fname, buf, loader.predeclared)
	if err != nil {
		log.Warnf("thread:%s failed to exec file %s: %v", thread.Name, fname, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, err
	}
	fun, ok := globals[configEntryPoint]
	if !ok {
		return nil, fmt.Errorf("%s is not defined in %s", configEntryPoint, fname)
	}
	if _, ok := fun.(starlark.Callable); !ok {
		return nil, fmt.Errorf("%s %s is not callable in %s", configEntryPoint, fun.Type(), fname)
	}

	thread = &starlark.Thread{
		Name: configEntryPoint,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load is not allowed in %s", configEntryPoint)
		},
	}
	hctx := starlarkstruct.FromStringDict(starlark.String("ctx"), map[string]starlark.Value{
		"flags":   starFlags(flags),
		"runtime": starRuntime(),
	})
	ret, err := starlark.Call(thread, fun, []starlark.Value{hctx}, nil)
	if err != nil {
		log.Warnf("thread:%s failed to run %s: %v", thread.Name, configEntryPoint, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
			return nil, HandlerError{entry: configEntryPoint, fn: fun, err: eerr}
		}
		return nil, fmt.Errorf("failed to run %s: %w", configEntryPoint, err)
	}
	m, ok := ret.(*starlarkstruct.Module)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want module", configEntryPoint, ret.Type())
	}
	return fromModule(m)
}

func fromModule(m *starlarkstruct.Module) (*Config, error) {
	cfg := Default()
	var err error
	if v, ok := m.Members["blacklist"]; ok {
		cfg.Blacklist, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad blacklist: %w", err)
		}
	}
	if v, ok := m.Members["packages"]; ok {
		cfg.Packages, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad packages: %w", err)
		}
	}
	if v, ok := m.Members["predefined_components"]; ok {
		pc, err := unpackDict(v)
		if err != nil {
			return nil, fmt.Errorf("bad predefined_components: %w", err)
		}
		cfg.PredefinedComponents = make(map[string]string, len(pc))
		for k, name := range pc {
			cfg.PredefinedComponents[strings.ToLower(k)] = name
		}
	}
	if v, ok := m.Members["known_headers"]; ok {
		cfg.KnownHeaders, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad known_headers: %w", err)
		}
	}
	for name := range m.Members {
		switch name {
		case "blacklist", "packages", "predefined_components", "known_headers":
		default:
			log.Warnf("unknown config field %q", name)
		}
	}
	return cfg, nil
}
