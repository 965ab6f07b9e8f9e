// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
)

type loadEntry struct {
	globals starlark.StringDict
	err     error
}

// loader loads Starlark modules relative to the config directory.
type loader struct {
	ctx         context.Context
	dir         string
	predeclared starlark.StringDict

	// module name -> entry. nil entry means loading is in progress.
	cache map[string]*loadEntry
}

// Load loads a Starlark module.
func (l *loader) Load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	fname := module
	if !path.IsAbs(fname) {
		fname = path.Join(l.dir, module)
	}
	e, ok := l.cache[fname]
	if ok {
		if e == nil {
			return nil, fmt.Errorf("cycle in load graph: %s", fname)
		}
		return e.globals, e.err
	}
	log.Debugf("load %s", fname)
	l.cache[fname] = nil
	buf, err := os.ReadFile(fname)
	if err != nil {
		err = fmt.Errorf("failed to load %s: %w", module, err)
		l.cache[fname] = &loadEntry{err: err}
		return nil, err
	}
	t := &starlark.Thread{
		Name: "module " + module,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: l.Load,
	}
	globals, err := starlark.ExecFile(t, fname, buf, l.predeclared)
	l.cache[fname] = &loadEntry{globals: globals, err: err}
	return globals, err
}
