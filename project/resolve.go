// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"context"
	"path"
	"strings"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
)

// resolveIncludes maps raw includes of every file to dependencies.
//
// A quoted include relative to the including file's directory always
// wins and needs no include path. Otherwise the lowercased text is
// looked up in the suffix table; a cross-component hit marks the target
// as externally included and adds a private component dependency.
func (p *Project) resolveIncludes(ctx context.Context) {
	for i := range p.files {
		f := &p.files[i]
		for _, inc := range f.RawIncludes {
			if !inc.Angle {
				local := path.Join(path.Dir(f.Path), inc.Text)
				if id, ok := p.fileIndex[local]; ok {
					p.files[id].HasInclude = true
					f.Dependencies.Add(id)
					if log.V(2) {
						clog.Infof(ctx, "%s: %s -> %s (local)", f.Path, inc, local)
					}
					continue
				}
			}
			lower := strings.ToLower(inc.Text)
			fname := p.lookup.suffixToPath[lower]
			if fname == invalidPath {
				p.Ambiguous[lower] = append(p.Ambiguous[lower], f.Path)
				continue
			}
			if cid, ok := p.predefinedFor(lower); ok {
				p.components[f.Component].PrivDeps.Add(cid)
				continue
			}
			id, ok := p.fileIndex[fname]
			if !ok {
				if !p.isKnownHeader(inc.Text) {
					p.Unknown.Add(inc.Text)
				}
				continue
			}
			dep := &p.files[id]
			f.Dependencies.Add(id)
			root := p.components[dep.Component].Root
			if dir := includeDir(fname, inc.Text, root); dir != "" {
				dep.IncludePaths.Add(dir)
			}
			if f.Component != dep.Component {
				p.components[f.Component].PrivDeps.Add(dep.Component)
				dep.HasExternalInclude = true
			}
			dep.HasInclude = true
			if log.V(2) {
				clog.Infof(ctx, "%s: %s -> %s", f.Path, inc, fname)
			}
		}
	}
}

// includeDir returns the include path, relative to root, needed to
// reach fname as text.
// It is "." if the remaining prefix is the root itself, the part past
// the root if longer, and empty otherwise.
func includeDir(fname, text, root string) string {
	n := len(fname) - len(text) - 1
	if n < 0 {
		return ""
	}
	dir := fname[:n]
	switch {
	case len(dir) == len(root):
		return "."
	case len(dir) > len(root)+1:
		return dir[len(root)+1:]
	}
	return ""
}
