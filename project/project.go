// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package project reconstructs the build structure of a C/C++ tree.
//
// It resolves raw include directives of every file to the files they
// refer to, and derives per-component dependencies (public or private)
// and include search paths.
//
// Reload runs the following phases in order:
//
//   - populate the file and component tables from a Source.
//   - build the include lookup table from every path suffix.
//   - resolve includes to dependencies.
//   - propagate external visibility in each component.
//   - extract public dependencies and component types.
//   - extract include paths.
//   - build the pipeline.
//
// Unresolved or ambiguous includes are never errors; they are recorded
// in the diagnostic fields of Project.
package project

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
	"go.chromium.org/infra/build/incdeps/scandeps"
)

// Entry is an entry of a tree in walk order.
type Entry struct {
	// Path is a slash separated path relative to the tree root.
	Path string

	// Component is true if Path is a directory forming a component.
	Component bool

	// Includes are raw includes of a code file.
	Includes []scandeps.Include
}

// Source enumerates component roots and code files of a tree.
// Component roots must be reported before files under them.
type Source interface {
	Walk(ctx context.Context, fn func(Entry) error) error
}

// Entries is a Source for a fixed list of entries.
type Entries []Entry

// Walk calls fn for each entry in order.
func (es Entries) Walk(ctx context.Context, fn func(Entry) error) error {
	for _, e := range es {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Options holds the policies injected into a Project.
type Options struct {
	// PredefinedComponents maps lowercased include text to
	// the name of an external component.
	PredefinedComponents map[string]string

	// IsKnownHeader reports whether raw include text is a known
	// system/third-party header.
	IsKnownHeader func(text string) bool

	// IsPackage reports whether a component root is under
	// a vendored/distributed packages directory.
	IsPackage func(root string) bool
}

// Project is the dependency model of a tree.
type Project struct {
	src  Source
	opts Options

	files      []File
	fileIndex  map[string]FileID
	components []Component
	compIndex  map[string]ComponentID
	predefined map[string]ComponentID // name -> id

	lookup *lookupTable

	// Unknown holds raw include texts that resolve to nothing
	// and are not known headers.
	Unknown Set[string]

	// Ambiguous maps lowercased include text that matched more than
	// one file to the paths of the including files, per occurrence.
	Ambiguous map[string][]string

	// Outside holds code files outside of any component.
	Outside []string

	// Pipeline holds components in dependency order.
	// Empty if there is a dependency cycle.
	Pipeline []ComponentID

	// Cycles holds component roots forming dependency cycles.
	Cycles [][]string
}

// New creates a project for src and loads it.
func New(ctx context.Context, src Source, opts Options) (*Project, error) {
	p := &Project{
		src:  src,
		opts: opts,
	}
	err := p.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) reset() {
	p.files = nil
	p.fileIndex = make(map[string]FileID)
	p.components = nil
	p.compIndex = make(map[string]ComponentID)
	p.predefined = make(map[string]ComponentID)
	p.lookup = nil
	p.Unknown = make(Set[string])
	p.Ambiguous = make(map[string][]string)
	p.Outside = nil
	p.Pipeline = nil
	p.Cycles = nil
}

// Reload rescans the source and recomputes the whole model.
// On error, the previous model is kept.
func (p *Project) Reload(ctx context.Context) error {
	next := &Project{
		src:  p.src,
		opts: p.opts,
	}
	err := next.load(ctx)
	if err != nil {
		return err
	}
	*p = *next
	return nil
}

func (p *Project) load(ctx context.Context) error {
	ctx = clog.NewSpan(ctx, uuid.New().String(), nil)
	started := time.Now()
	p.reset()

	err := p.src.Walk(ctx, p.add)
	if err != nil {
		return fmt.Errorf("failed to load file list: %w", err)
	}
	for _, fname := range p.Outside {
		clog.Warningf(ctx, "found file %s outside of any component", fname)
	}

	p.lookup = buildLookupTable(p.files)
	p.resolveIncludes(ctx)
	if len(p.Ambiguous) > 0 {
		keys := make([]string, 0, len(p.Ambiguous))
		for k := range p.Ambiguous {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			clog.Warningf(ctx, "ambiguous include %q could point to %q; included from %q", k, p.lookup.collisions[k].Sorted(), p.Ambiguous[k])
		}
	}
	n := p.propagateExternalIncludes()
	p.extractPublicDependencies()
	p.extractIncludePaths()
	p.buildPipeline(ctx)
	clog.Infof(ctx, "reload: %d components, %d files, %d propagated, %d ambiguous, %d unknown in %s",
		len(p.components), len(p.files), n, len(p.Ambiguous), len(p.Unknown), time.Since(started))
	return nil
}

func (p *Project) add(e Entry) error {
	if e.Component {
		p.addComponent(e.Path)
		return nil
	}
	p.addFile(e.Path, e.Includes)
	return nil
}

func (p *Project) addComponent(root string) ComponentID {
	if id, ok := p.compIndex[root]; ok {
		return id
	}
	id := ComponentID(len(p.components))
	p.components = append(p.components, newComponent(root))
	p.compIndex[root] = id
	return id
}

// componentFor returns the component whose root is the longest
// proper prefix of fname.
func (p *Project) componentFor(fname string) (ComponentID, bool) {
	for dir := path.Dir(fname); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if id, ok := p.compIndex[dir]; ok {
			return id, true
		}
	}
	return 0, false
}

func (p *Project) addFile(fname string, includes []scandeps.Include) (FileID, bool) {
	if id, ok := p.fileIndex[fname]; ok {
		return id, true
	}
	cid, ok := p.componentFor(fname)
	if !ok {
		p.Outside = append(p.Outside, fname)
		return 0, false
	}
	id := FileID(len(p.files))
	p.files = append(p.files, File{
		Path:         fname,
		Component:    cid,
		RawIncludes:  includes,
		Dependencies: make(Set[FileID]),
		IncludePaths: make(Set[string]),
	})
	p.fileIndex[fname] = id
	c := &p.components[cid]
	c.Files = append(c.Files, id)
	return id, true
}

// predefinedFor returns the predefined component for the lowercased
// include text, creating it on first use.
func (p *Project) predefinedFor(lower string) (ComponentID, bool) {
	name, ok := p.opts.PredefinedComponents[lower]
	if !ok {
		return 0, false
	}
	if id, ok := p.predefined[name]; ok {
		return id, true
	}
	id := ComponentID(len(p.components))
	c := newComponent("")
	c.Name = name
	c.Predefined = true
	c.Type = Library
	p.components = append(p.components, c)
	p.predefined[name] = id
	return id, true
}

func (p *Project) isKnownHeader(text string) bool {
	return p.opts.IsKnownHeader != nil && p.opts.IsKnownHeader(text)
}

func (p *Project) isPackage(root string) bool {
	return p.opts.IsPackage != nil && p.opts.IsPackage(root)
}

// NumFiles returns the number of files.
func (p *Project) NumFiles() int {
	return len(p.files)
}

// File returns the file for id.
func (p *Project) File(id FileID) *File {
	return &p.files[id]
}

// FileByPath returns the file id for the path.
func (p *Project) FileByPath(fname string) (FileID, bool) {
	id, ok := p.fileIndex[fname]
	return id, ok
}

// NumComponents returns the number of components, including
// predefined components in use.
func (p *Project) NumComponents() int {
	return len(p.components)
}

// Component returns the component for id.
func (p *Project) Component(id ComponentID) *Component {
	return &p.components[id]
}

// ComponentByRoot returns the component id for the root.
func (p *Project) ComponentByRoot(root string) (ComponentID, bool) {
	id, ok := p.compIndex[root]
	return id, ok
}

// ComponentOf returns the component owning the file.
func (p *Project) ComponentOf(id FileID) *Component {
	return &p.components[p.files[id].Component]
}

// sortedComponents returns component ids ordered by label.
func (p *Project) sortedComponents() []ComponentID {
	ids := make([]ComponentID, len(p.components))
	for i := range p.components {
		ids[i] = ComponentID(i)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := &p.components[ids[i]], &p.components[ids[j]]
		if a.Predefined != b.Predefined {
			return !a.Predefined
		}
		return a.Label() < b.Label()
	})
	return ids
}
