// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import "strings"

// invalidPath marks a suffix shared by more than one file.
const invalidPath = "INVALID"

// lookupTable maps every lowercased path suffix to the file it identifies.
type lookupTable struct {
	// suffix -> real path, or invalidPath.
	suffixToPath map[string]string

	// suffix -> all conflicting real paths.
	collisions map[string]Set[string]
}

// buildLookupTable registers each path under every tail that starts
// just after a '/', e.g. "lib/include/a/b.h" as "include/a/b.h",
// "a/b.h" and "b.h".
// A suffix claimed by two files becomes invalidPath and stays so.
func buildLookupTable(files []File) *lookupTable {
	t := &lookupTable{
		suffixToPath: make(map[string]string),
		collisions:   make(map[string]Set[string]),
	}
	for i := range files {
		fname := files[i].Path
		lower := strings.ToLower(fname)
		for j := 1; j < len(lower); j++ {
			if lower[j] != '/' {
				continue
			}
			t.add(lower[j+1:], fname)
		}
	}
	return t
}

func (t *lookupTable) add(suffix, fname string) {
	ref, ok := t.suffixToPath[suffix]
	switch {
	case !ok:
		t.suffixToPath[suffix] = fname
	case ref == fname:
	default:
		c, ok := t.collisions[suffix]
		if !ok {
			c = make(Set[string])
			t.collisions[suffix] = c
		}
		c.Add(fname)
		if ref != invalidPath {
			c.Add(ref)
		}
		t.suffixToPath[suffix] = invalidPath
	}
}

// Collisions returns lowercased suffixes shared by more than one file,
// with the conflicting paths.
func (p *Project) Collisions() map[string][]string {
	if p.lookup == nil {
		return nil
	}
	m := make(map[string][]string, len(p.lookup.collisions))
	for k, v := range p.lookup.collisions {
		m[k] = v.Sorted()
	}
	return m
}

// LookupResult is how an include text resolves without a local match.
type LookupResult struct {
	// Text is the include text as given.
	Text string

	// Path is the resolved file path.
	Path string

	// Predefined is the name of the predefined component.
	Predefined string

	// Candidates are conflicting paths for an ambiguous include.
	Candidates []string

	// Known is true if the text is a known system/third-party header.
	Known bool
}

// Ambiguous reports whether the text matched more than one file.
func (r LookupResult) Ambiguous() bool {
	return len(r.Candidates) > 0
}

// Resolved reports whether the text resolved to a file or
// predefined component.
func (r LookupResult) Resolved() bool {
	return r.Path != "" || r.Predefined != ""
}

// Lookup resolves include text against the lookup table,
// as an include that has no local match.
func (p *Project) Lookup(text string) LookupResult {
	r := LookupResult{Text: text}
	lower := strings.ToLower(text)
	var fname string
	if p.lookup != nil {
		fname = p.lookup.suffixToPath[lower]
	}
	switch {
	case fname == invalidPath:
		r.Candidates = p.lookup.collisions[lower].Sorted()
	case p.opts.PredefinedComponents[lower] != "":
		r.Predefined = p.opts.PredefinedComponents[lower]
	case fname != "":
		r.Path = fname
	default:
		r.Known = p.isKnownHeader(text)
	}
	return r
}
