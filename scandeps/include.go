// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import "strings"

// Include is a raw include directive as written in source.
type Include struct {
	// Text is the path between the delimiters.
	Text string `json:"text"`
	// Angle is true for <...> form, false for "..." form.
	Angle bool `json:"angle,omitempty"`
}

// String returns include as written in source, e.g. `<foo.h>` or `"foo.h"`.
func (inc Include) String() string {
	if inc.Angle {
		return "<" + inc.Text + ">"
	}
	return `"` + inc.Text + `"`
}

// ParseInclude parses `<path>` or `"path"`.
func ParseInclude(s string) (Include, bool) {
	if len(s) < 3 {
		return Include{}, false
	}
	switch {
	case s[0] == '<' && s[len(s)-1] == '>':
		return Include{Text: s[1 : len(s)-1], Angle: true}, true
	case s[0] == '"' && s[len(s)-1] == '"':
		return Include{Text: s[1 : len(s)-1]}, true
	}
	return Include{}, false
}

var codeExts = map[string]bool{
	".c":   true,
	".C":   true,
	".cc":  true,
	".cpp": true,
	".m":   true,
	".mm":  true,
	".h":   true,
	".H":   true,
	".hpp": true,
	".hh":  true,
	".tcc": true,
	".ipp": true,
	".inc": true,
}

var compilationUnitExts = map[string]bool{
	".c":   true,
	".C":   true,
	".cc":  true,
	".cpp": true,
	".m":   true,
	".mm":  true,
}

func ext(fname string) string {
	i := strings.LastIndexAny(fname, "./")
	if i < 0 || fname[i] != '.' {
		return ""
	}
	return fname[i:]
}

// IsCode reports whether fname has a source or header extension.
func IsCode(fname string) bool {
	return codeExts[ext(fname)]
}

// IsCompilationUnit reports whether fname is compiled by itself.
func IsCompilationUnit(fname string) bool {
	return compilationUnitExts[ext(fname)]
}
