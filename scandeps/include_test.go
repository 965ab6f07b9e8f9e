// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import "testing"

func TestParseInclude(t *testing.T) {
	for _, tc := range []struct {
		in     string
		want   Include
		wantOK bool
	}{
		{in: "<foo.h>", want: Include{Text: "foo.h", Angle: true}, wantOK: true},
		{in: `"foo/bar.h"`, want: Include{Text: "foo/bar.h"}, wantOK: true},
		{in: "foo.h"},
		{in: `"foo.h>`},
		{in: "<>"},
	} {
		got, ok := ParseInclude(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseInclude(%q)=%v, %t; want %v, %t", tc.in, got, ok, tc.want, tc.wantOK)
		}
		if ok && got.String() != tc.in {
			t.Errorf("ParseInclude(%q).String()=%q; want %q", tc.in, got.String(), tc.in)
		}
	}
}

func TestIsCode(t *testing.T) {
	for _, tc := range []struct {
		fname    string
		code, cu bool
	}{
		{fname: "a/b.cpp", code: true, cu: true},
		{fname: "a/b.C", code: true, cu: true},
		{fname: "a/b.mm", code: true, cu: true},
		{fname: "a/b.h", code: true},
		{fname: "a/b.H", code: true},
		{fname: "a/b.inc", code: true},
		{fname: "a/b.tcc", code: true},
		{fname: "a/b.txt"},
		{fname: "a.dir/Makefile"},
		{fname: "CMakeLists.txt"},
	} {
		if got := IsCode(tc.fname); got != tc.code {
			t.Errorf("IsCode(%q)=%t; want %t", tc.fname, got, tc.code)
		}
		if got := IsCompilationUnit(tc.fname); got != tc.cu {
			t.Errorf("IsCompilationUnit(%q)=%t; want %t", tc.fname, got, tc.cu)
		}
	}
}

func TestKnownHeaders(t *testing.T) {
	k := NewKnownHeaders("zlib.h", "boost/")
	for _, tc := range []struct {
		text string
		want bool
	}{
		{text: "stdio.h", want: true},
		{text: "vector", want: true},
		{text: "sys/types.h", want: true},
		{text: "zlib.h", want: true},
		{text: "boost/optional.hpp", want: true},
		{text: "foo.h"},
		{text: "mylib/vector"},
	} {
		if got := k.IsKnown(tc.text); got != tc.want {
			t.Errorf("IsKnown(%q)=%t; want %t", tc.text, got, tc.want)
		}
	}
}
