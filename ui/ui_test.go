// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.chromium.org/infra/build/incdeps/ui"
)

func TestStripANSIEscapeCodes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "foo\033",
			want: "foo",
		},
		{
			in:   "foo\033[",
			want: "foo",
		},
		{
			in:   ui.SGR(ui.Yellow, "ambiguous include") + " a.h",
			want: "ambiguous include a.h",
		},
		{
			in:   "\033[1mlib/src/a.cpp:\033[0m \033[0;1;35mwarning: \033[0munknown include\033[0m",
			want: "lib/src/a.cpp: warning: unknown include",
		},
	} {
		got := ui.StripANSIEscapeCodes(tc.in)
		if got != tc.want {
			t.Errorf("ui.StripANSIEscapeCodes(%q)=%q; want=%q", tc.in, got, tc.want)
		}
	}
}

func TestTermUIPrintLines(t *testing.T) {
	var buf bytes.Buffer
	u := ui.NewTermUI(&buf, 20)
	u.PrintLines("scan 1/2")
	u.PrintLines("scan 2/2")
	u.PrintLines("\n")
	u.PrintLines("a very long status line to be truncated")
	want := "scan 1/2" +
		"\r\033[Kscan 2/2" +
		"\n" +
		"a very long stat..."
	if got := buf.String(); got != want {
		t.Errorf("output=%q; want %q", got, want)
	}
}

func TestTermUIMessages(t *testing.T) {
	var buf bytes.Buffer
	u := ui.NewTermUI(&buf, 80)
	u.PrintLines("scanning")
	u.Warningf("unknown include %q", "zlib.h")
	u.Infof("done")
	want := "scanning" +
		"\r\033[K" + ui.SGR(ui.Yellow, `unknown include "zlib.h"`) + "\n" +
		"done\n"
	if got := buf.String(); got != want {
		t.Errorf("output=%q; want %q", got, want)
	}
}

func TestTermSpinner(t *testing.T) {
	var buf bytes.Buffer
	u := ui.NewTermUI(&buf, 80)
	s := u.NewSpinner()
	s.Start("loading %s", "tree")
	s.Done("%d files", 3)
	got := ui.StripANSIEscapeCodes(buf.String())
	if !strings.HasPrefix(got, "loading tree...") || !strings.HasSuffix(got, "loading tree 3 files\n") {
		t.Errorf("output=%q; want starting with %q and ending with %q", got, "loading tree...", "loading tree 3 files\n")
	}

	buf.Reset()
	s = u.NewSpinner()
	s.Start("config")
	s.Stop(errors.New("syntax error"))
	got = ui.StripANSIEscapeCodes(buf.String())
	if !strings.HasSuffix(got, "config failed syntax error\n") {
		t.Errorf("output=%q; want ending with %q", got, "config failed syntax error\n")
	}
}
