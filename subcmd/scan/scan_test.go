// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/scandeps"
	"go.chromium.org/infra/build/incdeps/ui"
)

type fakeUI struct {
	msgs []string
}

func (f *fakeUI) PrintLines(msgs ...string) {}
func (f *fakeUI) NewSpinner() ui.Spinner    { return nil }

func (f *fakeUI) Infof(format string, args ...any) {
	f.msgs = append(f.msgs, "I "+ui.StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

func (f *fakeUI) Warningf(format string, args ...any) {
	f.msgs = append(f.msgs, "W "+ui.StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

func (f *fakeUI) Errorf(format string, args ...any) {
	f.msgs = append(f.msgs, "E "+ui.StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

func include(s string) scandeps.Include {
	inc, ok := scandeps.ParseInclude(s)
	if !ok {
		panic("bad include " + s)
	}
	return inc
}

func testProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.New(context.Background(), project.Entries{
		{Path: "a", Component: true},
		{Path: "a/include/a.h", Includes: []scandeps.Include{include("<b.h>")}},
		{Path: "a/x/h.h"},
		{Path: "a/y/h.h"},
		{Path: "b", Component: true},
		{Path: "b/include/b.h", Includes: []scandeps.Include{include("<a.h>")}},
		{Path: "b/src/b.cpp", Includes: []scandeps.Include{include("<h.h>"), include("<zlib.h>")}},
		{Path: "main.cpp"},
	}, project.Options{
		IsKnownHeader: scandeps.NewKnownHeaders().IsKnown,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReport(t *testing.T) {
	p := testProject(t)
	u := &fakeUI{}
	Report(u, p)
	want := []string{
		"W ambiguous include h.h could point to a/x/h.h a/y/h.h; included from b/src/b.cpp",
		"W unknown include zlib.h",
		"W found file main.cpp outside of any component",
		"E dependency cycle: a b",
	}
	if diff := cmp.Diff(want, u.msgs); diff != "" {
		t.Errorf("Report diff -want +got:\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	p := testProject(t)
	for _, tc := range []struct {
		name    string
		run     run
		wantErr bool
	}{
		{name: "default", run: run{}},
		{name: "ambiguous", run: run{failOnAmbiguous: true}, wantErr: true},
		{name: "unknown", run: run{failOnUnknown: true}, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run.check(p)
			if (err != nil) != tc.wantErr {
				t.Errorf("check(p)=%v; want err %t", err, tc.wantErr)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	p := testProject(t)
	var buf bytes.Buffer
	err := writeJSON(&buf, p)
	if err != nil {
		t.Fatalf("writeJSON(&buf, p)=%v; want nil", err)
	}
	var got project.Model
	err = json.Unmarshal(buf.Bytes(), &got)
	if err != nil {
		t.Fatalf("json.Unmarshal(%q)=%v", buf.String(), err)
	}
	if diff := cmp.Diff(p.Model(), got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("model diff -want +got:\n%s", diff)
	}
}

func TestOutputFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "out.txt")
	err := Output(fname, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "hello")
		return err
	})
	if err != nil {
		t.Fatalf("Output(%q, fn)=%v; want nil", fname, err)
	}
	got, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello\n" {
		t.Errorf("%s=%q; want %q", fname, got, "hello\n")
	}
}
