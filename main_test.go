// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestApplicationCommands(t *testing.T) {
	app := getApplication(context.Background())
	seen := make(map[string]bool)
	for _, c := range app.GetCommands() {
		name := c.Name()
		if seen[name] {
			t.Errorf("duplicate command %q", name)
		}
		seen[name] = true
	}
	for _, name := range []string{"scan", "graph", "lookup", "help", "version"} {
		if !seen[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestIncdepsMain(t *testing.T) {
	dir := t.TempDir()
	for fname, content := range map[string]string{
		"app/src/main.cpp":     "#include <foo.h>\n",
		"libfoo/include/foo.h": "#pragma once\n",
		"libfoo/src/foo.cpp":   "#include \"foo.h\"\n",
	} {
		fname = filepath.Join(dir, filepath.FromSlash(fname))
		if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(t.TempDir(), "deps.txt")
	for _, tc := range []struct {
		args []string
		want int
	}{
		{args: []string{"scan", "-C", dir, "-scan_state", "", "-o", out}, want: 0},
		{args: []string{"scan", "-C", dir, "-format", "yaml"}, want: 1},
		{args: []string{"graph", "-C", dir, "-format", "digraph", "-o", out}, want: 0},
		{args: []string{"lookup", "-C", dir, "foo.h"}, want: 0},
		{args: []string{"lookup", "-C", dir, "bar.h"}, want: 1},
	} {
		if got := incdepsMain(tc.args); got != tc.want {
			t.Errorf("incdepsMain(%q)=%d; want %d", tc.args, got, tc.want)
		}
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "app libfoo\nlibfoo\n"; string(got) != want {
		t.Errorf("graph output=%q; want %q", got, want)
	}
}
