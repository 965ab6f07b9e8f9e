// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package srctree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.chromium.org/infra/build/incdeps/config"
	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/scandeps"
)

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for k, v := range files {
		fname := filepath.Join(dir, filepath.FromSlash(k))
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(v), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func testTree() map[string]string {
	return map[string]string{
		".hidden/x.cpp":              "#include <hidden.h>\n",
		"app/src/main.cpp":           "#include \"util.h\"\n#include <foo.h>\n\nint main() {}\n",
		"app/src/util.h":             "#pragma once\n",
		"libfoo/README.md":           "#include <readme.h>\n",
		"libfoo/include/foo.h":       "// foo\n",
		"libfoo/include/.foo.h.swp":  "",
		"libfoo/include/generated.h": "#include <generated_dep.h>\n",
		"libfoo/src/foo.cpp":         "#include \"foo.h\"\n",
		"libfoo/test/foo_test.cpp":   "#include <foo.h>\n",
		"third/src/skip.cpp":         "#include <skip.h>\n",
		"top.cpp":                    "#include <stdio.h>\n",
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Blacklist = []string{"third", "generated.h"}
	return cfg
}

func walk(ctx context.Context, t *testing.T, tree *Tree) []project.Entry {
	t.Helper()
	var got []project.Entry
	err := tree.Walk(ctx, func(e project.Entry) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk(ctx, fn)=%v; want nil error", err)
	}
	return got
}

func inc(s string) scandeps.Include {
	i, ok := scandeps.ParseInclude(s)
	if !ok {
		panic("bad include " + s)
	}
	return i
}

func TestWalk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, testTree())
	tree, err := New(dir, testConfig(), Option{})
	if err != nil {
		t.Fatal(err)
	}
	got := walk(ctx, t, tree)
	want := []project.Entry{
		{Path: "app", Component: true},
		{Path: "app/src/main.cpp", Includes: []scandeps.Include{inc(`"util.h"`), inc("<foo.h>")}},
		{Path: "app/src/util.h"},
		{Path: "libfoo", Component: true},
		{Path: "libfoo/include/foo.h"},
		{Path: "libfoo/src/foo.cpp", Includes: []scandeps.Include{inc(`"foo.h"`)}},
		{Path: "libfoo/test", Component: true},
		{Path: "libfoo/test/foo_test.cpp", Includes: []scandeps.Include{inc("<foo.h>")}},
		{Path: "top.cpp", Includes: []scandeps.Include{inc("<stdio.h>")}},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Walk diff -want +got:\n%s", diff)
	}
	wantStats := Stats{Components: 3, Files: 6, Scanned: 6}
	if diff := cmp.Diff(wantStats, tree.Stats()); diff != "" {
		t.Errorf("Stats diff -want +got:\n%s", diff)
	}
	if io := tree.IOStats(); io.ROps != 6 || io.RErrs != 0 || io.WOps != 0 {
		t.Errorf("IOStats()=%v; want 6 reads, no errors, no writes", io)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultStateFile)); err == nil {
		t.Errorf("state file exists without StateFile option")
	}
}

func TestWalkProject(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, testTree())
	cfg := testConfig()
	tree, err := New(dir, cfg, Option{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := project.New(ctx, tree, project.Options{
		PredefinedComponents: cfg.PredefinedComponents,
		IsKnownHeader:        scandeps.NewKnownHeaders(cfg.KnownHeaders...).IsKnown,
		IsPackage:            cfg.IsPackage,
	})
	if err != nil {
		t.Fatalf("project.New(ctx, tree, opts)=_, %v; want nil error", err)
	}
	m := p.Model()
	var got []string
	for _, c := range m.Components {
		got = append(got, c.String())
	}
	want := []string{
		"app (executable) 2 files\n  priv_deps: libfoo",
		"libfoo (library) 2 files\n  pub_incl: include",
		"libfoo/test (unittest) 1 files\n  priv_deps: libfoo",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("components diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"libfoo", "app", "libfoo/test"}, m.Pipeline); diff != "" {
		t.Errorf("pipeline diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"top.cpp"}, m.Outside); diff != "" {
		t.Errorf("outside diff -want +got:\n%s", diff)
	}
}

func TestWalkState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, testTree())
	tree, err := New(dir, testConfig(), Option{StateFile: defaultStateFile})
	if err != nil {
		t.Fatal(err)
	}
	first := walk(ctx, t, tree)
	if got, want := tree.Stats().Scanned, 6; got != want {
		t.Errorf("first walk: Scanned=%d; want %d", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultStateFile)); err != nil {
		t.Errorf("state file: %v", err)
	}

	second := walk(ctx, t, tree)
	if diff := cmp.Diff(Stats{Components: 3, Files: 6, Cached: 6}, tree.Stats()); diff != "" {
		t.Errorf("second walk: Stats diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("second walk diff -first +second:\n%s", diff)
	}

	// same size and mtime, so the cached includes are used.
	fname := filepath.Join(dir, "libfoo", "src", "foo.cpp")
	fi, err := os.Stat(fname)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(fname, []byte("#include \"bar.h\"\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chtimes(fname, fi.ModTime(), fi.ModTime())
	if err != nil {
		t.Fatal(err)
	}
	includesOf := func(entries []project.Entry, name string) []scandeps.Include {
		for _, e := range entries {
			if e.Path == name {
				return e.Includes
			}
		}
		t.Fatalf("no entry for %s", name)
		return nil
	}
	third := walk(ctx, t, tree)
	if diff := cmp.Diff([]scandeps.Include{inc(`"foo.h"`)}, includesOf(third, "libfoo/src/foo.cpp")); diff != "" {
		t.Errorf("unchanged mtime: includes diff -want +got:\n%s", diff)
	}

	mtime := fi.ModTime().Add(time.Second)
	err = os.Chtimes(fname, mtime, mtime)
	if err != nil {
		t.Fatal(err)
	}
	fourth := walk(ctx, t, tree)
	if diff := cmp.Diff([]scandeps.Include{inc(`"bar.h"`)}, includesOf(fourth, "libfoo/src/foo.cpp")); diff != "" {
		t.Errorf("changed mtime: includes diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff(Stats{Components: 3, Files: 6, Scanned: 1, Cached: 5}, tree.Stats()); diff != "" {
		t.Errorf("fourth walk: Stats diff -want +got:\n%s", diff)
	}
}

func TestWalkCanceled(t *testing.T) {
	dir := t.TempDir()
	setupFiles(t, dir, testTree())
	tree, err := New(dir, testConfig(), Option{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = tree.Walk(ctx, func(project.Entry) error { return nil })
	if err == nil {
		t.Errorf("Walk(canceled ctx, fn)=nil; want error")
	}
}

func TestNewNotDir(t *testing.T) {
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{"a.cpp": ""})
	_, err := New(filepath.Join(dir, "a.cpp"), nil, Option{})
	if err == nil {
		t.Errorf("New(file, nil, Option{})=_, nil; want error")
	}
}
