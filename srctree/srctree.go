// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package srctree walks a C/C++ source tree for components and code files.
package srctree

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/incdeps/config"
	"go.chromium.org/infra/build/incdeps/o11y/clog"
	"go.chromium.org/infra/build/incdeps/o11y/iometrics"
	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/scandeps"
)

// Option is an option for Tree.
type Option struct {
	// StateFile is the scan state filename, relative to the tree root
	// unless absolute. Empty disables the scan state.
	StateFile string

	// Concurrency is the number of files scanned in parallel.
	// Zero means the number of CPUs.
	Concurrency int
}

// RegisterFlags registers flags for the option.
func (o *Option) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&o.StateFile, "scan_state", defaultStateFile, "scan state filename. empty disables scan state")
	flagSet.IntVar(&o.Concurrency, "scan_jobs", 0, "number of files scanned in parallel. 0 means number of CPUs")
}

// Stats are counters of the last walk.
type Stats struct {
	Components int
	Files      int
	Scanned    int
	Cached     int
}

// Tree is a source tree on local disk.
// It implements project.Source.
type Tree struct {
	root string
	cfg  *config.Config
	opt  Option

	iom *iometrics.IOMetrics

	mu    sync.Mutex
	stats Stats

	scanned atomic.Int64
}

// New creates a tree rooted at dir.
func New(dir string, cfg *config.Config, opt Option) (*Tree, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Tree{
		root: root,
		cfg:  cfg,
		opt:  opt,
		iom:  iometrics.New("srctree"),
	}, nil
}

// Root returns the absolute path of the tree root.
func (t *Tree) Root() string {
	return t.root
}

// Stats returns counters of the last walk.
func (t *Tree) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// IOStats returns I/O metrics of all walks so far.
func (t *Tree) IOStats() iometrics.Stats {
	return t.iom.Stats()
}

// Scanned returns the number of files processed so far in the
// running walk.
func (t *Tree) Scanned() int {
	return int(t.scanned.Load())
}

func (t *Tree) stateFile() string {
	if t.opt.StateFile == "" || filepath.IsAbs(t.opt.StateFile) {
		return t.opt.StateFile
	}
	return filepath.Join(t.root, t.opt.StateFile)
}

// fileEntry is a code file found in the tree.
type fileEntry struct {
	name  string // slash separated, relative to root
	size  int64
	mtime time.Time
}

// Walk walks the tree in preorder and calls fn for each component root
// and each code file with its raw includes.
func (t *Tree) Walk(ctx context.Context, fn func(project.Entry) error) error {
	started := time.Now()
	t.scanned.Store(0)
	entries, files, err := t.list(ctx)
	if err != nil {
		return err
	}
	listed := time.Since(started)

	var prev *State
	stateFile := t.stateFile()
	if stateFile != "" {
		prev = loadState(ctx, stateFile)
	} else {
		prev = NewState()
	}
	next := NewState()
	var mu sync.Mutex
	var ncached atomic.Int64

	concurrency := t.opt.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, fe := range files {
		if i%1000 == 0 {
			if err := gctx.Err(); err != nil {
				break
			}
		}
		eg.Go(func() error {
			defer t.scanned.Add(1)
			includes, ok := prev.Includes(fe.name, fe.size, fe.mtime)
			if ok {
				ncached.Add(1)
			} else {
				fname := filepath.Join(t.root, filepath.FromSlash(fe.name))
				n := 0
				err := readFile(fname, func(buf []byte) error {
					n = len(buf)
					includes = scandeps.CPPScan(gctx, fe.name, buf)
					return nil
				})
				t.iom.ReadDone(n, err)
				if err != nil {
					return fmt.Errorf("failed to scan %s: %w", fe.name, err)
				}
			}
			mu.Lock()
			next.Set(fe.name, fe.size, fe.mtime, includes)
			mu.Unlock()
			return nil
		})
	}
	err = eg.Wait()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	stats := Stats{
		Files:   len(files),
		Cached:  int(ncached.Load()),
		Scanned: len(files) - int(ncached.Load()),
	}

	if stateFile != "" && (stats.Scanned > 0 || prev.Len() != next.Len()) {
		err := next.Save(ctx, stateFile)
		var n int
		if fi, serr := os.Stat(stateFile); err == nil && serr == nil {
			n = int(fi.Size())
		}
		t.iom.WriteDone(n, err)
		if err != nil {
			clog.Warningf(ctx, "failed to save scan state: %v", err)
		}
	}

	for _, e := range entries {
		if e.Component {
			stats.Components++
		} else {
			e.Includes = next.get(e.Path)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	t.mu.Lock()
	t.stats = stats
	t.mu.Unlock()
	clog.Infof(ctx, "walk %s: %d components, %d files (%d scanned, %d cached) list=%s total=%s io=%s",
		t.root, stats.Components, stats.Files, stats.Scanned, stats.Cached, listed, time.Since(started), t.iom.Stats())
	return nil
}

// list returns entries in preorder, and code files among them.
func (t *Tree) list(ctx context.Context) ([]project.Entry, []fileEntry, error) {
	var entries []project.Entry
	var files []fileEntry
	components := make(map[string]bool)
	err := filepath.WalkDir(t.root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if fname == t.root {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(t.root, fname)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()
		if isHidden(name) || t.cfg.IsBlacklisted(rel) {
			if log.V(1) {
				clog.Infof(ctx, "skip %s", rel)
			}
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			t.iom.OpsDone(nil)
			switch {
			case isDir(filepath.Join(fname, "include")) || isDir(filepath.Join(fname, "src")):
				components[rel] = true
				entries = append(entries, project.Entry{Path: rel, Component: true})
			case name == "test" && components[path.Dir(rel)]:
				components[rel] = true
				entries = append(entries, project.Entry{Path: rel, Component: true})
			}
			return nil
		}
		if !scandeps.IsCode(name) {
			return nil
		}
		fi, err := os.Stat(fname)
		t.iom.OpsDone(err)
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		entries = append(entries, project.Entry{Path: rel})
		files = append(files, fileEntry{
			name:  rel,
			size:  fi.Size(),
			mtime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", t.root, err)
	}
	return entries, files, nil
}

// isHidden reports whether name is a hidden file or directory.
func isHidden(name string) bool {
	return len(name) >= 2 && name[0] == '.'
}

func isDir(fname string) bool {
	fi, err := os.Stat(fname)
	return err == nil && fi.IsDir()
}
