// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build unix

package srctree

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// readFile calls fn with a read-only mapping of fname.
// buf is not valid after fn returns.
func readFile(fname string, fn func(buf []byte) error) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	size := fi.Size()
	if size == 0 {
		return fn(nil)
	}
	if int64(int(size)) != size {
		return fmt.Errorf("file too large: %d", size)
	}
	buf, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	defer unix.Munmap(buf)
	return fn(buf)
}
