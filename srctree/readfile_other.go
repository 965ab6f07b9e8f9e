// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !unix

package srctree

import "os"

// readFile calls fn with the content of fname.
func readFile(fname string, fn func(buf []byte) error) error {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return fn(buf)
}
