// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

// propagateExternalIncludes marks files included by an externally
// included file of the same component as externally included too,
// until no more files change.
// It returns the number of newly marked files.
func (p *Project) propagateExternalIncludes() int {
	var queue []FileID
	for i := range p.files {
		if p.files[i].HasExternalInclude {
			queue = append(queue, FileID(i))
		}
	}
	n := 0
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		f := &p.files[id]
		for depID := range f.Dependencies {
			dep := &p.files[depID]
			if dep.HasExternalInclude || dep.Component != f.Component {
				continue
			}
			dep.HasExternalInclude = true
			n++
			queue = append(queue, depID)
		}
	}
	return n
}
