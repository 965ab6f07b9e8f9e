// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import "path"

// extractPublicDependencies promotes dependencies reached through
// externally included files to public, and sets component types.
func (p *Project) extractPublicDependencies() {
	for i := range p.components {
		cid := ComponentID(i)
		c := &p.components[i]
		if c.Predefined {
			continue
		}
		hasExtIncludes := false
		for _, fid := range c.Files {
			f := &p.files[fid]
			if !f.HasExternalInclude {
				continue
			}
			hasExtIncludes = true
			for depID := range f.Dependencies {
				dc := p.files[depID].Component
				c.PrivDeps.Delete(dc)
				c.PubDeps.Add(dc)
			}
		}
		c.PrivDeps.Delete(cid)
		c.PubDeps.Delete(cid)
		switch {
		case path.Base(c.Root) == "test":
			c.Type = UnitTest
		case hasExtIncludes || p.isPackage(c.Root):
			c.Type = Library
		default:
			c.Type = Executable
		}
	}
}

// extractIncludePaths collects include paths of included files into
// public or private include paths of their component.
func (p *Project) extractIncludePaths() {
	for i := range p.components {
		c := &p.components[i]
		for _, fid := range c.Files {
			f := &p.files[fid]
			if !f.HasInclude {
				continue
			}
			incl := c.PrivIncl
			if f.HasExternalInclude {
				incl = c.PubIncl
			}
			for dir := range f.IncludePaths {
				incl.Add(dir)
			}
		}
		for dir := range c.PubIncl {
			c.PrivIncl.Delete(dir)
		}
	}
}
