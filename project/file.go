// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"go.chromium.org/infra/build/incdeps/scandeps"
)

// FileID identifies a File in a Project.
type FileID int32

// File is a source or header file in a component.
type File struct {
	// Path is a slash separated path relative to the tree root.
	Path string

	// Component owns the file. It never changes.
	Component ComponentID

	// RawIncludes are include directives in source order.
	RawIncludes []scandeps.Include

	// Dependencies are files this file directly includes.
	Dependencies Set[FileID]

	// HasInclude is true if some file includes this file.
	HasInclude bool

	// HasExternalInclude is true if this file is reachable from
	// outside of its component, directly or through other files
	// of the component.
	HasExternalInclude bool

	// IncludePaths are directories, relative to the component root,
	// that consumers need in their search path to reach this file.
	// "." means the component root itself.
	IncludePaths Set[string]
}
