// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

// ComponentID identifies a Component in a Project.
type ComponentID int32

// Type is a type of component.
type Type int

const (
	Executable Type = iota
	Library
	UnitTest
)

func (t Type) String() string {
	switch t {
	case Executable:
		return "executable"
	case Library:
		return "library"
	case UnitTest:
		return "unittest"
	}
	return "unknown"
}

// Component is a logical build unit.
type Component struct {
	// Root is the root directory relative to the tree root.
	// Empty for predefined components.
	Root string

	// Name is the name of a predefined component.
	Name string

	// Predefined is true for external components pre-seeded by config.
	// They never have files.
	Predefined bool

	Type Type

	Files []FileID

	PrivDeps Set[ComponentID]
	PubDeps  Set[ComponentID]

	PrivIncl Set[string]
	PubIncl  Set[string]
}

// Label returns the root, or the name prefixed with "@" for predefined
// components, so it never equals the root of a component in the tree.
func (c *Component) Label() string {
	if c.Predefined {
		return "@" + c.Name
	}
	return c.Root
}

func newComponent(root string) Component {
	return Component{
		Root:     root,
		PrivDeps: make(Set[ComponentID]),
		PubDeps:  make(Set[ComponentID]),
		PrivIncl: make(Set[string]),
		PubIncl:  make(Set[string]),
	}
}
