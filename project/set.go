// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"cmp"
	"maps"
	"slices"
)

// Set is an unordered set.
type Set[T cmp.Ordered] map[T]struct{}

// Add adds v to the set.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v from the set.
func (s Set[T]) Delete(v T) {
	delete(s, v)
}

// Sorted returns elements in ascending order.
func (s Set[T]) Sorted() []T {
	return slices.Sorted(maps.Keys(s))
}
