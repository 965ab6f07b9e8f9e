// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps extracts raw include directives from C/C++/Objective-C
// source files, without resolving them.
//
// It checks the following forms
//
//	#include "foo.h"
//	#include <foo.h>
//	#include_next <foo.h>
//	#import "Foo.h"
//
// Comments are removed and backslash-newline continuations are joined
// before directives are recognized, so
//
//	#include /* comment */ "foo.h"
//
// is also detected. `#include FOO_H` is ignored since macros are not
// expanded, and conditional directives are not evaluated: every include
// in the file is reported in source order.
//
// It also classifies file extensions and recognizes well-known system
// and third-party headers that are not expected to exist in the tree.
package scandeps
