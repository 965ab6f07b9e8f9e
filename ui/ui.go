// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui provides user interface functionalities.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Spinner shows progress of a long operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, outputting an error if provided.
	Stop(err error)
	// Done finishes the spinner with message.
	Done(format string, args ...any)
}

// UI is a user interface on stderr.
type UI interface {
	// PrintLines replaces the status line with msgs.
	// If msgs starts with \n, it prints from the current line.
	PrintLines(msgs ...string)
	// NewSpinner returns a new spinner.
	NewSpinner() Spinner

	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Default holds the default UI interface.
// Making changes to this variable after init is undefined behavior.
var Default UI

func init() {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		width, _, _ := term.GetSize(int(os.Stderr.Fd()))
		Default = NewTermUI(os.Stderr, width)
	} else {
		Default = LogUI{}
	}
}

// IsTerminal returns whether currently using a terminal UI.
func IsTerminal() bool {
	_, ok := Default.(*TermUI)
	return ok
}

// https://en.wikipedia.org/wiki/ANSI_escape_code#SGR_(Select_Graphic_Rendition)_parameters
type SGRCode int

const (
	Bold SGRCode = iota
	Red
	Green
	Yellow
	Cyan
	Reset
)

var sgrEscSeq = map[SGRCode]string{
	Bold:   "\033[1m",
	Red:    "\033[31;1m",
	Green:  "\033[32m",
	Yellow: "\033[33m",
	Cyan:   "\033[36m",
	Reset:  "\033[0m",
}

func (s SGRCode) String() string {
	return sgrEscSeq[s]
}

// SGR formats s in SGR (select graphic rendition).
func SGR(n SGRCode, s string) string {
	return fmt.Sprintf("%s%s%s", n, s, Reset)
}

// StripANSIEscapeCodes strips ANSI CSI escape sequences.
func StripANSIEscapeCodes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			break
		}
		if s[i+1] != '[' {
			continue
		}
		i += 2
		// final byte of CSI is in [a-zA-Z].
		for i < len(s) && !isFinalByte(s[i]) {
			i++
		}
	}
	return sb.String()
}

func isFinalByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// truncate cuts msg to fit in width columns, ignoring escape sequences
// for the count.
func truncate(msg string, width int) string {
	if width <= 4 || len(StripANSIEscapeCodes(msg)) < width {
		return msg
	}
	plain := StripANSIEscapeCodes(msg)
	return plain[:width-4] + "..."
}
