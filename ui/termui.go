// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// TermUI is a terminal-based UI.
type TermUI struct {
	mu    sync.Mutex
	w     io.Writer
	width int

	// status line is shown.
	status bool
}

// NewTermUI creates a terminal UI writing to w, which is width
// columns wide.
func NewTermUI(w io.Writer, width int) *TermUI {
	return &TermUI{w: w, width: width}
}

// PrintLines replaces the status line with msgs.
func (t *TermUI) PrintLines(msgs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var buf bytes.Buffer
	if len(msgs) > 0 && msgs[0] == "\n" {
		msgs = msgs[1:]
		if t.status {
			buf.WriteString("\n")
		}
	} else if t.status {
		buf.WriteString("\r\033[K")
	}
	for i, msg := range msgs {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(truncate(msg, t.width))
	}
	t.status = len(msgs) > 0
	t.w.Write(buf.Bytes())
}

func (t *TermUI) println(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status {
		fmt.Fprint(t.w, "\r\033[K")
		t.status = false
	}
	fmt.Fprintln(t.w, msg)
}

// Infof prints a message.
func (t *TermUI) Infof(format string, args ...any) {
	t.println(fmt.Sprintf(format, args...))
}

// Warningf prints a message in yellow.
func (t *TermUI) Warningf(format string, args ...any) {
	t.println(SGR(Yellow, fmt.Sprintf(format, args...)))
}

// Errorf prints a message in red.
func (t *TermUI) Errorf(format string, args ...any) {
	t.println(SGR(Red, fmt.Sprintf(format, args...)))
}

// NewSpinner returns a terminal-based spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{ui: t, interval: 100 * time.Millisecond}
}

type termSpinner struct {
	ui       *TermUI
	interval time.Duration

	quit, done chan struct{}
	started    time.Time
	msg        string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	s.ui.PrintLines(s.msg + "...")
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		const chars = `/-\|`
		n := 0
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				s.ui.PrintLines(fmt.Sprintf("%s... %c", s.msg, chars[n]))
				n = (n + 1) % len(chars)
			}
		}
	}()
}

func (s *termSpinner) finish() time.Duration {
	close(s.quit)
	<-s.done
	return time.Since(s.started)
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	d := s.finish()
	if err != nil {
		s.ui.PrintLines(fmt.Sprintf("%6s %s %s %v", FormatDuration(d), s.msg, SGR(Red, "failed"), err))
		s.ui.PrintLines("\n")
		return
	}
	if d < DurationThreshold {
		// omit if duration is too short
		s.ui.PrintLines()
		return
	}
	s.ui.PrintLines(fmt.Sprintf("%6s %s", FormatDuration(d), s.msg))
	s.ui.PrintLines("\n")
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	d := s.finish()
	s.ui.PrintLines(fmt.Sprintf("%6s %s %s", FormatDuration(d), s.msg, fmt.Sprintf(format, args...)))
	s.ui.PrintLines("\n")
}
