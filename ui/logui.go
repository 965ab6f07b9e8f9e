// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type logSpinner struct {
	started time.Time
	msg     string
}

// Start logs the start of the operation.
// A log-based UI cannot animate, so only completion is reported later.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	l.msg = fmt.Sprintf(format, args...)
	log.Info(StripANSIEscapeCodes(l.msg))
}

// Stop logs how long the operation took.
func (l *logSpinner) Stop(err error) {
	if err != nil {
		log.Warn("failed", "op", l.msg, "elapsed", FormatDuration(time.Since(l.started)), "err", err)
		return
	}
	log.Info("done", "op", l.msg, "elapsed", FormatDuration(time.Since(l.started)))
}

// Done finishes the spinner with message.
func (l *logSpinner) Done(format string, args ...any) {
	log.Info(StripANSIEscapeCodes(fmt.Sprintf(format, args...)), "op", l.msg, "elapsed", FormatDuration(time.Since(l.started)))
}

// LogUI is a log-based UI.
type LogUI struct{}

// PrintLines logs each non-empty message.
func (LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		if msg == "" || msg == "\n" {
			continue
		}
		log.Info(StripANSIEscapeCodes(msg))
	}
}

// NewSpinner returns a log-based spinner.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}

// Infof reports to stderr, stripping ansi escape sequence.
func (LogUI) Infof(format string, args ...any) {
	log.Helper()
	log.Info(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

// Warningf reports to stderr, stripping ansi escape sequence.
func (LogUI) Warningf(format string, args ...any) {
	log.Helper()
	log.Warn(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

// Errorf reports to stderr, stripping ansi escape sequence.
func (LogUI) Errorf(format string, args ...any) {
	log.Helper()
	log.Error(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}
