// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// Each context may carry a logger with a run id and arbitrary labels,
// so log lines emitted while scanning one tree can be grouped together.
//
// Entries are modeled as Cloud logging.Entry but are written to glog.
package clog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"github.com/golang/glog"
)

type contextKeyType int

var contextKey contextKeyType

// DefaultFormatter prefixes the payload with the sorted labels, if any.
func DefaultFormatter(e logging.Entry) string {
	if len(e.Labels) == 0 {
		return fmt.Sprintf("%v", e.Payload)
	}
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(e.Labels)) {
		fmt.Fprintf(&sb, "%s=%s ", k, e.Labels[k])
	}
	fmt.Fprintf(&sb, "%v", e.Payload)
	return sb.String()
}

var defaultLogger = &Logger{Formatter: DefaultFormatter}

// New creates a new Logger with no labels.
func New() *Logger {
	return &Logger{
		Formatter: DefaultFormatter,
	}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a sub logger for the run id with the given labels to the context.
// Labels of the parent logger are inherited unless overridden.
func NewSpan(ctx context.Context, runID string, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(runID, labels))
}

// FromContext returns a logger in the context, or the default logger if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok || logger == nil {
		return defaultLogger
	}
	return logger
}

// Logger holds the run id and labels of the context.
type Logger struct {
	// Formatter is a formatter of the entry for glog.
	Formatter func(e logging.Entry) string

	runID  string
	labels map[string]string
}

// Span returns a sub logger.
func (l *Logger) Span(runID string, labels map[string]string) *Logger {
	merged := make(map[string]string, len(l.labels)+len(labels)+1)
	maps.Copy(merged, l.labels)
	maps.Copy(merged, labels)
	if runID != "" {
		merged["run"] = runID
	}
	return &Logger{
		Formatter: l.Formatter,
		runID:     runID,
		labels:    merged,
	}
}

// RunID returns the run id of the logger.
func (l *Logger) RunID() string {
	return l.runID
}

// Labels returns labels of the logger.
func (l *Logger) Labels() map[string]string {
	return maps.Clone(l.labels)
}

func (l *Logger) log(e logging.Entry) {
	format := l.Formatter
	if format == nil {
		format = DefaultFormatter
	}
	msg := format(e)
	switch e.Severity {
	case logging.Info:
		glog.InfoDepth(3, msg)
	case logging.Warning:
		glog.WarningDepth(3, msg)
	case logging.Error:
		glog.ErrorDepth(3, msg)
	default:
		glog.InfoDepth(3, fmt.Sprintf("%s %s", e.Severity, msg))
	}
}

// Entry creates a new log entry for the given severity.
func (l *Logger) Entry(severity logging.Severity, payload any) logging.Entry {
	return logging.Entry{
		Timestamp: time.Now(),
		Severity:  severity,
		Payload:   payload,
		Labels:    l.labels,
		Trace:     l.runID,
	}
}

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.log(l.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.log(l.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(l.Entry(logging.Error, fmt.Sprintf(format, args...)))
}

// V checks at verbose log level.
func (l *Logger) V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}

// Close flushes log entries.
func (l *Logger) Close() {
	glog.Flush()
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Error, fmt.Sprintf(format, args...)))
}
