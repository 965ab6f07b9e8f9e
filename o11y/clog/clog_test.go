// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package clog_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/logging"
	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
)

func TestFromContextDefault(t *testing.T) {
	ctx := context.Background()
	l := clog.FromContext(ctx)
	if l == nil {
		t.Fatal("FromContext(ctx)=nil; want default logger")
	}
	defer l.Close()
	// must not panic without a logger in ctx.
	clog.Infof(ctx, "Info")
	clog.Warningf(ctx, "Warning")
	clog.Errorf(ctx, "Error")
}

func TestSpanLabels(t *testing.T) {
	ctx := clog.NewContext(context.Background(), clog.New())
	ctx = clog.NewSpan(ctx, "", map[string]string{"root": "/src", "phase": "walk"})
	ctx = clog.NewSpan(ctx, "run1", map[string]string{"phase": "resolve"})

	l := clog.FromContext(ctx)
	if got, want := l.RunID(), "run1"; got != want {
		t.Errorf("RunID()=%q; want %q", got, want)
	}
	want := map[string]string{
		"root":  "/src",
		"phase": "resolve",
		"run":   "run1",
	}
	if diff := cmp.Diff(want, l.Labels()); diff != "" {
		t.Errorf("Labels diff -want +got:\n%s", diff)
	}
	clog.Infof(ctx, "child info")
}

func TestDefaultFormatter(t *testing.T) {
	for _, tc := range []struct {
		name   string
		labels map[string]string
		want   string
	}{
		{
			name: "no-labels",
			want: "hello",
		},
		{
			name:   "sorted-labels",
			labels: map[string]string{"run": "r", "phase": "p"},
			want:   "phase=p run=r hello",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := logging.Entry{
				Timestamp: time.Now(),
				Severity:  logging.Info,
				Payload:   "hello",
				Labels:    tc.labels,
			}
			if got := clog.DefaultFormatter(e); got != tc.want {
				t.Errorf("DefaultFormatter(%v)=%q; want %q", e, got, tc.want)
			}
		})
	}
}
