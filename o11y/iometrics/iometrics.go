// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics manages I/O metrics.
package iometrics

import (
	"fmt"
	"sync/atomic"
)

// IOMetrics holds I/O metrics of a file system user.
// A nil *IOMetrics discards all counts.
type IOMetrics struct {
	name string

	ops     atomic.Int64
	opsErrs atomic.Int64
	rOps    atomic.Int64
	rBytes  atomic.Int64
	rErrs   atomic.Int64
	wOps    atomic.Int64
	wBytes  atomic.Int64
	wErrs   atomic.Int64
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// OpsDone counts when a non read/write I/O operation is done,
// e.g. stat or readdir.
func (m *IOMetrics) OpsDone(err error) {
	if m == nil {
		return
	}
	m.ops.Add(1)
	if err != nil {
		m.opsErrs.Add(1)
	}
}

// ReadDone counts a read of n bytes.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.rOps.Add(1)
	m.rBytes.Add(int64(n))
	if err != nil {
		m.rErrs.Add(1)
	}
}

// WriteDone counts a write of n bytes.
func (m *IOMetrics) WriteDone(n int, err error) {
	if m == nil {
		return
	}
	m.wOps.Add(1)
	m.wBytes.Add(int64(n))
	if err != nil {
		m.wErrs.Add(1)
	}
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// Stats holds iometrics.
type Stats struct {
	Ops     int64
	OpsErrs int64

	ROps   int64
	RBytes int64
	RErrs  int64

	WOps   int64
	WBytes int64
	WErrs  int64
}

func (s Stats) String() string {
	return fmt.Sprintf("ops=%d(err=%d) read=%d/%dB(err=%d) write=%d/%dB(err=%d)",
		s.Ops, s.OpsErrs, s.ROps, s.RBytes, s.RErrs, s.WOps, s.WBytes, s.WErrs)
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Ops:     m.ops.Load(),
		OpsErrs: m.opsErrs.Load(),
		ROps:    m.rOps.Load(),
		RBytes:  m.rBytes.Load(),
		RErrs:   m.rErrs.Load(),
		WOps:    m.wOps.Load(),
		WBytes:  m.wBytes.Load(),
		WErrs:   m.wErrs.Load(),
	}
}
